package coerce

import (
	"testing"
	"time"
)

func TestInt64Valid(t *testing.T) {
	v, ok, diag := Int64("MsgSeqNum", []byte("34"))
	if !ok || v != 34 || diag != "" {
		t.Fatalf("got (%d, %v, %q)", v, ok, diag)
	}
}

func TestInt64EmptyIsNullNotError(t *testing.T) {
	v, ok, diag := Int64("MsgSeqNum", nil)
	if ok || diag != "" || v != 0 {
		t.Fatalf("got (%d, %v, %q), want null with no diagnostic", v, ok, diag)
	}
}

func TestInt64BadValueProducesExactMessage(t *testing.T) {
	_, ok, diag := Int64("MsgSeqNum", []byte("abc"))
	if ok {
		t.Fatalf("expected failure")
	}
	if diag != "Invalid MsgSeqNum: 'abc'" {
		t.Fatalf("got %q", diag)
	}
}

func TestInt64RejectsTrailingCharacters(t *testing.T) {
	_, ok, diag := Int64("MsgSeqNum", []byte("34x"))
	if ok {
		t.Fatalf("expected failure for trailing characters")
	}
	if diag != "Invalid MsgSeqNum: '34x'" {
		t.Fatalf("got %q", diag)
	}
}

func TestFloat64Valid(t *testing.T) {
	v, ok, diag := Float64("Price", []byte("150.50"))
	if !ok || v != 150.50 || diag != "" {
		t.Fatalf("got (%v, %v, %q)", v, ok, diag)
	}
}

func TestFloat64EmptyIsNullNotError(t *testing.T) {
	v, ok, diag := Float64("Price", nil)
	if ok || diag != "" || v != 0 {
		t.Fatalf("got (%v, %v, %q), want null with no diagnostic", v, ok, diag)
	}
}

func TestFloat64BadValueProducesExactMessage(t *testing.T) {
	_, ok, diag := Float64("Price", []byte("NaN-ish"))
	if ok {
		t.Fatalf("expected failure")
	}
	if diag != "Invalid Price: 'NaN-ish'" {
		t.Fatalf("got %q", diag)
	}
}

func TestTimestampEmptyIsNullNotError(t *testing.T) {
	v, ok, diag := Timestamp("SendingTime", nil)
	if ok || diag != "" || !v.IsZero() {
		t.Fatalf("got (%v, %v, %q), want null with no diagnostic", v, ok, diag)
	}
}

func TestTimestampExactSeventeenBytesParses(t *testing.T) {
	v, ok, diag := Timestamp("SendingTime", []byte("20231215-10:30:00"))
	if !ok || diag != "" {
		t.Fatalf("got (%v, %v, %q)", v, ok, diag)
	}
	want := time.Date(2023, 12, 15, 10, 30, 0, 0, time.UTC)
	if !v.Equal(want) {
		t.Fatalf("got %v, want %v", v, want)
	}
}

func TestTimestampSixteenBytesFails(t *testing.T) {
	_, ok, diag := Timestamp("SendingTime", []byte("20231215-10:30:0"))
	if ok {
		t.Fatalf("expected failure for truncated timestamp")
	}
	if diag == "" {
		t.Fatalf("expected a diagnostic")
	}
}

func TestTimestampSingleFractionalDigitIsHundredMillis(t *testing.T) {
	v, ok, _ := Timestamp("SendingTime", []byte("20231215-10:30:00.1"))
	if !ok {
		t.Fatalf("expected success")
	}
	if v.Nanosecond() != 100*int(time.Millisecond) {
		t.Fatalf("got %d ns, want 100ms", v.Nanosecond())
	}
}

func TestTimestampThreeFractionalDigitsIsExact(t *testing.T) {
	v, ok, _ := Timestamp("SendingTime", []byte("20231215-10:30:00.123"))
	if !ok {
		t.Fatalf("expected success")
	}
	if v.Nanosecond() != 123*int(time.Millisecond) {
		t.Fatalf("got %d ns, want 123ms", v.Nanosecond())
	}
}

func TestTimestampMonthOutOfRangeFails(t *testing.T) {
	_, ok, diag := Timestamp("SendingTime", []byte("20231315-10:30:00"))
	if ok {
		t.Fatalf("expected failure for month 13")
	}
	if diag != "Invalid SendingTime: '20231315-10:30:00' (month out of range)" {
		t.Fatalf("got %q", diag)
	}
}

func TestTimestampDayOutOfRangeFails(t *testing.T) {
	_, ok, diag := Timestamp("SendingTime", []byte("20231232-10:30:00"))
	if ok {
		t.Fatalf("expected failure for day 32")
	}
	if diag != "Invalid SendingTime: '20231232-10:30:00' (day out of range)" {
		t.Fatalf("got %q", diag)
	}
}

func TestTimestampHourOutOfRangeFails(t *testing.T) {
	_, ok, diag := Timestamp("SendingTime", []byte("20231215-24:30:00"))
	if ok {
		t.Fatalf("expected failure for hour 24")
	}
	if diag != "Invalid SendingTime: '20231215-24:30:00' (hour out of range)" {
		t.Fatalf("got %q", diag)
	}
}

func TestTimestampMinuteOutOfRangeFails(t *testing.T) {
	_, ok, diag := Timestamp("SendingTime", []byte("20231215-10:60:00"))
	if ok {
		t.Fatalf("expected failure for minute 60")
	}
	if diag != "Invalid SendingTime: '20231215-10:60:00' (minute out of range)" {
		t.Fatalf("got %q", diag)
	}
}

func TestTimestampSecondOutOfRangeFails(t *testing.T) {
	_, ok, diag := Timestamp("SendingTime", []byte("20231215-10:30:60"))
	if ok {
		t.Fatalf("expected failure for second 60")
	}
	if diag != "Invalid SendingTime: '20231215-10:30:60' (second out of range)" {
		t.Fatalf("got %q", diag)
	}
}

func TestTimestampBadSeparatorsFails(t *testing.T) {
	_, ok, _ := Timestamp("SendingTime", []byte("20231215T10:30:00"))
	if ok {
		t.Fatalf("expected failure for wrong date/time separator")
	}
}

func TestTimestampDoesNotMutateBytesPastTheValue(t *testing.T) {
	// b is a sub-slice of a larger buffer with room to spare, the way a
	// hot-tag value borrows from the rest of a line. Padding the fractional
	// digits out to three must never write into that spare capacity.
	line := []byte("20231215-10:30:00.5|55=AAPL")
	b := line[:19]

	v, ok, _ := Timestamp("SendingTime", b)
	if !ok {
		t.Fatalf("expected success")
	}
	if v.Nanosecond() != 500*int(time.Millisecond) {
		t.Fatalf("got %d ns, want 500ms", v.Nanosecond())
	}
	if string(line[19:]) != "|55=AAPL" {
		t.Fatalf("bytes past the value were mutated: %q", line[19:])
	}
}

func TestTimestampIsUTC(t *testing.T) {
	v, ok, _ := Timestamp("SendingTime", []byte("20231215-10:30:00"))
	if !ok {
		t.Fatalf("expected success")
	}
	if v.Location() != time.UTC {
		t.Fatalf("got location %v, want UTC", v.Location())
	}
}
