// coerce.go
/*
fixdecoder — FIX protocol decoder tools
Copyright (C) 2025 Steve Clarke <stephenlclarke@mac.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.

In accordance with section 13 of the AGPL, if you modify this program,
your modified version must prominently offer all users interacting with it
remotely through a computer network an opportunity to receive the source
code of your version.
*/

// Package coerce applies lenient, error-accumulating type coercion to the
// raw byte spans the tokenizer hands out. A coercion failure never panics
// or propagates as a Go error across the row boundary: it returns ok=false
// plus a human-readable diagnostic that the scan driver appends to the
// row's parse_error column. An empty span is not a failure — it yields a
// null column with no diagnostic at all.
package coerce

import (
	"fmt"
	"strconv"
	"time"
)

// Int64 parses a signed 64-bit integer from the exact byte span, rejecting
// any trailing characters.
func Int64(field string, b []byte) (int64, bool, string) {
	if len(b) == 0 {
		return 0, false, ""
	}

	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, false, fmt.Sprintf("Invalid %s: '%s'", field, b)
	}

	return v, true, ""
}

// Float64 parses a 64-bit floating point value from the exact byte span,
// rejecting any trailing characters.
func Float64(field string, b []byte) (float64, bool, string) {
	if len(b) == 0 {
		return 0, false, ""
	}

	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return 0, false, fmt.Sprintf("Invalid %s: '%s'", field, b)
	}

	return v, true, ""
}

// Timestamp parses the FIX UTCTimestamp grammar: YYYYMMDD-HH:MM:SS with an
// optional .sss fraction (1 to 3 digits, right-padded to exactly 3 digits
// before being multiplied out to microseconds). All components are range
// checked; the result is always in UTC.
func Timestamp(field string, b []byte) (time.Time, bool, string) {
	if len(b) == 0 {
		return time.Time{}, false, ""
	}

	t, reason, ok := parseTimestamp(b)
	if !ok {
		return time.Time{}, false, fmt.Sprintf("Invalid %s: '%s' (%s)", field, b, reason)
	}

	return t, true, ""
}

func parseTimestamp(b []byte) (time.Time, string, bool) {
	const minLen = len("YYYYMMDD-HH:MM:SS") // 17

	if len(b) < minLen {
		return time.Time{}, "too short", false
	}

	if b[8] != '-' || b[11] != ':' || b[14] != ':' {
		return time.Time{}, "invalid separators", false
	}

	year, ok := digits(b[0:4])
	if !ok {
		return time.Time{}, "non-numeric date", false
	}
	month, ok := digits(b[4:6])
	if !ok {
		return time.Time{}, "non-numeric date", false
	}
	day, ok := digits(b[6:8])
	if !ok {
		return time.Time{}, "non-numeric date", false
	}
	hour, ok := digits(b[9:11])
	if !ok {
		return time.Time{}, "non-numeric time", false
	}
	minute, ok := digits(b[12:14])
	if !ok {
		return time.Time{}, "non-numeric time", false
	}
	second, ok := digits(b[15:17])
	if !ok {
		return time.Time{}, "non-numeric time", false
	}

	micros := 0
	rest := b[minLen:]

	switch {
	case len(rest) == 0:
		// no fraction
	case rest[0] == '.' && len(rest) >= 2 && len(rest) <= 4:
		frac := rest[1:]
		ms, ok := digits(frac)
		if !ok {
			return time.Time{}, "invalid fractional seconds", false
		}
		for i := len(frac); i < 3; i++ {
			ms *= 10
		}
		micros = ms * 1000
	default:
		return time.Time{}, "invalid fractional seconds", false
	}

	if year < 1900 || year > 2100 {
		return time.Time{}, "year out of range", false
	}
	if month < 1 || month > 12 {
		return time.Time{}, "month out of range", false
	}
	if day < 1 || day > 31 {
		return time.Time{}, "day out of range", false
	}
	if hour < 0 || hour > 23 {
		return time.Time{}, "hour out of range", false
	}
	if minute < 0 || minute > 59 {
		return time.Time{}, "minute out of range", false
	}
	if second < 0 || second > 59 {
		return time.Time{}, "second out of range", false
	}

	t := time.Date(year, time.Month(month), day, hour, minute, second, micros*1000, time.UTC)

	return t, "", true
}

func digits(b []byte) (int, bool) {
	if len(b) == 0 {
		return 0, false
	}

	n := 0
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}

	return n, true
}
