package scan

import (
	"context"
	"io"
	"testing"

	sqlhost "github.com/stephenlclarke/fixlogreader/sql"
)

func bindWithEmbedded(t *testing.T, fs *fakeFS, opts BindOptions) *BoundScan {
	t.Helper()

	b, err := Bind(context.Background(), fs, opts)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	return b
}

func collectAll(t *testing.T, it *ScanIter) []sqlhost.Row {
	t.Helper()

	ctx := sqlhost.NewEmptyContext()
	var rows []sqlhost.Row
	for {
		row, err := it.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		rows = append(rows, row)
	}
	return rows
}

func TestBindEmptyGlobFails(t *testing.T) {
	fs := newFakeFS(nil)

	_, err := Bind(context.Background(), fs, BindOptions{Paths: []string{"missing.log"}})
	if !ErrEmptyGlob.Is(err) {
		t.Fatalf("got %v, want ErrEmptyGlob", err)
	}
}

func TestBindUnknownRTagFails(t *testing.T) {
	fs := newFakeFS(map[string]string{"a.log": "35=D\n"})

	_, err := Bind(context.Background(), fs, BindOptions{
		Paths: []string{"a.log"},
		RTags: []string{"NoSuchField"},
	})
	if !ErrUnknownRTag.Is(err) {
		t.Fatalf("got %v, want ErrUnknownRTag", err)
	}
}

func TestBindInvalidDelimiterFails(t *testing.T) {
	fs := newFakeFS(map[string]string{"a.log": "35=D\n"})

	_, err := Bind(context.Background(), fs, BindOptions{
		Paths:     []string{"a.log"},
		Delimiter: "too-long",
	})
	if !ErrDelimiter.Is(err) {
		t.Fatalf("got %v, want ErrDelimiter", err)
	}
}

func TestBindLiteralSOHToken(t *testing.T) {
	fs := newFakeFS(map[string]string{"a.log": "35=D\x0149=S\n"})

	b := bindWithEmbedded(t, fs, BindOptions{Paths: []string{"a.log"}, Delimiter: `\x01`})
	if b.Delimiter != 0x01 {
		t.Fatalf("got delimiter %#x, want 0x01", b.Delimiter)
	}
}

func TestScanBasicOrder(t *testing.T) {
	line := "8=FIX.4.4|9=100|35=D|49=S|56=T|34=1|52=20231215-10:30:00|11=A|55=AAPL|54=1|38=100|44=150.50|10=000\n"
	fs := newFakeFS(map[string]string{"a.log": line})

	b := bindWithEmbedded(t, fs, BindOptions{Paths: []string{"a.log"}})
	rows := collectAll(t, b.NewPartition(nil))

	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	row := rows[0]

	if row[ColMsgType] != "D" || row[ColSenderCompID] != "S" {
		t.Fatalf("row = %+v", row)
	}
	if row[ColMsgSeqNum] != int64(1) {
		t.Fatalf("MsgSeqNum = %v", row[ColMsgSeqNum])
	}
	if row[ColSymbol] != "AAPL" {
		t.Fatalf("Symbol = %v", row[ColSymbol])
	}
	if row[ColOrderQty] != 100.0 || row[ColPrice] != 150.50 {
		t.Fatalf("OrderQty/Price = %v/%v", row[ColOrderQty], row[ColPrice])
	}
	if row[ColGroups] != nil {
		t.Fatalf("groups = %v, want nil", row[ColGroups])
	}
	if row[ColParseError] != nil {
		t.Fatalf("parse_error = %v, want nil", row[ColParseError])
	}

	tags, ok := row[ColTags].(map[int32]string)
	if !ok {
		t.Fatalf("tags not a map: %v", row[ColTags])
	}
	if tags[8] != "FIX.4.4" || tags[9] != "100" || tags[10] != "000" {
		t.Fatalf("tags = %v", tags)
	}
}

func TestScanMissingMsgType(t *testing.T) {
	fs := newFakeFS(map[string]string{"a.log": "49=S|56=T|11=A\n"})

	b := bindWithEmbedded(t, fs, BindOptions{Paths: []string{"a.log"}})
	rows := collectAll(t, b.NewPartition(nil))

	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	row := rows[0]

	if row[ColMsgType] != nil {
		t.Fatalf("MsgType = %v, want nil", row[ColMsgType])
	}
	if row[ColParseError] != "Missing required tag 35 (MsgType)" {
		t.Fatalf("parse_error = %v", row[ColParseError])
	}
}

func TestScanBadNumeric(t *testing.T) {
	fs := newFakeFS(map[string]string{"a.log": "35=D|34=abc|52=20231215-10:30:00\n"})

	b := bindWithEmbedded(t, fs, BindOptions{Paths: []string{"a.log"}})
	rows := collectAll(t, b.NewPartition(nil))

	row := rows[0]
	if row[ColMsgSeqNum] != nil {
		t.Fatalf("MsgSeqNum = %v, want nil", row[ColMsgSeqNum])
	}
	if row[ColParseError] != "Invalid MsgSeqNum: 'abc'" {
		t.Fatalf("parse_error = %v", row[ColParseError])
	}
}

func TestScanRepeatingGroup(t *testing.T) {
	line := "35=8|37=O1|17=E1|150=0|39=0|55=AAPL|54=1|453=3|448=P1|447=D|452=1|448=P2|447=D|452=3|448=P3|447=D|452=11|10=000\n"
	fs := newFakeFS(map[string]string{"a.log": line})

	b := bindWithEmbedded(t, fs, BindOptions{Paths: []string{"a.log"}})
	rows := collectAll(t, b.NewPartition(nil))

	row := rows[0]
	groups, ok := row[ColGroups].(map[int32][]map[int32]string)
	if !ok {
		t.Fatalf("groups not the expected map type: %v", row[ColGroups])
	}

	instances := groups[453]
	if len(instances) != 3 {
		t.Fatalf("got %d instances, want 3", len(instances))
	}
	if instances[0][448] != "P1" || instances[1][448] != "P2" || instances[2][452] != "11" {
		t.Fatalf("instances = %+v", instances)
	}
}

func TestScanProjectionSkipsGroups(t *testing.T) {
	line := "35=8|37=O1|17=E1|150=0|39=0|55=AAPL|54=1|453=3|448=P1|447=D|452=1|448=P2|447=D|452=3|448=P3|447=D|452=11|10=000\n"
	fs := newFakeFS(map[string]string{"a.log": line})

	b := bindWithEmbedded(t, fs, BindOptions{Paths: []string{"a.log"}})

	projection := AllColumns(len(b.Schema))
	projection[ColGroups] = false

	rows := collectAll(t, b.NewPartition(projection))
	row := rows[0]

	if row[ColGroups] != nil {
		t.Fatalf("groups = %v, want nil (not projected)", row[ColGroups])
	}
	if row[ColSymbol] != "AAPL" {
		t.Fatalf("other columns must still populate: Symbol = %v", row[ColSymbol])
	}
}

func TestScanCustomTagColumn(t *testing.T) {
	fs := newFakeFS(map[string]string{"a.log": "35=D|60=20231215-10:30:00|55=AAPL\n"})

	b := bindWithEmbedded(t, fs, BindOptions{
		Paths: []string{"a.log"},
		RTags: []string{"TransactTime"},
	})

	if len(b.CustomColumns) != 1 || b.CustomColumns[0].Name != "TransactTime" {
		t.Fatalf("custom columns = %+v", b.CustomColumns)
	}

	rows := collectAll(t, b.NewPartition(nil))
	row := rows[0]

	idx := numFixedColumns
	if row[idx] != "20231215-10:30:00" {
		t.Fatalf("custom column = %v", row[idx])
	}
}

func TestScanMultipleFilesDrainInOrder(t *testing.T) {
	fs := newFakeFS(map[string]string{
		"a.log": "35=D|11=A1\n",
		"b.log": "35=D|11=A2\n",
	})

	b := bindWithEmbedded(t, fs, BindOptions{Paths: []string{"a.log", "b.log"}})
	rows := collectAll(t, b.NewPartition(nil))

	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0][ColClOrdID] != "A1" || rows[1][ColClOrdID] != "A2" {
		t.Fatalf("ClOrdIDs = %v, %v; want A1 then A2", rows[0][ColClOrdID], rows[1][ColClOrdID])
	}
}
