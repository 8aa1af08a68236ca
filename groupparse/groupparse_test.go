package groupparse

import (
	"testing"

	"github.com/stephenlclarke/fixlogreader/dictionary"
	"github.com/stephenlclarke/fixlogreader/tokenize"
)

func partyGroupDef() map[int]*dictionary.Group {
	return map[int]*dictionary.Group{
		453: {CountTag: 453, Members: []int{448, 447, 452}},
	}
}

func TestParseRepeatingGroup(t *testing.T) {
	line := "35=8|55=AAPL|453=3|448=P1|447=D|452=1|448=P2|447=D|452=3|448=P3|447=D|452=11|10=000"
	pm := tokenize.Tokenize([]byte(line), '|')

	groups := Parse(pm, partyGroupDef(), true)

	instances, ok := groups[453]
	if !ok || len(instances) != 3 {
		t.Fatalf("got %d instances, want 3 (ok=%v)", len(instances), ok)
	}

	want := [][3]string{{"P1", "D", "1"}, {"P2", "D", "3"}, {"P3", "D", "11"}}
	for i, inst := range instances {
		if len(inst) != 3 {
			t.Fatalf("instance %d has %d members, want 3", i, len(inst))
		}
		got := [3]string{string(inst[0].Value), string(inst[1].Value), string(inst[2].Value)}
		if got != want[i] {
			t.Fatalf("instance %d = %v, want %v", i, got, want[i])
		}
	}
}

func TestParseNotMaterializedReturnsNil(t *testing.T) {
	line := "35=8|453=1|448=P1|447=D|452=1"
	pm := tokenize.Tokenize([]byte(line), '|')

	if got := Parse(pm, partyGroupDef(), false); got != nil {
		t.Fatalf("expected nil when materialize=false, got %v", got)
	}
}

func TestDeclaredCountZeroOrNegativeSkipsGroup(t *testing.T) {
	pm := tokenize.Tokenize([]byte("35=8|453=0|448=P1"), '|')

	if got := Parse(pm, partyGroupDef(), true); got != nil {
		t.Fatalf("expected nil group for count 0, got %v", got)
	}

	pm = tokenize.Tokenize([]byte("35=8|453=-1|448=P1"), '|')

	if got := Parse(pm, partyGroupDef(), true); got != nil {
		t.Fatalf("expected nil group for count -1, got %v", got)
	}
}

func TestDeclaredCountAboveCeilingSkipsGroup(t *testing.T) {
	pm := tokenize.Tokenize([]byte("35=8|453=101|448=P1"), '|')

	if got := Parse(pm, partyGroupDef(), true); got != nil {
		t.Fatalf("expected nil group for count > 100, got %v", got)
	}
}

func TestShortDataTruncatesSilently(t *testing.T) {
	// Declared count is 3 but only one instance of data is present.
	pm := tokenize.Tokenize([]byte("35=8|453=3|448=P1|447=D|452=1|10=000"), '|')

	groups := Parse(pm, partyGroupDef(), true)
	instances := groups[453]
	if len(instances) != 1 {
		t.Fatalf("got %d instances, want 1", len(instances))
	}
}

func TestCountTagAbsentSkipsGroup(t *testing.T) {
	pm := tokenize.Tokenize([]byte("35=8|55=AAPL"), '|')

	if got := Parse(pm, partyGroupDef(), true); got != nil {
		t.Fatalf("expected nil when count tag absent, got %v", got)
	}
}

func TestNestedSubgroupsAreNotExpanded(t *testing.T) {
	// A member tag that is itself a count tag for a subgroup is treated as
	// an ordinary member entry if it's in the member set: nested groups are
	// flattened, not recursively parsed.
	def := map[int]*dictionary.Group{
		453: {
			CountTag: 453,
			Members:  []int{448, 802},
			Subgroups: map[int]*dictionary.Group{
				802: {CountTag: 802, Members: []int{523}},
			},
		},
	}

	pm := tokenize.Tokenize([]byte("35=8|453=1|448=P1|802=1|523=X"), '|')
	groups := Parse(pm, def, true)

	// 523 is only a member of the nested subgroup definition, not of the
	// outer group's flat member set, so it terminates the instance instead
	// of being folded in — this is the observable effect of "flat" parsing.
	instances := groups[453]
	if len(instances) != 1 || len(instances[0]) != 2 {
		t.Fatalf("expected one flattened instance with 2 members, got %+v", instances)
	}
}
