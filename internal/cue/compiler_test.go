package cue

import (
	"testing"

	"github.com/stagewire/cuemesh/internal/show"
)

func attrTable(rows ...[]string) *show.Table {
	t := show.NewTable("MAC Address", "Node Number", "Node Name", "Cue Prefix")
	for _, r := range rows {
		t.AppendRow(r...)
	}
	return t
}

func stateTable(rows ...[]string) *show.Table {
	t := show.NewTable("Cue State", "Initial Node State", "Final Node State")
	for _, r := range rows {
		t.AppendRow(r...)
	}
	return t
}

func cueTable(rows ...[]string) *show.Table {
	t := show.NewTable("Cue Number", "When", "Action", "Cue State")
	for _, r := range rows {
		t.AppendRow(r...)
	}
	return t
}

func testAttrs() []Attribute {
	return []Attribute{
		{MACAddress: "aa:aa", NodeNumber: "1", NodeName: "Pyro", CuePrefix: "P"},
		{MACAddress: "bb:bb", NodeNumber: "2", NodeName: "Lighting", CuePrefix: "L"},
	}
}

func testStates() []State {
	return []State{
		{CueState: "Standby", InitialNodeState: "Idle", FinalNodeState: "Armed"},
		{CueState: "Go", InitialNodeState: "Armed", FinalNodeState: "Fired"},
	}
}

func TestCompileAttributes(t *testing.T) {
	raw := attrTable(
		[]string{"aa:aa", "1", "Pyro", "P"},
		[]string{"", "", "", ""},
		[]string{"bb:bb", "2", "Lighting", "L"},
	)

	attrs, issue := CompileAttributes(raw)
	if issue != nil {
		t.Fatalf("CompileAttributes() issue = %v", issue)
	}
	if len(attrs) != 2 {
		t.Fatalf("len(attrs) = %d, want 2 (blank row skipped)", len(attrs))
	}
	if attrs[1].CuePrefix != "L" {
		t.Errorf("attrs[1].CuePrefix = %q, want L", attrs[1].CuePrefix)
	}
}

func TestCompileAttributesColumnOrderInsensitive(t *testing.T) {
	raw := show.NewTable("Cue Prefix", "Node Name", "Node Number", "MAC Address")
	raw.AppendRow("P", "Pyro", "1", "aa:aa")

	attrs, issue := CompileAttributes(raw)
	if issue != nil {
		t.Fatalf("CompileAttributes() issue = %v", issue)
	}
	if attrs[0].MACAddress != "aa:aa" || attrs[0].CuePrefix != "P" {
		t.Errorf("attrs[0] = %+v, cells mapped to wrong columns", attrs[0])
	}
}

func TestCompileAttributesWrongColumns(t *testing.T) {
	raw := show.NewTable("MAC Address", "Node Number")
	raw.AppendRow("aa:aa", "1")

	_, issue := CompileAttributes(raw)
	if issue == nil {
		t.Fatal("CompileAttributes() issue = nil, want column error")
	}
	if issue.Severity != SeverityError {
		t.Errorf("severity = %v, want error", issue.Severity)
	}
	if issue.Table != "attributes" {
		t.Errorf("issue.Table = %q, want attributes", issue.Table)
	}
}

func TestCompileAttributesDuplicateNodeNumber(t *testing.T) {
	raw := attrTable(
		[]string{"aa:aa", "1", "Pyro", "P"},
		[]string{"bb:bb", "1", "Lighting", "L"},
	)

	attrs, issue := CompileAttributes(raw)
	if issue == nil {
		t.Fatal("CompileAttributes() issue = nil, want duplicate warning")
	}
	if issue.Severity != SeverityWarning {
		t.Errorf("severity = %v, want warning", issue.Severity)
	}
	if len(attrs) != 2 {
		t.Errorf("len(attrs) = %d, want 2 (warning still returns the table)", len(attrs))
	}
}

func TestCompileStates(t *testing.T) {
	raw := stateTable(
		[]string{"Standby", "Idle", "Armed"},
		[]string{"Go", "Armed", "Fired"},
	)

	states, issue := CompileStates(raw)
	if issue != nil {
		t.Fatalf("CompileStates() issue = %v", issue)
	}
	if len(states) != 2 {
		t.Fatalf("len(states) = %d, want 2", len(states))
	}
	if states[0].FinalNodeState != "Armed" {
		t.Errorf("states[0].FinalNodeState = %q, want Armed", states[0].FinalNodeState)
	}
}

func TestCompileStatesWrongColumns(t *testing.T) {
	raw := show.NewTable("State")
	_, issue := CompileStates(raw)
	if issue == nil || issue.Severity != SeverityError {
		t.Fatalf("CompileStates() issue = %v, want fatal column error", issue)
	}
}

func TestCompileCuesGrouping(t *testing.T) {
	raw := cueTable(
		[]string{"", "", "", ""}, // leading blank, ignored
		[]string{"P1", "House out", "Arm pots", "Standby"},
		[]string{"L1", "With P1", "Blackout", "Standby"},
		[]string{"", "", "", ""},
		[]string{"", "", "", ""}, // blank run counts once
		[]string{"P2", "Downbeat", "Fire pots", "Go"},
	)

	seq, issue := CompileCues(raw, testAttrs(), testStates())
	if issue != nil {
		t.Fatalf("CompileCues() issue = %v", issue)
	}
	if got := seq.MaxGroup(); got != 1 {
		t.Fatalf("MaxGroup() = %d, want 1", got)
	}
	if got := len(seq.Group(0)); got != 2 {
		t.Errorf("len(Group(0)) = %d, want 2", got)
	}
	g1 := seq.Group(1)
	if len(g1) != 1 || g1[0].Number != "P2" {
		t.Errorf("Group(1) = %v, want [P2]", g1)
	}

	// Group numbers must be contiguous from zero.
	for i, c := range seq.Cues() {
		if c.Group < 0 || c.Group > seq.MaxGroup() {
			t.Errorf("cue %d group = %d, outside [0, %d]", i, c.Group, seq.MaxGroup())
		}
	}
}

func TestCompileCuesTrailingBlankOpensEmptyGroup(t *testing.T) {
	raw := cueTable(
		[]string{"P1", "House out", "Arm pots", "Standby"},
		[]string{"", "", "", ""},
		[]string{"", "", "", ""},
	)

	seq, issue := CompileCues(raw, testAttrs(), testStates())
	if issue != nil {
		t.Fatalf("CompileCues() issue = %v", issue)
	}
	if got := seq.MaxGroup(); got != 1 {
		t.Fatalf("MaxGroup() = %d, want 1", got)
	}
	if got := len(seq.Group(1)); got != 0 {
		t.Errorf("len(Group(1)) = %d, want 0 (empty terminal group)", got)
	}
}

func TestCompileCuesPrefixResolution(t *testing.T) {
	raw := cueTable([]string{"P1.5", "When", "Action", "Go"})

	seq, issue := CompileCues(raw, testAttrs(), testStates())
	if issue != nil {
		t.Fatalf("CompileCues() issue = %v", issue)
	}
	if got := seq.Cues()[0].Prefix; got != "P" {
		t.Errorf("prefix of P1.5 = %q, want P (digits and dots stripped)", got)
	}
}

func TestCompileCuesUnknownPrefix(t *testing.T) {
	raw := cueTable([]string{"X1", "When", "Action", "Go"})

	_, issue := CompileCues(raw, testAttrs(), testStates())
	if issue == nil || issue.Severity != SeverityError {
		t.Fatalf("CompileCues() issue = %v, want fatal prefix error", issue)
	}
}

func TestCompileCuesAmbiguousPrefix(t *testing.T) {
	attrs := append(testAttrs(), Attribute{NodeNumber: "3", CuePrefix: "P"})
	raw := cueTable([]string{"P1", "When", "Action", "Go"})

	_, issue := CompileCues(raw, attrs, testStates())
	if issue == nil || issue.Severity != SeverityError {
		t.Fatalf("CompileCues() issue = %v, want fatal prefix error", issue)
	}
}

func TestCompileCuesUnknownState(t *testing.T) {
	raw := cueTable([]string{"P1", "When", "Action", "Detonate"})

	_, issue := CompileCues(raw, testAttrs(), testStates())
	if issue == nil || issue.Severity != SeverityError {
		t.Fatalf("CompileCues() issue = %v, want fatal state error", issue)
	}
}

func TestCompileCuesWrongColumns(t *testing.T) {
	raw := show.NewTable("Cue", "State")
	_, issue := CompileCues(raw, testAttrs(), testStates())
	if issue == nil || issue.Severity != SeverityError {
		t.Fatalf("CompileCues() issue = %v, want fatal column error", issue)
	}
}
