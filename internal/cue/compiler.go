package cue

import (
	"fmt"
	"sort"
	"strings"

	"github.com/stagewire/cuemesh/internal/show"
)

// Expected column sets for the three operator tables. Order-insensitive:
// the operator may arrange columns however they like.
var (
	attributeColumns = []string{"MAC Address", "Node Number", "Node Name", "Cue Prefix"}
	stateColumns     = []string{"Cue State", "Initial Node State", "Final Node State"}
	cueColumns       = []string{"Cue Number", "When", "Action", "Cue State"}
)

// Table names used in FormatIssue messages.
const (
	tableAttributes = "attributes"
	tableStates     = "states"
	tableCues       = "all cues"
)

// CompileAttributes validates and converts a raw attributes table.
//
// The column set must be exactly {MAC Address, Node Number, Node Name,
// Cue Prefix} (fatal otherwise). Duplicate node numbers are tolerated with
// a warning: the table is returned alongside the issue and the caller
// applies it anyway.
func CompileAttributes(raw *show.Table) ([]Attribute, *FormatIssue) {
	if issue := checkColumns(tableAttributes, raw, attributeColumns); issue != nil {
		return nil, issue
	}

	var attrs []Attribute
	seen := make(map[string]bool)
	var dup string
	for i := range raw.Rows {
		if raw.IsBlankRow(i) {
			continue
		}
		a := Attribute{
			MACAddress: raw.Cell(i, "MAC Address"),
			NodeNumber: raw.Cell(i, "Node Number"),
			NodeName:   raw.Cell(i, "Node Name"),
			CuePrefix:  raw.Cell(i, "Cue Prefix"),
		}
		if a.NodeNumber != "" && seen[a.NodeNumber] && dup == "" {
			dup = a.NodeNumber
		}
		seen[a.NodeNumber] = true
		attrs = append(attrs, a)
	}

	if dup != "" {
		return attrs, &FormatIssue{
			Table:    tableAttributes,
			Problem:  fmt.Sprintf("node number (%s)", dup),
			Hint:     " because two nodes share it. Give every node a unique number.",
			Severity: SeverityWarning,
		}
	}
	return attrs, nil
}

// CompileStates validates and converts a raw states table.
func CompileStates(raw *show.Table) ([]State, *FormatIssue) {
	if issue := checkColumns(tableStates, raw, stateColumns); issue != nil {
		return nil, issue
	}

	var states []State
	for i := range raw.Rows {
		if raw.IsBlankRow(i) {
			continue
		}
		states = append(states, State{
			CueState:         raw.Cell(i, "Cue State"),
			InitialNodeState: raw.Cell(i, "Initial Node State"),
			FinalNodeState:   raw.Cell(i, "Final Node State"),
		})
	}
	return states, nil
}

// CompileCues validates and converts a raw cue script into a grouped
// Sequence.
//
// The pass walks the rows once, in order:
//   - blank rows delimit groups; a run of blank rows counts as one boundary
//   - leading blank rows are ignored, a trailing blank run opens one final
//     empty group
//   - each cue's prefix (its number stripped of digits and '.') must match
//     exactly one attribute, and its state must exist in the states table
//
// All failures are fatal (SeverityError): the caller keeps the previous
// sequence and persists the raw table verbatim.
func CompileCues(raw *show.Table, attrs []Attribute, states []State) (*Sequence, *FormatIssue) {
	if issue := checkColumns(tableCues, raw, cueColumns); issue != nil {
		return nil, issue
	}

	known := make(map[string]bool, len(states))
	for _, s := range states {
		known[s.CueState] = true
	}

	var cues []Cue
	group := 0
	seenCue := false
	inBlank := false
	for i := range raw.Rows {
		if raw.IsBlankRow(i) {
			inBlank = true
			continue
		}
		if inBlank && seenCue {
			group++
		}
		inBlank = false
		seenCue = true

		number := raw.Cell(i, "Cue Number")
		prefix, issue := resolvePrefix(number, attrs)
		if issue != nil {
			return nil, issue
		}
		state := raw.Cell(i, "Cue State")
		if !known[state] {
			return nil, &FormatIssue{
				Table:    tableCues,
				Problem:  "cue states",
				Hint:     ". Make sure the cue states you entered for this sheet match the cue states in the states sheet.",
				Severity: SeverityError,
			}
		}
		cues = append(cues, Cue{
			Group:    group,
			Number:   number,
			Prefix:   prefix,
			When:     raw.Cell(i, "When"),
			Action:   raw.Cell(i, "Action"),
			CueState: state,
		})
	}

	maxGroup := group
	if inBlank && seenCue {
		// Trailing blank run: one more group, holding no cues.
		maxGroup++
	}
	return NewSequence(cues, maxGroup), nil
}

// resolvePrefix strips digits and '.' from a cue number and resolves the
// remainder against the attribute prefixes. Zero or multiple matches are
// fatal: the attributes sheet is the likely cause, so the hint points there.
func resolvePrefix(number string, attrs []Attribute) (string, *FormatIssue) {
	stripped := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == '.' {
			return -1
		}
		return r
	}, number)

	matches := 0
	for _, a := range attrs {
		if a.CuePrefix == stripped {
			matches++
		}
	}
	if matches == 1 {
		return stripped, nil
	}
	return "", &FormatIssue{
		Table:    tableCues,
		Problem:  fmt.Sprintf("cue prefix (%s)", number),
		Hint:     " and you should make sure you assigned a node the prefix in the attributes sheet.",
		Severity: SeverityError,
	}
}

// checkColumns verifies a table's column set matches exactly, ignoring
// order. A mismatch is always fatal.
func checkColumns(table string, raw *show.Table, want []string) *FormatIssue {
	got := make([]string, 0, len(raw.Columns))
	for _, c := range raw.Columns {
		got = append(got, strings.TrimSpace(c))
	}
	sortedWant := append([]string(nil), want...)
	sort.Strings(got)
	sort.Strings(sortedWant)
	if len(got) != len(sortedWant) {
		return columnIssue(table, want)
	}
	for i := range got {
		if got[i] != sortedWant[i] {
			return columnIssue(table, want)
		}
	}
	return nil
}

// joinColumns formats an expected column list for operator messages.
func joinColumns(columns []string) string {
	return strings.Join(columns, ", ")
}
