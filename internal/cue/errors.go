package cue

import "fmt"

// Severity classifies a FormatIssue.
type Severity int

const (
	// SeverityWarning means the table content is questionable but usable:
	// the change is applied and the operator is notified.
	SeverityWarning Severity = iota

	// SeverityError means the table is fundamentally the wrong shape:
	// the derived data is rejected (the raw table is still persisted by
	// the caller so the operator's edits are not lost).
	SeverityError
)

// String returns "warning" or "error".
func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// FormatIssue describes a problem found while compiling an operator table.
// It replaces exception-based control flow: callers inspect Severity to
// decide whether the change was applied, instead of inferring it from which
// error type escaped.
type FormatIssue struct {
	// Table names the offending sheet ("attributes", "states", "all cues").
	Table string

	// Problem is the short machine-stable description ("column titles",
	// "cue prefix (P1)", "cue states").
	Problem string

	// Hint is the human-readable remedy shown to the operator.
	Hint string

	Severity Severity
}

func (e *FormatIssue) Error() string {
	return fmt.Sprintf("format %s in %s sheet: %s%s", e.Severity, e.Table, e.Problem, e.Hint)
}

// columnIssue builds the fatal issue for a table whose column set is wrong.
func columnIssue(table string, want []string) *FormatIssue {
	return &FormatIssue{
		Table:    table,
		Problem:  "column titles",
		Hint:     fmt.Sprintf(" because they do not consist of the following: %s", joinColumns(want)),
		Severity: SeverityError,
	}
}
