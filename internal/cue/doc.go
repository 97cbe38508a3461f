// Package cue holds the cue data model: node attributes, the cue state
// vocabulary, the compiled cue sequence, and the navigator that moves the
// current-group pointer through it.
//
// The compiler turns raw show tables (package show) into validated, grouped
// sequences. Validation outcomes are FormatIssue values with a severity:
// warnings mean the table was applied anyway and the operator is told;
// errors mean the derived sequence is rejected (the raw table is still
// persisted upstream so edits are never lost).
//
// # Grouping
//
// Cues in the script are partitioned into groups by blank rows. Groups are
// numbered 0..MaxGroup contiguously in script order; consecutive blank rows
// count as one boundary, leading blank rows are ignored, and a trailing
// blank run opens one final empty group (stepping past the last cue parks
// the show on an empty snapshot rather than wrapping immediately).
//
// # Concurrency
//
// Model and Navigator are safe for concurrent use. Every mutation is a
// wholesale replace of one table; readers always observe either the old or
// the new value, never a torn one.
package cue
