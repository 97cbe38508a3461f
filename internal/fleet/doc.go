// Package fleet tracks the live status of the remote nodes working the
// current cue group.
//
// The status table holds one row per cue in the current snapshot. It is
// torn down and rebuilt on every navigation event, then filled in
// incrementally as node reports arrive off the mesh. Reports for cue
// numbers outside the current group are stale leftovers from a previous
// group and are dropped.
package fleet
