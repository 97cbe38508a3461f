// Package show handles the tabular show script: the raw attribute, state and
// cue tables an operator edits, plus import and export of whole shows as
// folders of CSV files.
//
// A show folder contains three files:
//
//	attributes.csv  - one row per physical node (MAC, number, name, prefix)
//	states.csv      - the cue state vocabulary
//	all_cues.csv    - the cue script, groups separated by blank rows
//	                  (rows whose cells are all empty, e.g. ",,,")
//
// Tables are carried around as raw text (Table) until the cue compiler
// validates them; the persistence layer stores them verbatim so operator
// edits survive even when compilation rejects the content.
//
// Built-in template tables are embedded in the binary and used on first run
// and for the /reset command.
package show
