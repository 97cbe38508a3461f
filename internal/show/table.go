package show

import "strings"

// Table is a raw, loosely formatted tabular script as the operator supplied
// it: a header row of column names and zero or more rows of text cells.
// No validation happens here; the cue compiler decides whether the content
// is usable.
//
// Table is JSON-serialisable so the persistence layer can store it verbatim.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// NewTable creates a table with the given columns and no rows.
func NewTable(columns ...string) *Table {
	return &Table{Columns: columns}
}

// AppendRow adds a row, padding or truncating it to the column count.
func (t *Table) AppendRow(cells ...string) {
	row := make([]string, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// ColumnIndex returns the position of the named column, or -1 if absent.
// Column names are matched exactly.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the trimmed value of the named column in the given row.
// Missing columns and short rows yield the empty string.
func (t *Table) Cell(row int, column string) string {
	i := t.ColumnIndex(column)
	if i < 0 || row < 0 || row >= len(t.Rows) || i >= len(t.Rows[row]) {
		return ""
	}
	return strings.TrimSpace(t.Rows[row][i])
}

// IsBlankRow reports whether every cell in the given row is empty or
// whitespace. Blank rows delimit cue groups in the cue script.
func (t *Table) IsBlankRow(row int) bool {
	if row < 0 || row >= len(t.Rows) {
		return true
	}
	for _, cell := range t.Rows[row] {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// IsEmpty reports whether the table has no columns and no rows.
// The persistence layer returns empty tables for missing keys.
func (t *Table) IsEmpty() bool {
	return t == nil || (len(t.Columns) == 0 && len(t.Rows) == 0)
}

// Clone returns an independent copy of the table.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	cpy := &Table{Columns: make([]string, len(t.Columns))}
	copy(cpy.Columns, t.Columns)
	if t.Rows != nil {
		cpy.Rows = make([][]string, len(t.Rows))
		for i, row := range t.Rows {
			cpy.Rows[i] = make([]string, len(row))
			copy(cpy.Rows[i], row)
		}
	}
	return cpy
}
