package fleet

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/stagewire/cuemesh/internal/cue"
)

// Report is one status update broadcast by a remote node: which cue it is
// holding, what state it is in, and when it said so.
type Report struct {
	CueNumber  string    `json:"cue_number"`
	NodeNumber string    `json:"node_number"`
	NodeState  string    `json:"node_state"`
	Timestamp  time.Time `json:"timestamp"`
}

// Row is one line of the node status table. The cue fields are inherited
// from the current snapshot when the table is reset; the node fields stay
// blank until a report for that cue arrives.
type Row struct {
	CueNumber  string    `json:"cue_number"`
	When       string    `json:"when"`
	Action     string    `json:"action"`
	CueState   string    `json:"cue_state"`
	NodeNumber string    `json:"node_number"`
	NodeState  string    `json:"node_state"`
	Timestamp  time.Time `json:"timestamp"`

	// LastUpdated is the staleness display derived from Timestamp,
	// e.g. "5 min" or ">99 min". Blank until the first report.
	LastUpdated string `json:"last_updated"`
}

// maxDisplayMinutes is the ceiling of the staleness display; older reports
// all show as ">99 min".
const maxDisplayMinutes = 99

// StatusTable is the live node status table. Safe for concurrent use.
type StatusTable struct {
	mu    sync.RWMutex
	rows  []Row
	index map[string]int // cue number -> rows position
}

// NewStatusTable creates an empty status table.
func NewStatusTable() *StatusTable {
	return &StatusTable{index: make(map[string]int)}
}

// Reset rebuilds the table as an empty shell for a new snapshot: one row
// per cue, node fields blank. Everything previously reported is discarded.
func (t *StatusTable) Reset(snap *cue.Snapshot) {
	cues := snap.Cues()
	rows := make([]Row, 0, len(cues))
	index := make(map[string]int, len(cues))
	for _, c := range cues {
		index[c.Number] = len(rows)
		rows = append(rows, Row{
			CueNumber: c.Number,
			When:      c.When,
			Action:    c.Action,
			CueState:  c.CueState,
		})
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = rows
	t.index = index
}

// ApplyReports merges node reports into the table, overwriting the node
// fields of matching rows. Reports whose cue number is not in the current
// shell are dropped. Returns the number of rows updated.
func (t *StatusTable) ApplyReports(reports []Report) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	applied := 0
	for _, r := range reports {
		i, ok := t.index[r.CueNumber]
		if !ok {
			continue
		}
		t.rows[i].NodeNumber = r.NodeNumber
		t.rows[i].NodeState = r.NodeState
		t.rows[i].Timestamp = r.Timestamp
		applied++
	}
	return applied
}

// RefreshStaleness recomputes every row's LastUpdated display from the
// given clock reading. Rows without a report yet stay blank. The projection
// is pure and idempotent, so it is safe to run on any schedule.
func (t *StatusTable) RefreshStaleness(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.rows {
		t.rows[i].LastUpdated = formatAge(now, t.rows[i].Timestamp)
	}
}

// Rows returns a copy of the table in snapshot order.
func (t *StatusTable) Rows() []Row {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// formatAge renders the time since a report as the operator-facing
// staleness string. A zero timestamp means no report yet.
func formatAge(now, ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	minutes := int(math.Round(now.Sub(ts).Minutes()))
	if minutes > maxDisplayMinutes {
		return fmt.Sprintf(">%d min", maxDisplayMinutes)
	}
	return fmt.Sprintf("%d min", minutes)
}
