package fleet

import (
	"testing"
	"time"

	"github.com/stagewire/cuemesh/internal/cue"
)

func testSnapshot() *cue.Snapshot {
	seq := cue.NewSequence([]cue.Cue{
		{Group: 0, Number: "P1", Prefix: "P", When: "House out", Action: "Arm pots", CueState: "Standby"},
		{Group: 0, Number: "L1", Prefix: "L", When: "With P1", Action: "Blackout", CueState: "Standby"},
		{Group: 1, Number: "P2", Prefix: "P", When: "Downbeat", Action: "Fire pots", CueState: "Go"},
	}, 1)
	return cue.NewSnapshot(seq, 0)
}

func TestResetBuildsShell(t *testing.T) {
	table := NewStatusTable()
	table.Reset(testSnapshot())

	rows := table.Rows()
	if len(rows) != 2 {
		t.Fatalf("len(Rows()) = %d, want 2", len(rows))
	}
	if rows[0].CueNumber != "P1" || rows[1].CueNumber != "L1" {
		t.Errorf("rows out of snapshot order: %q, %q", rows[0].CueNumber, rows[1].CueNumber)
	}
	if rows[0].CueState != "Standby" || rows[0].When != "House out" {
		t.Errorf("cue fields not inherited: %+v", rows[0])
	}
	if rows[0].NodeNumber != "" || rows[0].NodeState != "" || rows[0].LastUpdated != "" {
		t.Errorf("node fields not blank: %+v", rows[0])
	}
}

func TestApplyReports(t *testing.T) {
	table := NewStatusTable()
	table.Reset(testSnapshot())

	ts := time.Now()
	applied := table.ApplyReports([]Report{
		{CueNumber: "P1", NodeNumber: "1", NodeState: "Armed", Timestamp: ts},
		{CueNumber: "P2", NodeNumber: "1", NodeState: "Fired", Timestamp: ts}, // not in group 0
	})
	if applied != 1 {
		t.Fatalf("ApplyReports() = %d, want 1 (stale cue dropped)", applied)
	}

	rows := table.Rows()
	if rows[0].NodeState != "Armed" || rows[0].NodeNumber != "1" {
		t.Errorf("row not updated: %+v", rows[0])
	}
	if rows[1].NodeState != "" {
		t.Errorf("unreported row touched: %+v", rows[1])
	}
}

func TestApplyReportsLatestWins(t *testing.T) {
	table := NewStatusTable()
	table.Reset(testSnapshot())

	t1 := time.Now()
	t2 := t1.Add(time.Second)
	table.ApplyReports([]Report{{CueNumber: "P1", NodeNumber: "1", NodeState: "Idle", Timestamp: t1}})
	table.ApplyReports([]Report{{CueNumber: "P1", NodeNumber: "1", NodeState: "Armed", Timestamp: t2}})

	rows := table.Rows()
	if rows[0].NodeState != "Armed" || !rows[0].Timestamp.Equal(t2) {
		t.Errorf("row = %+v, want latest report", rows[0])
	}
}

func TestResetDiscardsReports(t *testing.T) {
	table := NewStatusTable()
	snap := testSnapshot()
	table.Reset(snap)
	table.ApplyReports([]Report{{CueNumber: "P1", NodeNumber: "1", NodeState: "Armed", Timestamp: time.Now()}})

	table.Reset(snap)
	if rows := table.Rows(); rows[0].NodeState != "" {
		t.Errorf("report survived reset: %+v", rows[0])
	}
}

func TestRefreshStaleness(t *testing.T) {
	table := NewStatusTable()
	table.Reset(testSnapshot())

	now := time.Now()
	table.ApplyReports([]Report{
		{CueNumber: "P1", NodeNumber: "1", NodeState: "Armed", Timestamp: now.Add(-5 * time.Minute)},
	})

	table.RefreshStaleness(now)
	rows := table.Rows()
	if got := rows[0].LastUpdated; got != "5 min" {
		t.Errorf("LastUpdated = %q, want \"5 min\"", got)
	}
	if got := rows[1].LastUpdated; got != "" {
		t.Errorf("unreported row LastUpdated = %q, want blank", got)
	}
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2026, 6, 1, 21, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		ts   time.Time
		want string
	}{
		{"no report", time.Time{}, ""},
		{"fresh", now.Add(-10 * time.Second), "0 min"},
		{"rounds to nearest", now.Add(-90 * time.Second), "2 min"},
		{"five minutes", now.Add(-5 * time.Minute), "5 min"},
		{"at ceiling", now.Add(-99 * time.Minute), "99 min"},
		{"beyond ceiling", now.Add(-150 * time.Minute), ">99 min"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatAge(now, tt.ts); got != tt.want {
				t.Errorf("formatAge() = %q, want %q", got, tt.want)
			}
		})
	}
}
