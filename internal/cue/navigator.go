package cue

import (
	"context"
	"fmt"
	"sync"
)

// Pointer persists the current-group pointer across restarts.
// Loading a missing value yields 0, never an error.
type Pointer interface {
	Load(ctx context.Context) (int, error)
	Replace(ctx context.Context, value int) error
}

// Navigator moves the current-group pointer through the cue sequence with
// wraparound, keeping the derived snapshot up to date and persisting the
// pointer after every change.
//
// An optional OnChange callback fires after each snapshot rebuild; the
// orchestrator uses it to reset the node status table.
type Navigator struct {
	mu       sync.Mutex
	model    *Model
	pointer  Pointer
	current  int
	snapshot *Snapshot
	onChange func(*Snapshot)
}

// NewNavigator restores the persisted pointer, clamps it to the valid range
// (falling back to group 0 when the stored value no longer fits the
// sequence), and derives the initial snapshot.
func NewNavigator(ctx context.Context, model *Model, pointer Pointer) (*Navigator, error) {
	stored, err := pointer.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading cue group pointer: %w", err)
	}

	n := &Navigator{model: model, pointer: pointer}
	if stored < 0 || stored > model.Sequence().MaxGroup() {
		stored = 0
	}
	n.current = stored
	n.snapshot = NewSnapshot(model.Sequence(), stored)
	return n, nil
}

// SetOnChange registers a callback invoked, under the navigator lock, every
// time the snapshot is rebuilt. Set it once during wiring, before Run.
func (n *Navigator) SetOnChange(fn func(*Snapshot)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onChange = fn
}

// Current returns the current group number.
func (n *Navigator) Current() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// MaxGroup returns the highest group number of the current sequence.
func (n *Navigator) MaxGroup() int {
	return n.model.Sequence().MaxGroup()
}

// Snapshot returns the current cue snapshot.
func (n *Navigator) Snapshot() *Snapshot {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.snapshot
}

// Previous steps back one group, wrapping from 0 to MaxGroup.
func (n *Navigator) Previous(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	target := n.current - 1
	if n.current == 0 {
		target = n.model.Sequence().MaxGroup()
	}
	return n.moveLocked(ctx, target)
}

// Next advances one group, wrapping from MaxGroup to 0.
func (n *Navigator) Next(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	target := n.current + 1
	if n.current == n.model.Sequence().MaxGroup() {
		target = 0
	}
	return n.moveLocked(ctx, target)
}

// Warp jumps straight to a group. It reports false, leaving the state
// untouched, when the group is outside [0, MaxGroup].
func (n *Navigator) Warp(ctx context.Context, group int) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if group < 0 || group > n.model.Sequence().MaxGroup() {
		return false, nil
	}
	if err := n.moveLocked(ctx, group); err != nil {
		return false, err
	}
	return true, nil
}

// Reload recomputes the snapshot after the model's sequence was replaced:
// the pointer is forced back to group 0.
func (n *Navigator) Reload(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.moveLocked(ctx, 0)
}

// moveLocked persists the pointer, rebuilds the snapshot and fires the
// change callback. Callers hold n.mu.
func (n *Navigator) moveLocked(ctx context.Context, group int) error {
	if err := n.pointer.Replace(ctx, group); err != nil {
		return fmt.Errorf("persisting cue group pointer: %w", err)
	}
	n.current = group
	n.snapshot = NewSnapshot(n.model.Sequence(), group)
	if n.onChange != nil {
		n.onChange(n.snapshot)
	}
	return nil
}
