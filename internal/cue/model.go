package cue

import "sync"

// Model is the shared in-memory data model: attributes, states and the
// compiled cue sequence. It is owned by the orchestrator and passed by
// reference to every component that needs it; there is no package-level
// state.
//
// Every mutation replaces one table wholesale under the lock, so concurrent
// readers see either the previous table or the new one, never a mixture.
type Model struct {
	mu         sync.RWMutex
	attributes []Attribute
	states     []State
	seq        *Sequence
}

// NewModel creates an empty model.
func NewModel() *Model {
	return &Model{seq: NewSequence(nil, 0)}
}

// ReplaceAttributes swaps in a new attributes table.
func (m *Model) ReplaceAttributes(attrs []Attribute) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attributes = attrs
}

// ReplaceStates swaps in a new states table.
func (m *Model) ReplaceStates(states []State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states = states
}

// ReplaceSequence swaps in a new compiled cue sequence.
func (m *Model) ReplaceSequence(seq *Sequence) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if seq == nil {
		seq = NewSequence(nil, 0)
	}
	m.seq = seq
}

// Attributes returns a copy of the attributes table.
func (m *Model) Attributes() []Attribute {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Attribute, len(m.attributes))
	copy(out, m.attributes)
	return out
}

// States returns a copy of the states table.
func (m *Model) States() []State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]State, len(m.states))
	copy(out, m.states)
	return out
}

// Sequence returns the current cue sequence. Sequences are immutable, so
// the reference itself is safe to share.
func (m *Model) Sequence() *Sequence {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.seq
}
