package cue

// Attribute is the static identity record for one physical node on the
// mesh. CuePrefix resolves cue ownership: every cue number beginning with
// this prefix belongs to this node, so prefixes must be unique across the
// attributes table.
type Attribute struct {
	MACAddress string `json:"mac_address"`
	NodeNumber string `json:"node_number"`
	NodeName   string `json:"node_name"`
	CuePrefix  string `json:"cue_prefix"`
}

// State is one entry of the cue state vocabulary. CueState is the key;
// the node state fields describe the transition a cue in this state asks
// its node to perform.
type State struct {
	CueState         string `json:"cue_state"`
	InitialNodeState string `json:"initial_node_state"`
	FinalNodeState   string `json:"final_node_state"`
}

// Cue is one timed action instruction for one node.
type Cue struct {
	Group    int    `json:"group"`
	Number   string `json:"number"`
	Prefix   string `json:"prefix"`
	When     string `json:"when"`
	Action   string `json:"action"`
	CueState string `json:"cue_state"`
}

// Sequence is a compiled, validated cue script: cues carrying contiguous
// group numbers 0..MaxGroup. A trailing blank run in the script yields a
// final group with no cues (MaxGroup still counts it).
//
// Sequence is immutable after compilation; replace it wholesale.
type Sequence struct {
	cues     []Cue
	maxGroup int
}

// NewSequence builds a sequence from already-grouped cues.
// maxGroup may exceed the highest group present (empty terminal group).
func NewSequence(cues []Cue, maxGroup int) *Sequence {
	return &Sequence{cues: cues, maxGroup: maxGroup}
}

// MaxGroup returns the highest group number in the sequence. An empty
// sequence has MaxGroup 0.
func (s *Sequence) MaxGroup() int {
	if s == nil {
		return 0
	}
	return s.maxGroup
}

// Group returns the cues belonging to one group, in script order.
func (s *Sequence) Group(n int) []Cue {
	if s == nil {
		return nil
	}
	var out []Cue
	for _, c := range s.cues {
		if c.Group == n {
			out = append(out, c)
		}
	}
	return out
}

// Cues returns a copy of every cue in the sequence, in script order.
func (s *Sequence) Cues() []Cue {
	if s == nil {
		return nil
	}
	out := make([]Cue, len(s.cues))
	copy(out, s.cues)
	return out
}

// Len returns the number of cues in the sequence.
func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.cues)
}

// Snapshot is the derived, read-only view of the current cue group:
// the group's cues in script order, indexed by cue prefix. It is rebuilt
// whenever the current group changes.
type Snapshot struct {
	Group int
	cues  []Cue
	byPre map[string]Cue
}

// NewSnapshot derives the snapshot for one group of a sequence.
func NewSnapshot(seq *Sequence, group int) *Snapshot {
	cues := seq.Group(group)
	byPre := make(map[string]Cue, len(cues))
	for _, c := range cues {
		byPre[c.Prefix] = c
	}
	return &Snapshot{Group: group, cues: cues, byPre: byPre}
}

// Cues returns a copy of the snapshot's cues in script order.
func (s *Snapshot) Cues() []Cue {
	if s == nil {
		return nil
	}
	out := make([]Cue, len(s.cues))
	copy(out, s.cues)
	return out
}

// ByPrefix returns the snapshot cue owned by the given prefix.
func (s *Snapshot) ByPrefix(prefix string) (Cue, bool) {
	if s == nil {
		return Cue{}, false
	}
	c, ok := s.byPre[prefix]
	return c, ok
}

// Len returns the number of cues in the snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.cues)
}
