package monitor

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/stagewire/cuemesh/internal/cue"
	"github.com/stagewire/cuemesh/internal/fleet"
	"github.com/stagewire/cuemesh/internal/infrastructure/mqtt"
)

// Publisher is the broker client the monitor publishes through.
// Satisfied by mqtt.Client.
type Publisher interface {
	PublishRetained(topic string, payload []byte) error
	IsConnected() bool
}

// Monitor publishes retained show state to the broker.
type Monitor struct {
	pub    Publisher
	topics mqtt.Topics
}

// New creates a monitor publishing through the given client.
func New(pub Publisher) *Monitor {
	return &Monitor{pub: pub}
}

// currentPayload is the JSON shape published to cuemesh/state/current.
type currentPayload struct {
	Group     int       `json:"group"`
	Cues      []cue.Cue `json:"cues"`
	Timestamp time.Time `json:"timestamp"`
}

// nodesPayload is the JSON shape published to cuemesh/state/nodes.
type nodesPayload struct {
	Rows      []fleet.Row `json:"rows"`
	Timestamp time.Time   `json:"timestamp"`
}

// pointerPayload is the JSON shape published to cuemesh/state/pointer.
type pointerPayload struct {
	Group     int       `json:"group"`
	MaxGroup  int       `json:"max_group"`
	Timestamp time.Time `json:"timestamp"`
}

// PublishState mirrors the given state to the three retained topics.
// When the broker is unreachable it returns an error; the caller
// decides whether that is worth logging.
func (m *Monitor) PublishState(snap *cue.Snapshot, rows []fleet.Row, group, maxGroup int) error {
	if !m.pub.IsConnected() {
		return mqtt.ErrNotConnected
	}

	now := time.Now().UTC()

	var cues []cue.Cue
	if snap != nil {
		cues = snap.Cues()
	}

	if err := m.publishJSON(m.topics.StateCurrent(), currentPayload{
		Group:     group,
		Cues:      cues,
		Timestamp: now,
	}); err != nil {
		return err
	}

	if err := m.publishJSON(m.topics.StateNodes(), nodesPayload{
		Rows:      rows,
		Timestamp: now,
	}); err != nil {
		return err
	}

	return m.publishJSON(m.topics.StatePointer(), pointerPayload{
		Group:     group,
		MaxGroup:  maxGroup,
		Timestamp: now,
	})
}

func (m *Monitor) publishJSON(topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("serialising %s payload: %w", topic, err)
	}
	return m.pub.PublishRetained(topic, payload)
}
