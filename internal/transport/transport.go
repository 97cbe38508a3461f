package transport

import (
	"context"
	"sync"

	"github.com/stagewire/cuemesh/internal/wire"
)

// Daemon is the slice of the mesh daemon client the transport needs.
// *alfred.Client satisfies it; tests substitute a fake.
type Daemon interface {
	Publish(ctx context.Context, channel int, data []byte) error
	FetchAll(ctx context.Context, channel int) ([]byte, error)
}

// Logger is the logging interface for transport events.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Transport serialises domain values onto mesh channels and back.
// Safe for concurrent use.
type Transport struct {
	daemon Daemon
	logger Logger

	// lastSent caches the most recent value sent per channel, for
	// introspection by the presentation layer.
	mu       sync.RWMutex
	lastSent map[Channel]any
}

// New creates a transport over the given daemon client.
func New(daemon Daemon) *Transport {
	return &Transport{
		daemon:   daemon,
		logger:   noopLogger{},
		lastSent: make(map[Channel]any),
	}
}

// SetLogger sets the logger used for absorbed daemon failures.
func (t *Transport) SetLogger(logger Logger) {
	t.logger = logger
}

// Send encodes a value and publishes it under the channel id, fire and
// forget. Daemon failures are absorbed: the mesh gives no delivery
// guarantee anyway and the value goes out again on the next interval.
// An encode failure is a programming error and is returned.
func (t *Transport) Send(ctx context.Context, ch Channel, v any) error {
	data, err := wire.Encode(v)
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.lastSent[ch] = v
	t.mu.Unlock()

	if err := t.daemon.Publish(ctx, int(ch), data); err != nil {
		t.logger.Debug("mesh publish absorbed", "channel", ch.String(), "error", err)
	}
	return nil
}

// Receive fetches and decodes every record currently published on a
// channel. It returns nil when the channel is empty, every record was
// corrupt, or the daemon invocation failed; on a lossy broadcast medium
// those cases are indistinguishable and equally non-fatal.
func (t *Transport) Receive(ctx context.Context, ch Channel) []any {
	blob, err := t.daemon.FetchAll(ctx, int(ch))
	if err != nil {
		t.logger.Debug("mesh fetch absorbed", "channel", ch.String(), "error", err)
		return nil
	}
	if len(blob) == 0 {
		return nil
	}
	return wire.Decode(blob)
}

// ReceiveOne fetches a channel expected to hold a single record. It returns
// the value and true only when exactly one record decoded; zero records or
// a batch yield false, and callers wanting the batch use Receive.
func (t *Transport) ReceiveOne(ctx context.Context, ch Channel) (any, bool) {
	values := t.Receive(ctx, ch)
	if len(values) != 1 {
		return nil, false
	}
	return values[0], true
}

// LastSent returns the most recent value sent on a channel, if any.
func (t *Transport) LastSent(ch Channel) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.lastSent[ch]
	return v, ok
}
