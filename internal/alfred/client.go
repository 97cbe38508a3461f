package alfred

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// defaultTimeout bounds one daemon invocation. The orchestrator's fastest
// task fires every 100ms, but invocations run off its goroutine, so the
// bound only needs to stop a wedged daemon from piling up processes.
const defaultTimeout = 2 * time.Second

// Config holds the daemon invocation settings.
type Config struct {
	// Binary is the path to the alfred executable. Default: "alfred".
	Binary string

	// Socket is an optional unix socket path passed as -u, for daemons
	// not using the default socket.
	Socket string

	// Timeout bounds each invocation. Default: 2s.
	Timeout time.Duration
}

// Client shells out to the alfred daemon. Safe for concurrent use; each
// call spawns an independent process.
type Client struct {
	cfg Config
}

// New creates a daemon client, applying defaults for zero values.
func New(cfg Config) *Client {
	if cfg.Binary == "" {
		cfg.Binary = "alfred"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{cfg: cfg}
}

// Publish sends one payload to the daemon under a channel id.
// Delivery is best effort; success only means the daemon accepted the blob.
func (c *Client) Publish(ctx context.Context, channel int, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.cfg.Binary, c.args("-s", channel)...) //nolint:gosec // binary path comes from validated config
	cmd.Stdin = bytes.NewReader(data)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: channel %d: %v (%s)", ErrPublishFailed, channel, err, stderr.String())
	}
	return nil
}

// FetchAll returns the daemon's raw text output for a channel: every record
// currently held, concatenated and escaped in the daemon's storage format.
// An empty channel yields empty output and no error.
func (c *Client) FetchAll(ctx context.Context, channel int) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.cfg.Binary, c.args("-r", channel)...) //nolint:gosec // binary path comes from validated config
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: channel %d: %v (%s)", ErrFetchFailed, channel, err, stderr.String())
	}
	return stdout.Bytes(), nil
}

// args builds the argument list for one invocation.
func (c *Client) args(mode string, channel int) []string {
	args := []string{mode, strconv.Itoa(channel)}
	if c.cfg.Socket != "" {
		args = append(args, "-u", c.cfg.Socket)
	}
	return args
}
