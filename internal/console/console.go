package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/stagewire/cuemesh/internal/cue"
	"github.com/stagewire/cuemesh/internal/show"
)

// Controller is the surface the console drives. Satisfied by the
// server's orchestrator.
type Controller interface {
	// Warp moves the cue pointer to the given group. It returns false
	// when the group is out of range; the pointer is untouched.
	Warp(ctx context.Context, group int) (bool, error)

	// SaveShow exports the loaded show tables to the named folder in
	// the shows directory, creating it if absent.
	SaveShow(ctx context.Context, name string) error

	// OpenSaved imports the named show from the shows directory.
	// Returns show.ErrShowNotFound when it does not exist.
	OpenSaved(ctx context.Context, name string) error

	// OpenExample imports the named show from the examples directory.
	OpenExample(ctx context.Context, name string) error

	// ListShows names the shows available in the shows directory.
	ListShows(ctx context.Context) ([]string, error)

	// Reset restores the built-in template show.
	Reset(ctx context.Context) error
}

// Console reads operator commands from a reader and writes responses
// to a writer. One console runs per server.
type Console struct {
	in   io.Reader
	out  io.Writer
	ctrl Controller
}

// New creates a console bound to the given controller and streams.
func New(ctrl Controller, in io.Reader, out io.Writer) *Console {
	return &Console{in: in, out: out, ctrl: ctrl}
}

// Run reads commands until the context is cancelled or the input
// closes. It returns ErrClosed on /quit or EOF, so the orchestrator
// can tell an operator sign-off from a fault.
func (c *Console) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		msg, err := c.Execute(ctx, scanner.Text())
		if msg != "" {
			fmt.Fprintln(c.out, msg)
		}
		if err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading console input: %w", err)
	}
	return ErrClosed
}

// Execute runs a single command line and returns the message to show
// the operator. The returned error is non-nil only for ErrClosed;
// every command failure becomes a message instead.
func (c *Console) Execute(ctx context.Context, line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}

	switch fields[0] {
	case "/goto":
		return c.execGoto(ctx, fields), nil
	case "/save":
		return c.execSave(ctx, fields), nil
	case "/open":
		return c.execOpen(ctx, fields), nil
	case "/list":
		return c.execList(ctx), nil
	case "/reset":
		return c.render("reset", c.ctrl.Reset(ctx)), nil
	case "/quit":
		return "bye", ErrClosed
	default:
		return fmt.Sprintf("Input Error: unknown command %q", fields[0]), nil
	}
}

func (c *Console) execGoto(ctx context.Context, fields []string) string {
	if len(fields) != 3 || fields[1] != "cue" {
		return "Input Error: usage is /goto cue <number>"
	}

	group, err := strconv.Atoi(fields[2])
	if err != nil {
		return "Input Error: invalid cue group number"
	}

	ok, err := c.ctrl.Warp(ctx, group)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	if !ok {
		return "Input Error: invalid cue group number"
	}
	return fmt.Sprintf("at cue group %d", group)
}

func (c *Console) execSave(ctx context.Context, fields []string) string {
	if len(fields) != 2 {
		return "Input Error: usage is /save <name>"
	}

	name := fields[1]
	if msg := c.render("save", c.ctrl.SaveShow(ctx, name)); msg != "" {
		return msg
	}
	return fmt.Sprintf("show saved as %q", name)
}

func (c *Console) execOpen(ctx context.Context, fields []string) string {
	if len(fields) != 3 {
		return "Input Error: usage is /open saved|example <name>"
	}

	name := fields[2]
	switch fields[1] {
	case "saved":
		err := c.ctrl.OpenSaved(ctx, name)
		if errors.Is(err, show.ErrShowNotFound) {
			return "show was not found"
		}
		if msg := c.render("open", err); msg != "" {
			return msg
		}
		return fmt.Sprintf("opened show %q", name)
	case "example":
		err := c.ctrl.OpenExample(ctx, name)
		if errors.Is(err, show.ErrShowNotFound) {
			return "example show was not found"
		}
		if msg := c.render("open", err); msg != "" {
			return msg
		}
		return fmt.Sprintf("opened example show %q", name)
	default:
		return "Input Error: usage is /open saved|example <name>"
	}
}

func (c *Console) execList(ctx context.Context) string {
	names, err := c.ctrl.ListShows(ctx)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	if len(names) == 0 {
		return "no saved shows"
	}
	return strings.Join(names, "\n")
}

// render turns a controller error into an operator message. Compiler
// format issues get the Warning/Error framing from their severity;
// anything else is reported verbatim. A nil error renders as "".
func (c *Console) render(op string, err error) string {
	if err == nil {
		return ""
	}

	var issue *cue.FormatIssue
	if errors.As(err, &issue) {
		label := "Format Error"
		if issue.Severity == cue.SeverityWarning {
			label = "Format Warning"
		}
		return fmt.Sprintf("%s: check the %s sheet's %s%s", label, issue.Table, issue.Problem, issue.Hint)
	}

	return fmt.Sprintf("Error: %s failed: %v", op, err)
}
