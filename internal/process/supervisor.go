package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// outputBufferSize is the read buffer for daemon stdout/stderr capture.
const outputBufferSize = 4096

// Config holds the supervised daemon invocation.
type Config struct {
	// Name identifies the daemon in logs.
	Name string

	// Binary is the path to the daemon executable.
	Binary string

	// Args are the daemon's command line arguments.
	Args []string

	// RestartDelay is the pause before relaunching a dead daemon.
	// Default: 5s.
	RestartDelay time.Duration

	// MaxRestarts limits relaunch attempts. 0 means unlimited.
	MaxRestarts int

	// GracefulTimeout is how long Stop waits after SIGTERM before
	// escalating to SIGKILL. Default: 10s.
	GracefulTimeout time.Duration
}

// Logger is the logging interface for supervisor events.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Supervisor owns one daemon child process. Safe for concurrent use.
type Supervisor struct {
	cfg    Config
	logger Logger

	mu            sync.RWMutex
	cmd           *exec.Cmd
	running       bool
	restarts      int
	stopRequested bool
	done          chan struct{}
}

// NewSupervisor creates a supervisor, applying defaults for zero values.
func NewSupervisor(cfg Config) *Supervisor {
	if cfg.RestartDelay <= 0 {
		cfg.RestartDelay = 5 * time.Second
	}
	if cfg.GracefulTimeout <= 0 {
		cfg.GracefulTimeout = 10 * time.Second
	}
	return &Supervisor{cfg: cfg, logger: noopLogger{}}
}

// SetLogger sets the logger. Set it once during wiring, before Start.
func (s *Supervisor) SetLogger(logger Logger) {
	s.logger = logger
}

// Start launches the daemon and begins watching it. The daemon is
// relaunched after RestartDelay whenever it exits without Stop being
// called, up to MaxRestarts attempts.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("%s is already running", s.cfg.Name)
	}
	s.stopRequested = false
	s.done = make(chan struct{})
	s.mu.Unlock()

	if err := s.launch(ctx); err != nil {
		return err
	}
	go s.watch(ctx)
	return nil
}

// launch starts one daemon instance and wires its output into the log.
func (s *Supervisor) launch(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, s.cfg.Binary, s.cfg.Args...) //nolint:gosec // binary path comes from validated config

	// Own process group, so Stop can signal the daemon and any children
	// it forks in one go.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("creating stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("creating stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", s.cfg.Name, err)
	}

	s.mu.Lock()
	s.cmd = cmd
	s.running = true
	s.mu.Unlock()

	go s.captureOutput("stdout", stdout)
	go s.captureOutput("stderr", stderr)

	s.logger.Info("daemon started",
		"name", s.cfg.Name,
		"binary", s.cfg.Binary,
		"pid", cmd.Process.Pid,
	)
	return nil
}

// captureOutput forwards one daemon output stream into the debug log.
func (s *Supervisor) captureOutput(stream string, r io.Reader) {
	buf := make([]byte, outputBufferSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			s.logger.Debug("daemon output",
				"name", s.cfg.Name,
				"stream", stream,
				"output", string(buf[:n]),
			)
		}
		if err != nil {
			return
		}
	}
}

// watch waits for the daemon to exit and relaunches it unless Stop was
// requested or the restart budget ran out.
func (s *Supervisor) watch(ctx context.Context) {
	defer close(s.done)

	for {
		s.mu.RLock()
		cmd := s.cmd
		s.mu.RUnlock()

		err := cmd.Wait()

		s.mu.Lock()
		s.running = false
		stopRequested := s.stopRequested
		s.mu.Unlock()

		if stopRequested || ctx.Err() != nil {
			s.logger.Info("daemon stopped", "name", s.cfg.Name)
			return
		}

		s.logger.Warn("daemon exited unexpectedly", "name", s.cfg.Name, "error", err)

		s.mu.Lock()
		s.restarts++
		attempt := s.restarts
		s.mu.Unlock()

		if s.cfg.MaxRestarts > 0 && attempt > s.cfg.MaxRestarts {
			s.logger.Error("daemon restart budget exhausted",
				"name", s.cfg.Name,
				"attempts", attempt-1,
			)
			return
		}

		s.logger.Info("relaunching daemon",
			"name", s.cfg.Name,
			"attempt", attempt,
			"delay", s.cfg.RestartDelay,
		)
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.cfg.RestartDelay):
		}

		s.mu.RLock()
		stopRequested = s.stopRequested
		s.mu.RUnlock()
		if stopRequested {
			return
		}

		if err := s.launch(ctx); err != nil {
			s.logger.Error("daemon relaunch failed", "name", s.cfg.Name, "error", err)
			return
		}
	}
}

// Stop terminates the daemon: SIGTERM to its process group, then SIGKILL
// after the grace period. Safe to call when nothing is running.
func (s *Supervisor) Stop() error {
	s.mu.Lock()
	s.stopRequested = true
	cmd := s.cmd
	running := s.running
	done := s.done
	s.mu.Unlock()

	if !running || cmd == nil || cmd.Process == nil || done == nil {
		return nil
	}

	pid := cmd.Process.Pid
	s.logger.Info("stopping daemon", "name", s.cfg.Name, "pid", pid)

	if err := syscall.Kill(-pid, syscall.SIGTERM); err != nil && !errors.Is(err, syscall.ESRCH) {
		s.logger.Warn("SIGTERM failed", "name", s.cfg.Name, "error", err)
	}

	select {
	case <-done:
		return nil
	case <-time.After(s.cfg.GracefulTimeout):
		s.logger.Warn("daemon ignored SIGTERM, killing", "name", s.cfg.Name)
	}

	if err := syscall.Kill(-pid, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
		return fmt.Errorf("killing %s: %w", s.cfg.Name, err)
	}
	<-done
	return nil
}

// IsRunning reports whether the daemon is currently alive.
func (s *Supervisor) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Restarts returns how many times the daemon has been relaunched.
func (s *Supervisor) Restarts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.restarts
}

// PID returns the daemon's process id, or 0 when nothing is running.
func (s *Supervisor) PID() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.running && s.cmd != nil && s.cmd.Process != nil {
		return s.cmd.Process.Pid
	}
	return 0
}
