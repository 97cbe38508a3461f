package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/stagewire/cuemesh/internal/cue"
	"github.com/stagewire/cuemesh/internal/fleet"
	"github.com/stagewire/cuemesh/internal/infrastructure/config"
	"github.com/stagewire/cuemesh/internal/infrastructure/influxdb"
	"github.com/stagewire/cuemesh/internal/infrastructure/logging"
	"github.com/stagewire/cuemesh/internal/monitor"
	"github.com/stagewire/cuemesh/internal/show"
	"github.com/stagewire/cuemesh/internal/store"
	"github.com/stagewire/cuemesh/internal/transport"
)

// Deps carries the collaborators a Server orchestrates. Model, Navigator,
// Status, Transport, Tables, Pointer and ErrorLog are required; Monitor
// and Telemetry are nil when the corresponding integration is disabled.
type Deps struct {
	Model     *cue.Model
	Navigator *cue.Navigator
	Status    *fleet.StatusTable
	Transport *transport.Transport
	Tables    *store.TableStore
	Pointer   *store.Counter
	ErrorLog  *store.ErrorLog
	Monitor   *monitor.Monitor
	Telemetry *influxdb.Client
}

// Server owns the show life cycle: it bootstraps the persisted show,
// runs the periodic mesh tasks and executes console commands. It is the
// console's Controller.
type Server struct {
	cfg *config.Config
	log *logging.Logger

	model     *cue.Model
	nav       *cue.Navigator
	status    *fleet.StatusTable
	bus       *transport.Transport
	tables    *store.TableStore
	pointer   *store.Counter
	errlog    *store.ErrorLog
	monitor   *monitor.Monitor
	telemetry *influxdb.Client

	// applyMu serialises show mutations (open, reset and the bootstrap)
	// so compile and persist steps never interleave.
	applyMu sync.Mutex

	// setupDone is closed once the bootstrap task has loaded a show and
	// restored the cue pointer. Every task except the heartbeat waits
	// on it before its first tick.
	setupDone chan struct{}
}

// New wires a server. The navigator's change hook is claimed here: every
// pointer move resets the node status table and, when telemetry is
// enabled, records the navigation event.
func New(cfg *config.Config, log *logging.Logger, deps Deps) *Server {
	s := &Server{
		cfg:       cfg,
		log:       log,
		model:     deps.Model,
		nav:       deps.Navigator,
		status:    deps.Status,
		bus:       deps.Transport,
		tables:    deps.Tables,
		pointer:   deps.Pointer,
		errlog:    deps.ErrorLog,
		monitor:   deps.Monitor,
		telemetry: deps.Telemetry,
		setupDone: make(chan struct{}),
	}

	s.nav.SetOnChange(func(snap *cue.Snapshot) {
		s.status.Reset(snap)
		if s.telemetry != nil {
			s.telemetry.WriteNavigation(snap.Group, s.model.Sequence().MaxGroup())
		}
	})

	return s
}

// waitSetup blocks until the bootstrap barrier opens or the context ends.
func (s *Server) waitSetup(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.setupDone:
		return nil
	}
}

// bootstrap loads the persisted show tables, falling back to the built-in
// templates when the database is empty, compiles them and restores the cue
// pointer. Compile failures are logged and leave the model empty; the
// operator can recover with /open or /reset, so the server keeps running.
func (s *Server) bootstrap(ctx context.Context) error {
	defer close(s.setupDone)

	attrs, err := s.tables.Load(ctx, store.TableAttributes)
	if err != nil {
		return fmt.Errorf("loading attributes table: %w", err)
	}
	states, err := s.tables.Load(ctx, store.TableStates)
	if err != nil {
		return fmt.Errorf("loading states table: %w", err)
	}
	cues, err := s.tables.Load(ctx, store.TableCues)
	if err != nil {
		return fmt.Errorf("loading cues table: %w", err)
	}

	bundle := &show.Bundle{Attributes: attrs, States: states, Cues: cues}
	if attrs.IsEmpty() && states.IsEmpty() && cues.IsEmpty() {
		bundle, err = show.Templates()
		if err != nil {
			return fmt.Errorf("loading show templates: %w", err)
		}
		s.log.Info("no show in database, loading templates")
	}

	// Remember the pointer before applyBundle rewinds it to zero, then
	// warp back. An out-of-range value (the show shrank) stays at zero.
	stored, err := s.pointer.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading cue pointer: %w", err)
	}

	if err := s.applyBundle(ctx, bundle); err != nil {
		var issue *cue.FormatIssue
		if !errors.As(err, &issue) {
			return err
		}
		s.log.Warn("stored show failed to compile", "error", issue.Error())
		if issue.Severity == cue.SeverityError {
			return nil
		}
	}

	if stored > 0 {
		if _, err := s.nav.Warp(ctx, stored); err != nil {
			return fmt.Errorf("restoring cue pointer: %w", err)
		}
	}

	s.log.Info("show ready",
		"group", s.nav.Current(),
		"max_group", s.nav.MaxGroup(),
		"cues", s.model.Sequence().Len())
	return nil
}

// applyBundle persists the raw tables and, when they compile, swaps the
// derived model in and rewinds the pointer to group zero. The raw tables
// are stored even when compilation fails so the operator's import is
// never lost; the previous derived state stays live in that case.
//
// A returned *cue.FormatIssue with SeverityWarning means the show WAS
// applied; SeverityError means it was not.
func (s *Server) applyBundle(ctx context.Context, bundle *show.Bundle) error {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	if err := s.tables.Replace(ctx, store.TableAttributes, bundle.Attributes); err != nil {
		return fmt.Errorf("persisting attributes table: %w", err)
	}
	if err := s.tables.Replace(ctx, store.TableStates, bundle.States); err != nil {
		return fmt.Errorf("persisting states table: %w", err)
	}
	if err := s.tables.Replace(ctx, store.TableCues, bundle.Cues); err != nil {
		return fmt.Errorf("persisting cues table: %w", err)
	}

	attrs, attrIssue := cue.CompileAttributes(bundle.Attributes)
	if attrIssue != nil && attrIssue.Severity == cue.SeverityError {
		return attrIssue
	}
	states, issue := cue.CompileStates(bundle.States)
	if issue != nil {
		return issue
	}
	seq, issue := cue.CompileCues(bundle.Cues, attrs, states)
	if issue != nil {
		return issue
	}

	s.model.ReplaceAttributes(attrs)
	s.model.ReplaceStates(states)
	s.model.ReplaceSequence(seq)
	if err := s.nav.Reload(ctx); err != nil {
		return fmt.Errorf("rewinding cue pointer: %w", err)
	}

	if attrIssue != nil {
		return attrIssue
	}
	return nil
}

// Warp moves the cue pointer to the given group. Part of the console's
// Controller interface, as are the methods below.
func (s *Server) Warp(ctx context.Context, group int) (bool, error) {
	if err := s.waitSetup(ctx); err != nil {
		return false, err
	}
	return s.nav.Warp(ctx, group)
}

// SaveShow exports the persisted raw tables as CSV files under the named
// folder in the shows directory.
func (s *Server) SaveShow(ctx context.Context, name string) error {
	if err := s.waitSetup(ctx); err != nil {
		return err
	}

	dir, err := show.FolderPath(s.cfg.Show.ShowsDir, name)
	if err != nil {
		return err
	}

	attrs, err := s.tables.Load(ctx, store.TableAttributes)
	if err != nil {
		return err
	}
	states, err := s.tables.Load(ctx, store.TableStates)
	if err != nil {
		return err
	}
	cues, err := s.tables.Load(ctx, store.TableCues)
	if err != nil {
		return err
	}

	bundle := &show.Bundle{Attributes: attrs, States: states, Cues: cues}
	if err := show.Save(dir, bundle); err != nil {
		return err
	}

	s.log.Info("show saved", "name", name, "dir", dir)
	return nil
}

// OpenSaved imports the named show from the shows directory.
func (s *Server) OpenSaved(ctx context.Context, name string) error {
	if err := s.waitSetup(ctx); err != nil {
		return err
	}
	return s.open(ctx, s.cfg.Show.ShowsDir, name)
}

// OpenExample imports the named show from the examples directory.
func (s *Server) OpenExample(ctx context.Context, name string) error {
	if err := s.waitSetup(ctx); err != nil {
		return err
	}
	return s.open(ctx, s.cfg.Show.ExamplesDir, name)
}

func (s *Server) open(ctx context.Context, base, name string) error {
	dir, err := show.FolderPath(base, name)
	if err != nil {
		return err
	}
	bundle, err := show.Load(dir)
	if err != nil {
		return err
	}
	if err := s.applyBundle(ctx, bundle); err != nil {
		return err
	}
	s.log.Info("show opened", "name", name, "max_group", s.nav.MaxGroup())
	return nil
}

// ListShows names the show folders available in the shows directory.
// A missing directory lists as empty.
func (s *Server) ListShows(ctx context.Context) ([]string, error) {
	if err := s.waitSetup(ctx); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.cfg.Show.ShowsDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading shows directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Reset restores the built-in template show.
func (s *Server) Reset(ctx context.Context) error {
	if err := s.waitSetup(ctx); err != nil {
		return err
	}

	bundle, err := show.Templates()
	if err != nil {
		return fmt.Errorf("loading show templates: %w", err)
	}
	if err := s.applyBundle(ctx, bundle); err != nil {
		return err
	}
	s.log.Info("show reset to templates")
	return nil
}
