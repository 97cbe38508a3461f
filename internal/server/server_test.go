package server

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stagewire/cuemesh/internal/cue"
	"github.com/stagewire/cuemesh/internal/fleet"
	"github.com/stagewire/cuemesh/internal/infrastructure/config"
	"github.com/stagewire/cuemesh/internal/infrastructure/database"
	"github.com/stagewire/cuemesh/internal/infrastructure/logging"
	"github.com/stagewire/cuemesh/internal/show"
	"github.com/stagewire/cuemesh/internal/store"
	"github.com/stagewire/cuemesh/internal/transport"

	// Register embedded schema migrations.
	_ "github.com/stagewire/cuemesh/migrations"
)

// fakeDaemon is a mesh daemon stand-in that accepts everything and
// returns nothing.
type fakeDaemon struct{}

func (fakeDaemon) Publish(ctx context.Context, channel int, data []byte) error {
	return nil
}

func (fakeDaemon) FetchAll(ctx context.Context, channel int) ([]byte, error) {
	return nil, nil
}

type testEnv struct {
	srv      *Server
	model    *cue.Model
	nav      *cue.Navigator
	tables   *store.TableStore
	counters *store.CounterStore
	showsDir string
}

// newTestServer wires a server against a temporary migrated database
// and a daemon fake. The bootstrap task is NOT run; tests that exercise
// controller methods call bootstrap (or env.boot) first to open the
// setup barrier.
func newTestServer(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "cuemesh.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	tables := store.NewTableStore(db.DB)
	counters := store.NewCounterStore(db.DB)
	pointer := counters.Counter(store.CounterCuePointer)

	model := cue.NewModel()
	nav, err := cue.NewNavigator(context.Background(), model, pointer)
	if err != nil {
		t.Fatalf("NewNavigator() error = %v", err)
	}

	cfg := &config.Config{}
	cfg.Show.ShowsDir = t.TempDir()
	cfg.Show.ExamplesDir = t.TempDir()
	cfg.Logging = config.LoggingConfig{Level: "error", Format: "text", Output: "stderr"}

	srv := New(cfg, logging.New(cfg.Logging, "test"), Deps{
		Model:     model,
		Navigator: nav,
		Status:    fleet.NewStatusTable(),
		Transport: transport.New(fakeDaemon{}),
		Tables:    tables,
		Pointer:   pointer,
		ErrorLog:  store.NewErrorLog(db.DB),
	})

	return &testEnv{
		srv:      srv,
		model:    model,
		nav:      nav,
		tables:   tables,
		counters: counters,
		showsDir: cfg.Show.ShowsDir,
	}
}

func (e *testEnv) boot(t *testing.T) {
	t.Helper()
	if err := e.srv.bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap() error = %v", err)
	}
}

func TestBootstrapLoadsTemplatesOnFirstRun(t *testing.T) {
	env := newTestServer(t)
	env.boot(t)

	if got := len(env.model.Attributes()); got == 0 {
		t.Fatal("bootstrap left the attributes model empty")
	}
	if got := env.nav.MaxGroup(); got != 2 {
		t.Errorf("MaxGroup() = %d, want 2", got)
	}
	if got := env.nav.Current(); got != 0 {
		t.Errorf("Current() = %d, want 0", got)
	}

	// The templates must also have been persisted as raw tables.
	raw, err := env.tables.Load(context.Background(), store.TableCues)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if raw.IsEmpty() {
		t.Error("bootstrap did not persist the template cues table")
	}
}

func TestBootstrapRestoresPointer(t *testing.T) {
	env := newTestServer(t)

	if err := env.counters.Replace(context.Background(), store.CounterCuePointer, 2); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	env.boot(t)

	if got := env.nav.Current(); got != 2 {
		t.Errorf("Current() = %d, want 2", got)
	}
}

func TestBootstrapClampsOversizedPointer(t *testing.T) {
	env := newTestServer(t)

	if err := env.counters.Replace(context.Background(), store.CounterCuePointer, 40); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	env.boot(t)

	if got := env.nav.Current(); got != 0 {
		t.Errorf("Current() = %d, want 0", got)
	}
}

func TestApplyBundleKeepsModelOnCompileError(t *testing.T) {
	env := newTestServer(t)
	env.boot(t)
	ctx := context.Background()

	bundle, err := show.Templates()
	if err != nil {
		t.Fatalf("Templates() error = %v", err)
	}
	bundle.Cues = show.NewTable("Wrong Column")
	bundle.Cues.AppendRow("x")

	err = env.srv.applyBundle(ctx, bundle)
	var issue *cue.FormatIssue
	if !errors.As(err, &issue) {
		t.Fatalf("applyBundle() error = %v, want *cue.FormatIssue", err)
	}
	if issue.Severity != cue.SeverityError {
		t.Errorf("issue severity = %v, want error", issue.Severity)
	}

	// The previous derived state stays live.
	if got := env.nav.MaxGroup(); got != 2 {
		t.Errorf("MaxGroup() after failed apply = %d, want 2", got)
	}

	// The raw import is persisted regardless.
	raw, err := env.tables.Load(ctx, store.TableCues)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(raw.Columns) != 1 || raw.Columns[0] != "Wrong Column" {
		t.Errorf("persisted cues columns = %v, want the rejected import", raw.Columns)
	}
}

func TestApplyBundleAppliesOnWarning(t *testing.T) {
	env := newTestServer(t)
	env.boot(t)
	ctx := context.Background()

	bundle, err := show.Templates()
	if err != nil {
		t.Fatalf("Templates() error = %v", err)
	}
	// Two nodes sharing a number is questionable but usable.
	bundle.Attributes.AppendRow("b8:27:eb:4f:11:09", "1", "Spare Pyro", "P")

	err = env.srv.applyBundle(ctx, bundle)
	var issue *cue.FormatIssue
	if !errors.As(err, &issue) {
		t.Fatalf("applyBundle() error = %v, want *cue.FormatIssue", err)
	}
	if issue.Severity != cue.SeverityWarning {
		t.Errorf("issue severity = %v, want warning", issue.Severity)
	}
	if got := len(env.model.Attributes()); got != 4 {
		t.Errorf("attributes after warning apply = %d, want 4", got)
	}
}

func TestWarp(t *testing.T) {
	env := newTestServer(t)
	env.boot(t)
	ctx := context.Background()

	ok, err := env.srv.Warp(ctx, 2)
	if err != nil {
		t.Fatalf("Warp() error = %v", err)
	}
	if !ok {
		t.Fatal("Warp(2) = false, want true")
	}
	if got := env.nav.Current(); got != 2 {
		t.Errorf("Current() = %d, want 2", got)
	}

	ok, err = env.srv.Warp(ctx, 99)
	if err != nil {
		t.Fatalf("Warp() error = %v", err)
	}
	if ok {
		t.Error("Warp(99) = true, want false")
	}
	if got := env.nav.Current(); got != 2 {
		t.Errorf("Current() after rejected warp = %d, want 2", got)
	}
}

func TestSaveListOpenRoundTrip(t *testing.T) {
	env := newTestServer(t)
	env.boot(t)
	ctx := context.Background()

	if err := env.srv.SaveShow(ctx, "gala"); err != nil {
		t.Fatalf("SaveShow() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.showsDir, "gala", "all_cues.csv")); err != nil {
		t.Fatalf("saved show missing cues file: %v", err)
	}

	names, err := env.srv.ListShows(ctx)
	if err != nil {
		t.Fatalf("ListShows() error = %v", err)
	}
	if len(names) != 1 || names[0] != "gala" {
		t.Errorf("ListShows() = %v, want [gala]", names)
	}

	// Move the pointer, reopen, and the pointer must rewind.
	if _, err := env.srv.Warp(ctx, 1); err != nil {
		t.Fatalf("Warp() error = %v", err)
	}
	if err := env.srv.OpenSaved(ctx, "gala"); err != nil {
		t.Fatalf("OpenSaved() error = %v", err)
	}
	if got := env.nav.Current(); got != 0 {
		t.Errorf("Current() after open = %d, want 0", got)
	}
}

func TestOpenSavedNotFound(t *testing.T) {
	env := newTestServer(t)
	env.boot(t)

	err := env.srv.OpenSaved(context.Background(), "missing")
	if !errors.Is(err, show.ErrShowNotFound) {
		t.Errorf("OpenSaved() error = %v, want ErrShowNotFound", err)
	}
}

func TestListShowsMissingDirectory(t *testing.T) {
	env := newTestServer(t)
	env.boot(t)
	env.srv.cfg.Show.ShowsDir = filepath.Join(t.TempDir(), "nope")

	names, err := env.srv.ListShows(context.Background())
	if err != nil {
		t.Fatalf("ListShows() error = %v", err)
	}
	if len(names) != 0 {
		t.Errorf("ListShows() = %v, want empty", names)
	}
}

func TestReset(t *testing.T) {
	env := newTestServer(t)
	env.boot(t)
	ctx := context.Background()

	if _, err := env.srv.Warp(ctx, 2); err != nil {
		t.Fatalf("Warp() error = %v", err)
	}
	if err := env.srv.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if got := env.nav.Current(); got != 0 {
		t.Errorf("Current() after reset = %d, want 0", got)
	}
	if got := env.nav.MaxGroup(); got != 2 {
		t.Errorf("MaxGroup() after reset = %d, want 2", got)
	}
}
