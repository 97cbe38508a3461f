// cuemesh - cue control server for wireless show networks
//
// cuemeshd is the operator-side daemon: it holds the show (node
// attributes, cue states and the grouped cue script), broadcasts it
// over a batman-adv mesh via the alfred datagram daemon, tracks what
// every node last reported and takes operator commands on stdin.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/stagewire/cuemesh/migrations"

	"github.com/stagewire/cuemesh/internal/alfred"
	"github.com/stagewire/cuemesh/internal/console"
	"github.com/stagewire/cuemesh/internal/cue"
	"github.com/stagewire/cuemesh/internal/fleet"
	"github.com/stagewire/cuemesh/internal/infrastructure/config"
	"github.com/stagewire/cuemesh/internal/infrastructure/database"
	"github.com/stagewire/cuemesh/internal/infrastructure/influxdb"
	"github.com/stagewire/cuemesh/internal/infrastructure/logging"
	"github.com/stagewire/cuemesh/internal/infrastructure/mqtt"
	"github.com/stagewire/cuemesh/internal/monitor"
	"github.com/stagewire/cuemesh/internal/process"
	"github.com/stagewire/cuemesh/internal/server"
	"github.com/stagewire/cuemesh/internal/store"
	"github.com/stagewire/cuemesh/internal/transport"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for
// testability. Returning an error allows main to handle exit codes
// consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting cuemesh",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Persistence
	tables := store.NewTableStore(db.DB)
	counters := store.NewCounterStore(db.DB)
	errlog := store.NewErrorLog(db.DB)
	pointer := counters.Counter(store.CounterCuePointer)

	// Supervise the alfred daemon ourselves (optional; most installs
	// run it under the init system)
	if cfg.Daemon.Managed {
		supervisor := process.NewSupervisor(process.Config{
			Name:         "alfred",
			Binary:       cfg.Daemon.Binary,
			Args:         cfg.Daemon.Args,
			RestartDelay: cfg.GetDaemonRestartDelay(),
			MaxRestarts:  cfg.Daemon.MaxRestarts,
		})
		supervisor.SetLogger(log.With("component", "process"))
		if err := supervisor.Start(ctx); err != nil {
			return fmt.Errorf("starting alfred: %w", err)
		}
		defer func() {
			log.Info("stopping alfred")
			if stopErr := supervisor.Stop(); stopErr != nil {
				log.Error("error stopping alfred", "error", stopErr)
			}
		}()
		log.Info("alfred supervised", "pid", supervisor.PID())
	}

	// Mesh transport over the alfred daemon
	daemon := alfred.New(alfred.Config{
		Binary:  cfg.Daemon.Binary,
		Socket:  cfg.Daemon.Socket,
		Timeout: cfg.GetDaemonTimeout(),
	})
	bus := transport.New(daemon)
	bus.SetLogger(log.With("component", "transport"))
	log.Info("mesh transport ready", "binary", cfg.Daemon.Binary)

	// Domain model and navigation
	model := cue.NewModel()
	nav, err := cue.NewNavigator(ctx, model, pointer)
	if err != nil {
		return fmt.Errorf("initialising navigator: %w", err)
	}
	status := fleet.NewStatusTable()

	// MQTT state mirror (optional)
	var mirror *monitor.Monitor
	if cfg.MQTT.Enabled {
		mqttClient, mqttErr := mqtt.Connect(cfg.MQTT)
		if mqttErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", mqttErr)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		mirror = monitor.New(mqttClient)
	} else {
		log.Info("MQTT state mirror disabled")
	}

	// InfluxDB telemetry (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	srv := server.New(cfg, log, server.Deps{
		Model:     model,
		Navigator: nav,
		Status:    status,
		Transport: bus,
		Tables:    tables,
		Pointer:   pointer,
		ErrorLog:  errlog,
		Monitor:   mirror,
		Telemetry: influxClient,
	})
	con := console.New(srv, os.Stdin, os.Stdout)

	log.Info("initialisation complete, starting tasks")
	if err := srv.Run(ctx, con); err != nil {
		return fmt.Errorf("server: %w", err)
	}

	log.Info("cuemesh stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses CUEMESH_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("CUEMESH_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
