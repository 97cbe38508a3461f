package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the cue server.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Show      ShowConfig      `yaml:"show"`
	Database  DatabaseConfig  `yaml:"database"`
	Daemon    DaemonConfig    `yaml:"daemon"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ShowConfig contains show library locations and identity.
type ShowConfig struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	ShowsDir    string `yaml:"shows_dir"`
	ExamplesDir string `yaml:"examples_dir"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// DaemonConfig contains settings for the mesh broadcast daemon client.
type DaemonConfig struct {
	// Binary is the path to the alfred executable.
	Binary string `yaml:"binary"`

	// Socket is the unix socket path passed via -u. Empty uses the
	// daemon's default socket.
	Socket string `yaml:"socket"`

	// TimeoutMS bounds each daemon invocation in milliseconds.
	TimeoutMS int `yaml:"timeout_ms"`

	// Managed makes the server start and supervise the daemon itself
	// instead of expecting the init system to run it.
	Managed bool `yaml:"managed"`

	// Args are the daemon's command line arguments when managed
	// (typically the batman interface, e.g. ["-i", "bat0"]).
	Args []string `yaml:"args"`

	// RestartDelayMS is the pause before a managed daemon is
	// relaunched after dying.
	RestartDelayMS int `yaml:"restart_delay_ms"`

	// MaxRestarts limits managed daemon relaunches. 0 means unlimited.
	MaxRestarts int `yaml:"max_restarts"`
}

// SchedulerConfig contains the periodic task intervals in milliseconds.
type SchedulerConfig struct {
	HeartbeatMS   int `yaml:"heartbeat_ms"`
	AttributesMS  int `yaml:"attributes_ms"`
	StatesMS      int `yaml:"states_ms"`
	CurrentCuesMS int `yaml:"current_cues_ms"`
	NodePollMS    int `yaml:"node_poll_ms"`
	StalenessMS   int `yaml:"staleness_ms"`
	MonitorMS     int `yaml:"monitor_ms"`
}

// MQTTConfig contains MQTT broker connection settings for the optional
// state mirror.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// InfluxDBConfig contains InfluxDB connection settings for the
// optional telemetry recorder.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: CUEMESH_SECTION_KEY
// For example: CUEMESH_DATABASE_PATH, CUEMESH_DAEMON_BINARY
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Show: ShowConfig{
			ID:          "show-001",
			Name:        "saved",
			ShowsDir:    "./shows",
			ExamplesDir: "./examples",
		},
		Database: DatabaseConfig{
			Path:        "./data/cuemesh.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Daemon: DaemonConfig{
			Binary:         "alfred",
			TimeoutMS:      2000,
			RestartDelayMS: 5000,
		},
		Scheduler: SchedulerConfig{
			HeartbeatMS:   250,
			AttributesMS:  2000,
			StatesMS:      2500,
			CurrentCuesMS: 100,
			NodePollMS:    300,
			StalenessMS:   60000,
			MonitorMS:     1000,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "cuemesh-server",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: CUEMESH_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CUEMESH_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	if v := os.Getenv("CUEMESH_SHOW_SHOWS_DIR"); v != "" {
		cfg.Show.ShowsDir = v
	}
	if v := os.Getenv("CUEMESH_SHOW_EXAMPLES_DIR"); v != "" {
		cfg.Show.ExamplesDir = v
	}

	if v := os.Getenv("CUEMESH_DAEMON_BINARY"); v != "" {
		cfg.Daemon.Binary = v
	}
	if v := os.Getenv("CUEMESH_DAEMON_SOCKET"); v != "" {
		cfg.Daemon.Socket = v
	}

	if v := os.Getenv("CUEMESH_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("CUEMESH_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("CUEMESH_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	if v := os.Getenv("CUEMESH_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.Show.ShowsDir == "" {
		errs = append(errs, "show.shows_dir is required")
	}

	if c.Daemon.Binary == "" {
		errs = append(errs, "daemon.binary is required")
	}
	if c.Daemon.TimeoutMS < 0 {
		errs = append(errs, "daemon.timeout_ms must not be negative")
	}
	if c.Daemon.Managed && c.Daemon.RestartDelayMS < 0 {
		errs = append(errs, "daemon.restart_delay_ms must not be negative")
	}

	intervals := map[string]int{
		"scheduler.heartbeat_ms":    c.Scheduler.HeartbeatMS,
		"scheduler.attributes_ms":   c.Scheduler.AttributesMS,
		"scheduler.states_ms":       c.Scheduler.StatesMS,
		"scheduler.current_cues_ms": c.Scheduler.CurrentCuesMS,
		"scheduler.node_poll_ms":    c.Scheduler.NodePollMS,
		"scheduler.staleness_ms":    c.Scheduler.StalenessMS,
		"scheduler.monitor_ms":      c.Scheduler.MonitorMS,
	}
	for name, v := range intervals {
		if v <= 0 {
			errs = append(errs, name+" must be positive")
		}
	}

	if c.MQTT.Enabled {
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, "mqtt.qos must be 0, 1, or 2")
		}
		if c.MQTT.Broker.Host == "" {
			errs = append(errs, "mqtt.broker.host is required when mqtt is enabled")
		}
	}

	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Token == "" {
			errs = append(errs, "influxdb.token is required when influxdb is enabled (set CUEMESH_INFLUXDB_TOKEN)")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetDaemonTimeout returns the daemon invocation timeout as a Duration.
func (c *Config) GetDaemonTimeout() time.Duration {
	return time.Duration(c.Daemon.TimeoutMS) * time.Millisecond
}

// GetDaemonRestartDelay returns the managed daemon relaunch delay as a
// Duration.
func (c *Config) GetDaemonRestartDelay() time.Duration {
	return time.Duration(c.Daemon.RestartDelayMS) * time.Millisecond
}

// Interval helpers convert the millisecond settings to Durations.

// GetHeartbeatInterval returns the heartbeat broadcast interval.
func (c *Config) GetHeartbeatInterval() time.Duration {
	return time.Duration(c.Scheduler.HeartbeatMS) * time.Millisecond
}

// GetAttributesInterval returns the attribute broadcast interval.
func (c *Config) GetAttributesInterval() time.Duration {
	return time.Duration(c.Scheduler.AttributesMS) * time.Millisecond
}

// GetStatesInterval returns the state broadcast interval.
func (c *Config) GetStatesInterval() time.Duration {
	return time.Duration(c.Scheduler.StatesMS) * time.Millisecond
}

// GetCurrentCuesInterval returns the current cue broadcast interval.
func (c *Config) GetCurrentCuesInterval() time.Duration {
	return time.Duration(c.Scheduler.CurrentCuesMS) * time.Millisecond
}

// GetNodePollInterval returns the node report poll interval.
func (c *Config) GetNodePollInterval() time.Duration {
	return time.Duration(c.Scheduler.NodePollMS) * time.Millisecond
}

// GetStalenessInterval returns the staleness sweep interval.
func (c *Config) GetStalenessInterval() time.Duration {
	return time.Duration(c.Scheduler.StalenessMS) * time.Millisecond
}

// GetMonitorInterval returns the MQTT state mirror publish interval.
func (c *Config) GetMonitorInterval() time.Duration {
	return time.Duration(c.Scheduler.MonitorMS) * time.Millisecond
}
