package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the lamp sequencer.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Outlets   []OutletConfig  `yaml:"outlets"`
	Driver    DriverConfig    `yaml:"driver"`
	Sequencer SequencerConfig `yaml:"sequencer"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	API       APIConfig       `yaml:"api"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig contains the TCP command server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// IdleTimeout is the read deadline for the initial command line (seconds).
	IdleTimeout int `yaml:"idle_timeout"`
}

// OutletConfig maps one lamp name to a physical outlet index.
// The list order is the configuration order used for state snapshots
// and config echoes.
type OutletConfig struct {
	Name  string `yaml:"name"`
	Index int    `yaml:"index"`
}

// DriverConfig selects the relay driver backing the outlet bank.
type DriverConfig struct {
	// Mode selects the driver implementation. Currently "sim" is the only
	// built-in mode; hardware drivers are wired in at build time.
	Mode string `yaml:"mode"`
}

// SequencerConfig contains firing-sequence timing settings.
type SequencerConfig struct {
	// AbortPollWindow is the minimum time to the next channel deadline
	// (seconds) before the drain loop listens for an abort request.
	AbortPollWindow int `yaml:"abort_poll_window"`

	// AbortReadTimeout is the bounded client-read timeout (seconds) used
	// for abort detection inside the drain loop.
	AbortReadTimeout int `yaml:"abort_read_timeout"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
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

// InfluxDBConfig contains InfluxDB telemetry settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// APIConfig contains the read-only HTTP monitor API settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
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
// Environment variables follow the pattern: LAMPSEQ_SECTION_KEY
// For example: LAMPSEQ_DATABASE_PATH, LAMPSEQ_SERVER_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
//
// The sequencer drain loop only listens for an abort when the next
// deadline is more than abort_poll_window seconds away, and each abort
// read is bounded at abort_read_timeout seconds.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        9999,
			IdleTimeout: 10,
		},
		Driver: DriverConfig{
			Mode: "sim",
		},
		Sequencer: SequencerConfig{
			AbortPollWindow:  5,
			AbortReadTimeout: 3,
		},
		Database: DatabaseConfig{
			Path:        "./data/lampseq.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "lampseq-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
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
// Environment variables follow the pattern: LAMPSEQ_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Server
	if v := os.Getenv("LAMPSEQ_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	// Database
	if v := os.Getenv("LAMPSEQ_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("LAMPSEQ_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("LAMPSEQ_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("LAMPSEQ_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("LAMPSEQ_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}
	if c.Server.IdleTimeout < 1 {
		errs = append(errs, "server.idle_timeout must be at least 1 second")
	}

	// Outlet map validation: names and indices must both be unique.
	// The outlet map is static for the lifetime of the process, so a bad
	// mapping is a startup failure, not a runtime one.
	if len(c.Outlets) == 0 {
		errs = append(errs, "outlets must list at least one lamp")
	}
	seenNames := make(map[string]bool, len(c.Outlets))
	seenIndices := make(map[int]bool, len(c.Outlets))
	for _, o := range c.Outlets {
		if o.Name == "" {
			errs = append(errs, "outlets entries require a name")
			continue
		}
		if seenNames[o.Name] {
			errs = append(errs, fmt.Sprintf("outlets name %q duplicated", o.Name))
		}
		if seenIndices[o.Index] {
			errs = append(errs, fmt.Sprintf("outlets index %d duplicated", o.Index))
		}
		seenNames[o.Name] = true
		seenIndices[o.Index] = true
	}

	// Driver validation
	if c.Driver.Mode != "sim" {
		errs = append(errs, fmt.Sprintf("driver.mode %q not recognised (supported: sim)", c.Driver.Mode))
	}

	// Sequencer validation
	if c.Sequencer.AbortPollWindow < 1 {
		errs = append(errs, "sequencer.abort_poll_window must be at least 1 second")
	}
	if c.Sequencer.AbortReadTimeout < 1 {
		errs = append(errs, "sequencer.abort_read_timeout must be at least 1 second")
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// API validation
	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetIdleTimeout returns the TCP server idle read timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.Server.IdleTimeout) * time.Second
}

// GetAbortPollWindow returns the drain-loop abort poll window as a Duration.
func (c *Config) GetAbortPollWindow() time.Duration {
	return time.Duration(c.Sequencer.AbortPollWindow) * time.Second
}

// GetAbortReadTimeout returns the bounded abort read timeout as a Duration.
func (c *Config) GetAbortReadTimeout() time.Duration {
	return time.Duration(c.Sequencer.AbortReadTimeout) * time.Second
}
