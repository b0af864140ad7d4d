// Lampseq - calibration lamp sequencer
//
// This is the main entry point for the lamp sequencer service. It fronts
// a bank of power-switched calibration lamps with a small TCP command
// protocol: clients prepare a timed schedule, fire it, and watch each
// lamp switch on and off in real time over the same connection.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lampctl/lampseq/migrations"

	"github.com/lampctl/lampseq/internal/api"
	"github.com/lampctl/lampseq/internal/infrastructure/config"
	"github.com/lampctl/lampseq/internal/infrastructure/database"
	"github.com/lampctl/lampseq/internal/infrastructure/influxdb"
	"github.com/lampctl/lampseq/internal/infrastructure/logging"
	"github.com/lampctl/lampseq/internal/infrastructure/mqtt"
	"github.com/lampctl/lampseq/internal/outlet"
	"github.com/lampctl/lampseq/internal/schedule"
	"github.com/lampctl/lampseq/internal/sequencer"
	"github.com/lampctl/lampseq/internal/server"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting lampseq",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
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
	db, err := database.Open(ctx, database.Config{
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

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Build the outlet map from configuration
	outlets, err := outlet.NewMap(outletsFromConfig(cfg.Outlets))
	if err != nil {
		return fmt.Errorf("building outlet map: %w", err)
	}
	log.Info("outlet map initialised", "lamps", outlets.Len())

	// Select the relay driver
	driver, err := buildDriver(cfg.Driver)
	if err != nil {
		return err
	}
	log.Info("relay driver initialised", "mode", cfg.Driver.Mode)

	// Schedule store backed by the database
	store := schedule.NewSQLiteStore(db)

	// Sequencer core
	seq := sequencer.New(outlets, driver, store)
	seq.SetLogger(log.With("component", "sequencer"))
	seq.SetTiming(cfg.GetAbortPollWindow(), cfg.GetAbortReadTimeout())

	// TCP command server
	srv := server.New(cfg.Server, outlets, driver, store, seq, log)

	// Connect to MQTT broker (optional)
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

		publisher := mqtt.NewStatePublisher(mqttClient, log)
		seq.SetPublisher(publisher)
		srv.SetPublisher(publisher)
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
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

		seq.SetRecorder(influxClient)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Start the read-only HTTP monitor (optional)
	if cfg.API.Enabled {
		monitor, apiErr := api.New(api.Deps{
			Config:    cfg.API,
			Logger:    log,
			Outlets:   outlets,
			Driver:    driver,
			Store:     store,
			Sequencer: seq,
			Version:   version,
		})
		if apiErr != nil {
			return fmt.Errorf("creating monitor server: %w", apiErr)
		}
		if startErr := monitor.Start(ctx); startErr != nil {
			return fmt.Errorf("starting monitor server: %w", startErr)
		}
		defer func() {
			log.Info("stopping monitor server")
			if closeErr := monitor.Close(); closeErr != nil {
				log.Error("error closing monitor server", "error", closeErr)
			}
		}()
	} else {
		log.Info("HTTP monitor disabled")
	}

	// Verify infrastructure is healthy before opening the command port
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("health check failed: database: %w", err)
	}
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("health check failed: influxdb: %w", err)
		}
	}
	log.Info("all health checks passed")

	// Bind before announcing readiness so a port clash fails startup.
	if err := srv.Listen(); err != nil {
		return err
	}

	log.Info("initialisation complete, serving commands")

	// Serve blocks until ctx is cancelled.
	if err := srv.Serve(ctx); err != nil {
		return fmt.Errorf("command server: %w", err)
	}

	log.Info("lampseq stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses LAMPSEQ_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("LAMPSEQ_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// outletsFromConfig converts configured outlet entries to the domain type.
func outletsFromConfig(entries []config.OutletConfig) []outlet.Outlet {
	outlets := make([]outlet.Outlet, len(entries))
	for i, e := range entries {
		outlets[i] = outlet.Outlet{Name: e.Name, Index: e.Index}
	}
	return outlets
}

// buildDriver selects the relay driver implementation.
func buildDriver(cfg config.DriverConfig) (outlet.Driver, error) {
	switch cfg.Mode {
	case "", "sim":
		return outlet.NewSimDriver(), nil
	default:
		return nil, fmt.Errorf("unknown driver mode %q", cfg.Mode)
	}
}
