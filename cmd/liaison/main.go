// JOJO Liaison - Household Robot Command Broker
//
// This is the main entry point for the liaison service. The liaison
// sits between the household's web clients and the robot fleet: it
// authenticates users, validates and publishes robot commands over
// MQTT, and ingests robot status messages into the local registry.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jojo-robotics/liaison/migrations"

	"github.com/jojo-robotics/liaison/internal/api"
	"github.com/jojo-robotics/liaison/internal/audit"
	"github.com/jojo-robotics/liaison/internal/auth"
	"github.com/jojo-robotics/liaison/internal/infrastructure/config"
	"github.com/jojo-robotics/liaison/internal/infrastructure/database"
	"github.com/jojo-robotics/liaison/internal/infrastructure/influxdb"
	"github.com/jojo-robotics/liaison/internal/infrastructure/logging"
	"github.com/jojo-robotics/liaison/internal/infrastructure/mqtt"
	"github.com/jojo-robotics/liaison/internal/liaison"
	"github.com/jojo-robotics/liaison/internal/robot"
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

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting JOJO liaison",
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

	// User accounts and authentication
	userRepo := auth.NewUserRepository(db.DB)
	if _, seedErr := auth.SeedAdmin(ctx, userRepo, log.Logger); seedErr != nil {
		return fmt.Errorf("seeding admin account: %w", seedErr)
	}
	authSvc := auth.NewService(userRepo, cfg.Security.JWT.Secret,
		time.Duration(cfg.Security.JWT.AccessTokenTTL)*time.Minute)

	// Robot registry
	registry := robot.NewRegistry(robot.NewSQLiteRepository(db.DB))
	registry.SetLogger(log)
	if refreshErr := registry.RefreshCache(ctx); refreshErr != nil {
		return fmt.Errorf("loading robot registry: %w", refreshErr)
	}
	log.Info("robot registry initialised", "robots", registry.Count())

	auditRepo := audit.NewSQLiteRepository(db.DB)

	// Connect to MQTT broker. Connect does not wait for the broker:
	// the client session queues outbound traffic and reconnects with
	// backoff, so a broker outage never stops the liaison from starting.
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log)
	log.Info("MQTT session started",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	topics := mqttClient.Topics()
	qos := byte(cfg.MQTT.QoS)
	publisher := liaison.NewPublisher(mqttClient, topics, qos, log.Logger)
	liaisonSvc := liaison.NewService(registry, publisher, auditRepo, log.Logger)

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
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// API server, created before the ingest so the ingest can fan
	// state updates out to WebSocket clients.
	apiServer, err := api.New(api.Deps{
		Config:   cfg.API,
		Security: cfg.Security,
		Logger:   log,
		Auth:     authSvc,
		Liaison:  liaisonSvc,
		Audit:    auditRepo,
		Broker:   mqttClient,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	// Status ingest
	ingestOpts := []liaison.IngestOption{
		liaison.WithStateUpdateHook(apiServer.BroadcastState),
	}
	if influxClient != nil {
		ingestOpts = append(ingestOpts, liaison.WithTelemetry(influxClient))
	}
	ingest := liaison.NewIngest(topics, registry, qos, log.Logger, ingestOpts...)

	mqttClient.SetOnConnect(func() {
		log.Info("MQTT connected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// The wildcard subscription registers immediately and is established
	// by the session once the broker is reachable, so this succeeds even
	// during a broker outage.
	if startErr := ingest.Start(ctx, mqttClient); startErr != nil {
		return fmt.Errorf("starting status ingest: %w", startErr)
	}

	if startErr := apiServer.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)

	if err := healthCheck(ctx, db, mqttClient, influxClient, log); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT
	// 4. Database

	log.Info("JOJO liaison stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses JOJO_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("JOJO_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies the infrastructure connections.
//
// The database and InfluxDB must be reachable. The MQTT broker is
// only warned about: the liaison keeps serving reads and queueing
// commands while the broker is down, so an unreachable broker at
// startup is not fatal.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client, log *logging.Logger) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := mqttClient.HealthCheck(ctx); err != nil {
		log.Warn("MQTT broker not yet reachable, commands will queue", "error", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
