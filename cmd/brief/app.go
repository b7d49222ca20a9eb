package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/studybrief/brief/cmd/brief/internal/config"
	"github.com/studybrief/brief/cmd/brief/internal/constants"
	"github.com/studybrief/brief/cmd/brief/internal/database"
	"github.com/studybrief/brief/cmd/brief/internal/logging"
	"github.com/studybrief/brief/cmd/brief/internal/metrics"
	"github.com/studybrief/brief/cmd/brief/internal/preflight"
	"github.com/studybrief/brief/cmd/brief/internal/server"
	"github.com/studybrief/brief/cmd/brief/internal/shutdown"
)

// loggerConfig maps the logging section onto the logger. Console format
// additionally writes plain lines to the rotating file.
func loggerConfig(cfg *config.AppConfig) logging.LoggerConfig {
	lc := logging.LoggerConfig{
		Level:       logging.Level(cfg.Logging.Level),
		Format:      cfg.Logging.Format,
		ServiceName: config.ServiceName,
		Version:     config.Version(),
		Rotation: logging.RotationConfig{
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
			Compress:   cfg.Logging.Compress,
		},
	}

	if cfg.Logging.Path != "" {
		lc.FilePath = filepath.Join(cfg.Logging.Path, constants.LogFileName)
		lc.DualOutput = cfg.Logging.Format == "console"
	}

	return lc
}

// runPreflightChecks makes sure the log directory exists
func runPreflightChecks(cfg *config.AppConfig) error {
	results, err := preflight.ValidateAndCreate(preflight.LogChecks(cfg.Logging.Path))

	for _, result := range results {
		if result.Created {
			fmt.Printf("✓ Created: %s\n", result.Path)
		}
		if result.Error != nil {
			fmt.Fprintf(os.Stderr, "✗ Error with %s: %v\n", result.Path, result.Error)
		}
	}

	return err
}

// logConfigSummary logs the loaded configuration without credentials
func logConfigSummary(logger *logging.Logger, cfg *config.AppConfig) {
	logger.Info("=== Configuration Summary ===")
	logger.Infof("Server: %s", cfg.Server.Address())
	logger.Infof("Database Type: %s", cfg.Database.Connection)
	logger.Infof("Database: %s", cfg.Database.Database)
	if cfg.Database.User != "" {
		logger.Infof("Database User: %s", cfg.Database.User)
	}
	if cfg.Database.Host != "" && cfg.Database.Connection != config.ConnectionSQLite {
		logger.Infof("Database Host: %s", cfg.Database.Host)
	}
	logger.Infof("Database Retry: %d attempt(s)", cfg.Database.Retry.MaxTries)
	logger.Infof("Logging Path: %s", cfg.Logging.Path)
	logger.Infof("Request ID Header: %s", cfg.RequestID.Header)
	logger.Infof("Metrics Enabled: %v", cfg.Metrics.Enabled)
	logger.Info("============================")
}

// buildConnectionString creates a database connection string from DatabaseConfig
func buildConnectionString(db config.DatabaseConfig) (string, error) {
	switch db.Connection {
	case config.ConnectionMongoDB:
		return database.BuildMongoURI(db.User, db.Password, db.Host, db.Options)
	case config.ConnectionSQLite:
		return "sqlite://" + db.Database, nil
	case config.ConnectionPostgres:
		u := url.URL{Scheme: "postgres", Host: db.Host, Path: "/" + db.Database, RawQuery: db.Options}
		if db.User != "" {
			u.User = url.UserPassword(db.User, db.Password)
		}
		return u.String(), nil
	case config.ConnectionMySQL:
		dsn := fmt.Sprintf("tcp(%s)/%s", db.Host, db.Database)
		if db.User != "" {
			dsn = fmt.Sprintf("%s:%s@%s", db.User, db.Password, dsn)
		}
		if db.Options != "" {
			dsn += "?" + db.Options
		}
		return "mysql://" + dsn, nil
	default:
		return "", fmt.Errorf("unsupported database connection %q", db.Connection)
	}
}

// newDriver builds the driver for the configured connection. Every failure
// is a configuration problem.
func newDriver(db config.DatabaseConfig) (database.Driver, error) {
	connStr, err := buildConnectionString(db)
	if err != nil {
		return nil, asConfigurationMissing(err)
	}

	dbConfig := database.Config{
		ConnectionString:       connStr,
		ConnectTimeout:         db.ConnectTimeoutDuration(),
		ServerSelectionTimeout: db.ServerSelectionTimeoutDuration(),
	}
	if db.Connection == config.ConnectionMongoDB {
		dbConfig.DatabaseName = db.Database
	}

	driver, err := database.NewDriver(dbConfig)
	if err != nil {
		return nil, asConfigurationMissing(err)
	}
	return driver, nil
}

func asConfigurationMissing(err error) error {
	if database.KindOf(err) != 0 {
		return err
	}
	return &database.BootstrapError{Kind: database.ConfigurationMissing, Err: err}
}

// connectDatabase runs the startup bootstrap with the fail-fast policy.
// On failure one error line is logged and exit(1) is called; nil is returned
// only when exit does not terminate the process.
func connectDatabase(ctx context.Context, cfg *config.AppConfig, logger *logging.Logger, exit func(int)) database.Driver {
	driver, err := newDriver(cfg.Database)
	if err != nil {
		logger.ErrorWithErr("Database bootstrap failed", err)
		metrics.ObserveBootstrap(database.KindOf(err).String())
		exit(1)
		return nil
	}

	b := database.NewBootstrapper(database.BootstrapOptions{
		Logger:          logger,
		Exit:            exit,
		MaxTries:        uint(cfg.Database.Retry.MaxTries),
		InitialInterval: cfg.Database.Retry.InitialIntervalDuration(),
		OnResult:        metrics.ObserveBootstrap,
	})
	b.MustConnect(ctx, driver)

	if b.State() != database.Connected {
		return nil
	}
	return driver
}

// serve runs the HTTP server until ctx is done, a shutdown signal arrives or
// the listener fails. The database driver is closed after the server.
func serve(ctx context.Context, cfg *config.AppConfig, logger *logging.Logger, driver database.Driver) error {
	srv, err := server.New(cfg, driver, logger, config.Version())
	if err != nil {
		return err
	}

	handler := shutdown.NewHandler(shutdown.Config{
		Timeout: cfg.Server.ShutdownTimeoutDuration(),
		Logger:  logger,
	})
	if driver != nil {
		handler.Register("database", driver.Close)
	}
	handler.RegisterServer("http-server", srv)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := srv.Start()
		handler.Trigger()
		return err
	})
	g.Go(func() error {
		return handler.Listen(gctx)
	})

	return g.Wait()
}
