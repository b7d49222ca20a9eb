// Package config provides configuration management for the brief service.
// Values come from centralized defaults, an optional YAML file, a .env file
// and environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/studybrief/brief/cmd/brief/internal/constants"
)

const (
	// VersionMajor is the major version number
	VersionMajor = 1
	// VersionMinor is the minor version number
	VersionMinor = 4
	// ServiceName is used in logs, metrics and health responses.
	ServiceName = "brief"
	// RootMessage is the plain text response for the root endpoint.
	RootMessage = "Brief API is running."
	// EnvPrefix is prepended to every environment override (BRIEF_SERVER_PORT, ...).
	EnvPrefix = "BRIEF"
	// EnvDatabaseUser and EnvDatabasePassword keep the credential variable
	// names the deployment already provides.
	EnvDatabaseUser     = "DB_USERNAME"
	EnvDatabasePassword = "DB_PASSWORD"
)

// Supported database connection types.
const (
	ConnectionMongoDB  = "mongodb"
	ConnectionSQLite   = "sqlite"
	ConnectionPostgres = "postgres"
	ConnectionMySQL    = "mysql"
)

// Version returns the version string in format {major}.{minor}
func Version() string {
	return fmt.Sprintf("%d.%d", VersionMajor, VersionMinor)
}

// Defaults contains all default configuration values
// centralized in one place to avoid hardcoded literals
var Defaults = struct {
	Server struct {
		Port            int
		Host            string
		ShutdownTimeout int
	}
	Database struct {
		Connection             string
		Host                   string
		Database               string
		Options                string
		ConnectTimeout         int
		ServerSelectionTimeout int
		RetryMaxTries          int
		RetryInitialInterval   int
	}
	Logging struct {
		Level      string
		Format     string
		Path       string
		MaxSizeMB  int
		MaxBackups int
		MaxAgeDays int
		Compress   bool
	}
	RequestID struct {
		Header    string
		Generator string
		MaxLength int
	}
	CORS struct {
		Enabled          bool
		AllowedOrigins   []string
		AllowedMethods   []string
		AllowedHeaders   []string
		ExposedHeaders   []string
		AllowCredentials bool
		MaxAge           int
	}
	Metrics struct {
		Enabled bool
		Path    string
	}
	ConfigPath string
}{
	Server: struct {
		Port            int
		Host            string
		ShutdownTimeout int
	}{
		Port:            8080,
		Host:            "0.0.0.0",
		ShutdownTimeout: int(constants.ShutdownTimeout / time.Second),
	},
	Database: struct {
		Connection             string
		Host                   string
		Database               string
		Options                string
		ConnectTimeout         int
		ServerSelectionTimeout int
		RetryMaxTries          int
		RetryInitialInterval   int
	}{
		Connection:             ConnectionMongoDB,
		Host:                   "brief-cluster.mongodb.net",
		Database:               "Brief",
		Options:                "retryWrites=true&w=majority&appName=Brief",
		ConnectTimeout:         int(constants.DatabaseConnectTimeout / time.Second),
		ServerSelectionTimeout: int(constants.ServerSelectionTimeout / time.Second),
		RetryMaxTries:          1, // fail fast: one attempt, no retry
		RetryInitialInterval:   int(constants.RetryInitialInterval / time.Second),
	},
	Logging: struct {
		Level      string
		Format     string
		Path       string
		MaxSizeMB  int
		MaxBackups int
		MaxAgeDays int
		Compress   bool
	}{
		Level:      "info",
		Format:     "console",
		Path:       constants.DefaultLogPath,
		MaxSizeMB:  50,
		MaxBackups: 5,
		MaxAgeDays: 30,
		Compress:   true,
	},
	RequestID: struct {
		Header    string
		Generator string
		MaxLength int
	}{
		Header:    constants.HeaderRequestID,
		Generator: "uuid",
		MaxLength: 128,
	},
	CORS: struct {
		Enabled          bool
		AllowedOrigins   []string
		AllowedMethods   []string
		AllowedHeaders   []string
		ExposedHeaders   []string
		AllowCredentials bool
		MaxAge           int
	}{
		Enabled:          false,
		AllowedOrigins:   []string{},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", constants.HeaderRequestID},
		ExposedHeaders:   []string{constants.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           3600,
	},
	Metrics: struct {
		Enabled bool
		Path    string
	}{
		Enabled: true,
		Path:    constants.MetricsPath,
	},
	ConfigPath: constants.DefaultConfigPath,
}

// AppConfig holds the application configuration.
// It is designed to be immutable after initialization.
type AppConfig struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	RequestID RequestIDConfig `mapstructure:"request_id"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port            int    `mapstructure:"port"`
	Host            string `mapstructure:"host"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // in seconds
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Connection             string      `mapstructure:"connection"`               // mongodb, sqlite, postgres, mysql
	User                   string      `mapstructure:"user"`                     // DB_USERNAME
	Password               string      `mapstructure:"password"`                 // DB_PASSWORD
	Host                   string      `mapstructure:"host"`                     // cluster host (mongodb+srv) or host[:port]
	Database               string      `mapstructure:"database"`                 // database name, or file path for sqlite
	Options                string      `mapstructure:"options"`                  // URI query string
	ConnectTimeout         int         `mapstructure:"connect_timeout"`          // in seconds
	ServerSelectionTimeout int         `mapstructure:"server_selection_timeout"` // in seconds
	Retry                  RetryConfig `mapstructure:"retry"`
}

// RetryConfig controls startup retries. MaxTries of 1 means fail fast.
type RetryConfig struct {
	MaxTries        int `mapstructure:"max_tries"`
	InitialInterval int `mapstructure:"initial_interval"` // in seconds
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, console, simple
	Path       string `mapstructure:"path"`   // log directory path, empty for stdout only
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// RequestIDConfig controls how correlation ids are accepted and generated.
type RequestIDConfig struct {
	Header    string `mapstructure:"header"`
	Generator string `mapstructure:"generator"`  // uuid or ulid
	MaxLength int    `mapstructure:"max_length"` // inbound ids longer than this are replaced
}

// CORSConfig holds CORS (Cross-Origin Resource Sharing) configuration.
type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"` // preflight cache duration in seconds
}

// MetricsConfig holds Prometheus endpoint configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// ConnectTimeoutDuration returns the bootstrap deadline.
func (d DatabaseConfig) ConnectTimeoutDuration() time.Duration {
	return time.Duration(d.ConnectTimeout) * time.Second
}

// ServerSelectionTimeoutDuration returns the driver's server selection timeout.
func (d DatabaseConfig) ServerSelectionTimeoutDuration() time.Duration {
	return time.Duration(d.ServerSelectionTimeout) * time.Second
}

// InitialIntervalDuration returns the first retry wait.
func (r RetryConfig) InitialIntervalDuration() time.Duration {
	return time.Duration(r.InitialInterval) * time.Second
}

// ShutdownTimeoutDuration returns the graceful shutdown deadline.
func (s ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(s.ShutdownTimeout) * time.Second
}

// Address returns host:port for the HTTP listener.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

var globalConfig *AppConfig

// Load initializes and loads the application configuration.
// A .env file in the working directory is loaded first (if present), then the
// YAML file, then BRIEF_* and DB_* environment variables.
func Load(configPath string) (*AppConfig, error) {
	// Missing .env is the normal case outside local development
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(Defaults.ConfigPath)
	}

	// Read config file (optional - continue if the default file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if configPath != "" {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				return nil, fmt.Errorf("config file not found: %s", configPath)
			}
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if !isNotFound(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Credentials keep their historical, unprefixed names
	if err := v.BindEnv("database.user", EnvDatabaseUser); err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", EnvDatabaseUser, err)
	}
	if err := v.BindEnv("database.password", EnvDatabasePassword); err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", EnvDatabasePassword, err)
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Store in global variable for thread-safe read-only access
	globalConfig = &cfg

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", Defaults.Server.Port)
	v.SetDefault("server.host", Defaults.Server.Host)
	v.SetDefault("server.shutdown_timeout", Defaults.Server.ShutdownTimeout)
	v.SetDefault("database.connection", Defaults.Database.Connection)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.host", Defaults.Database.Host)
	v.SetDefault("database.database", Defaults.Database.Database)
	v.SetDefault("database.options", Defaults.Database.Options)
	v.SetDefault("database.connect_timeout", Defaults.Database.ConnectTimeout)
	v.SetDefault("database.server_selection_timeout", Defaults.Database.ServerSelectionTimeout)
	v.SetDefault("database.retry.max_tries", Defaults.Database.RetryMaxTries)
	v.SetDefault("database.retry.initial_interval", Defaults.Database.RetryInitialInterval)
	v.SetDefault("logging.level", Defaults.Logging.Level)
	v.SetDefault("logging.format", Defaults.Logging.Format)
	v.SetDefault("logging.path", Defaults.Logging.Path)
	v.SetDefault("logging.max_size_mb", Defaults.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", Defaults.Logging.MaxBackups)
	v.SetDefault("logging.max_age_days", Defaults.Logging.MaxAgeDays)
	v.SetDefault("logging.compress", Defaults.Logging.Compress)
	v.SetDefault("request_id.header", Defaults.RequestID.Header)
	v.SetDefault("request_id.generator", Defaults.RequestID.Generator)
	v.SetDefault("request_id.max_length", Defaults.RequestID.MaxLength)
	v.SetDefault("cors.enabled", Defaults.CORS.Enabled)
	v.SetDefault("cors.allowed_origins", Defaults.CORS.AllowedOrigins)
	v.SetDefault("cors.allowed_methods", Defaults.CORS.AllowedMethods)
	v.SetDefault("cors.allowed_headers", Defaults.CORS.AllowedHeaders)
	v.SetDefault("cors.exposed_headers", Defaults.CORS.ExposedHeaders)
	v.SetDefault("cors.allow_credentials", Defaults.CORS.AllowCredentials)
	v.SetDefault("cors.max_age", Defaults.CORS.MaxAge)
	v.SetDefault("metrics.enabled", Defaults.Metrics.Enabled)
	v.SetDefault("metrics.path", Defaults.Metrics.Path)
}

// isNotFound reports whether a ReadInConfig error means the file is absent.
// With SetConfigFile viper surfaces the raw fs error instead of
// ConfigFileNotFoundError.
func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

// validate checks required fields and applies defaults for zero values.
func validate(cfg *AppConfig) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = Defaults.Server.ShutdownTimeout
	}

	switch cfg.Database.Connection {
	case "":
		cfg.Database.Connection = Defaults.Database.Connection
	case ConnectionMongoDB, ConnectionSQLite, ConnectionPostgres, ConnectionMySQL:
	default:
		return fmt.Errorf("unsupported database connection %q (use mongodb, sqlite, postgres or mysql)", cfg.Database.Connection)
	}
	if cfg.Database.Database == "" {
		cfg.Database.Database = Defaults.Database.Database
	}
	if cfg.Database.ConnectTimeout <= 0 {
		cfg.Database.ConnectTimeout = Defaults.Database.ConnectTimeout
	}
	if cfg.Database.ServerSelectionTimeout <= 0 {
		cfg.Database.ServerSelectionTimeout = Defaults.Database.ServerSelectionTimeout
	}
	if cfg.Database.Retry.MaxTries <= 0 {
		cfg.Database.Retry.MaxTries = Defaults.Database.RetryMaxTries
	}
	if cfg.Database.Retry.InitialInterval <= 0 {
		cfg.Database.Retry.InitialInterval = Defaults.Database.RetryInitialInterval
	}

	switch cfg.Logging.Format {
	case "":
		cfg.Logging.Format = Defaults.Logging.Format
	case "json", "console", "simple":
	default:
		return fmt.Errorf("invalid logging format %q (use json, console or simple)", cfg.Logging.Format)
	}
	switch cfg.Logging.Level {
	case "":
		cfg.Logging.Level = Defaults.Logging.Level
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level %q", cfg.Logging.Level)
	}

	if cfg.RequestID.Header == "" {
		cfg.RequestID.Header = Defaults.RequestID.Header
	}
	switch cfg.RequestID.Generator {
	case "":
		cfg.RequestID.Generator = Defaults.RequestID.Generator
	case "uuid", "ulid":
	default:
		return fmt.Errorf("invalid request_id.generator %q (use uuid or ulid)", cfg.RequestID.Generator)
	}
	if cfg.RequestID.MaxLength <= 0 {
		cfg.RequestID.MaxLength = Defaults.RequestID.MaxLength
	}

	if err := validateCORS(&cfg.CORS); err != nil {
		return fmt.Errorf("CORS configuration validation failed: %w", err)
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = Defaults.Metrics.Path
	}
	if !strings.HasPrefix(cfg.Metrics.Path, "/") {
		cfg.Metrics.Path = "/" + cfg.Metrics.Path
	}

	return nil
}

// validateCORS rejects origin lists that mix the wildcard with specific origins.
func validateCORS(cors *CORSConfig) error {
	hasWildcard := false
	hasSpecific := false
	for _, origin := range cors.AllowedOrigins {
		if origin == "*" {
			hasWildcard = true
		} else {
			hasSpecific = true
		}
	}
	if hasWildcard && hasSpecific {
		return fmt.Errorf("cors.allowed_origins: cannot mix wildcard '*' with specific origins")
	}
	if hasWildcard && cors.AllowCredentials {
		return fmt.Errorf("cors.allow_credentials cannot be combined with wildcard origin '*'")
	}
	return nil
}

// Get returns the global configuration instance.
// This is thread-safe as the config is immutable after Load().
func Get() *AppConfig {
	if globalConfig == nil {
		panic("configuration not loaded - call config.Load() first")
	}
	return globalConfig
}
