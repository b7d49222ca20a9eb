package constants

// Default file and directory paths used by the application.
const (
	// DefaultConfigPath is where the YAML configuration is looked up when
	// --config is not given.
	// Used in: config/config.go
	DefaultConfigPath = "/etc/brief.yaml"

	// DefaultLogPath is the directory that receives main.log.
	// Used in: config/config.go, cmd/brief
	DefaultLogPath = "/var/log/brief"

	// LogFileName is the file name of the rotating application log.
	LogFileName = "main.log"

	// MetricsPath is the default path of the Prometheus scrape endpoint.
	// Used in: config/config.go, server/server.go
	MetricsPath = "/metrics"
)
