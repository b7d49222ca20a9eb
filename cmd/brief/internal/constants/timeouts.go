package constants

import "time"

// Timeout and duration constants used throughout the application.
// These constants define time limits for various operations to prevent
// indefinite blocking and ensure responsive behavior.
const (
	// ShutdownTimeout is the maximum time allowed for graceful shutdown.
	// Used in: shutdown/shutdown.go
	// Purpose: Allows in-flight requests to complete before forcing shutdown
	// Default: 30 seconds
	ShutdownTimeout = 30 * time.Second

	// HTTPReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Used in: server/server.go
	// Default: 15 seconds
	HTTPReadTimeout = 15 * time.Second

	// HTTPWriteTimeout is the maximum duration before timing out writes of the response.
	// Used in: server/server.go
	// Default: 15 seconds
	HTTPWriteTimeout = 15 * time.Second

	// HTTPIdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Used in: server/server.go
	// Default: 60 seconds
	HTTPIdleTimeout = 60 * time.Second

	// HealthCheckTimeout is the maximum time allowed for a single health check operation.
	// Used in: health/health.go
	// Default: 5 seconds
	HealthCheckTimeout = 5 * time.Second

	// DatabaseConnectTimeout bounds the whole bootstrap attempt (connect + ping).
	// Used in: database/bootstrap.go
	// Default: 30 seconds
	DatabaseConnectTimeout = 30 * time.Second

	// ServerSelectionTimeout is how long the document driver waits for a
	// reachable server before failing an operation.
	// Used in: database/mongo.go
	// Default: 10 seconds
	ServerSelectionTimeout = 10 * time.Second

	// RetryInitialInterval is the first wait between bootstrap attempts when
	// retries are enabled.
	// Used in: database/bootstrap.go
	// Default: 1 second
	RetryInitialInterval = time.Second
)
