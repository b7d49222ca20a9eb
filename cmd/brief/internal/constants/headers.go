// Package constants provides centralized constant definitions for the brief service.
// All hardcoded values that are reused across the codebase should be defined here
// to ensure consistency, maintainability, and ease of configuration.
package constants

// HTTP header names used throughout the application.
// These constants ensure consistent header naming across all components.
const (
	// HeaderRequestID is the HTTP header used for request tracking and correlation.
	// Used in: requestmeta/requestmeta.go, middleware/cors.go
	// Purpose: Propagated from the caller when present, echoed on every response
	HeaderRequestID = "X-Request-ID"

	// HeaderForwardedFor carries the originating client address when the
	// service sits behind a proxy or load balancer.
	// Used in: requestmeta/properties.go
	HeaderForwardedFor = "X-Forwarded-For"

	// HeaderUserAgent is the standard User-Agent header.
	// Used in: requestmeta/properties.go
	HeaderUserAgent = "User-Agent"

	// HeaderOrigin is the standard Origin header sent by browsers.
	// Used in: middleware/cors.go
	HeaderOrigin = "Origin"

	// HeaderContentType is the standard HTTP Content-Type header.
	// Used in: errors/errors.go, health/health.go, server/server.go
	HeaderContentType = "Content-Type"
)

// MIME types used in HTTP responses.
const (
	// MIMEApplicationJSON is the MIME type for JSON responses.
	MIMEApplicationJSON = "application/json"

	// MIMETextPlain is the MIME type for plain text responses.
	// Used for the root message
	MIMETextPlain = "text/plain; charset=utf-8"
)
