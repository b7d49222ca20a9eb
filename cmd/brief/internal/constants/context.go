package constants

// Field and key names shared by the request-scoped context and log output.
const (
	// ContextKeyRequestID is the log field name under which the correlation id is written.
	// Used in: logging/logger.go, requestmeta/properties.go, errors/errors.go
	ContextKeyRequestID = "request_id"
)
