package logging

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/studybrief/brief/cmd/brief/internal/constants"
	"github.com/studybrief/brief/cmd/brief/internal/requestmeta"
)

// RequestLoggerConfig holds configuration for request logging middleware
type RequestLoggerConfig struct {
	Logger *Logger

	// SkipPaths are paths that should not be logged
	SkipPaths []string

	// LogHeaders logs request headers at debug level
	LogHeaders bool
}

// RequestLogger is middleware for logging HTTP requests.
// It must run inside requestmeta.Middleware so every line carries the
// request's base properties.
type RequestLogger struct {
	config    RequestLoggerConfig
	skipPaths map[string]bool
}

// NewRequestLogger creates a new request logging middleware
func NewRequestLogger(config RequestLoggerConfig) *RequestLogger {
	if config.Logger == nil {
		config.Logger = GetLogger()
	}

	skipPaths := make(map[string]bool)
	for _, path := range config.SkipPaths {
		skipPaths[path] = true
	}

	return &RequestLogger{
		config:    config,
		skipPaths: skipPaths,
	}
}

// Middleware logs one line per completed request.
func (rl *RequestLogger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		if rc, ok := requestmeta.FromContext(r.Context()); ok {
			start = rc.StartTime
		}

		base := rl.config.Logger
		zl := base.Zerolog()
		props := requestmeta.Extract(r)

		if base.config.Level == LevelDebug {
			event := zl.Debug().EmbedObject(props).Str("query", r.URL.RawQuery)
			if rl.config.LogHeaders {
				headers := make(map[string]string, len(r.Header))
				for key := range r.Header {
					if base.sensitiveFields[normalizeHeader(key)] {
						headers[key] = constants.RedactedPlaceholder
					} else {
						headers[key] = r.Header.Get(key)
					}
				}
				event = event.Interface("headers", headers)
			}
			event.Msg("Request started")
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		event := zl.Info()
		if status >= 500 {
			event = zl.Error()
		} else if status >= 400 {
			event = zl.Warn()
		}

		event.
			EmbedObject(props).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Int("bytes", ww.BytesWritten()).
			Msg("Request completed")
	})
}

// normalizeHeader maps header names onto the sensitive field spelling.
func normalizeHeader(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "-", "_")
}
