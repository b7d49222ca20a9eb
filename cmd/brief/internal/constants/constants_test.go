package constants

import (
	"os"
	"slices"
	"testing"
	"time"
)

func TestHeaderConstants(t *testing.T) {
	tests := []struct {
		name     string
		constant string
		expected string
	}{
		{"RequestID header", HeaderRequestID, "X-Request-ID"},
		{"Forwarded-For header", HeaderForwardedFor, "X-Forwarded-For"},
		{"User-Agent header", HeaderUserAgent, "User-Agent"},
		{"Origin header", HeaderOrigin, "Origin"},
		{"Content-Type header", HeaderContentType, "Content-Type"},
		{"JSON MIME type", MIMEApplicationJSON, "application/json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.constant != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, tt.constant)
			}
		})
	}
}

func TestPermissionConstants(t *testing.T) {
	if DirPermissions != os.FileMode(0755) {
		t.Errorf("Expected DirPermissions 0755, got %o", DirPermissions)
	}

	if FilePermissions != os.FileMode(0644) {
		t.Errorf("Expected FilePermissions 0644, got %o", FilePermissions)
	}
}

func TestTimeoutConstants(t *testing.T) {
	tests := []struct {
		name     string
		constant time.Duration
		expected time.Duration
	}{
		{"Shutdown timeout", ShutdownTimeout, 30 * time.Second},
		{"HTTP read timeout", HTTPReadTimeout, 15 * time.Second},
		{"HTTP write timeout", HTTPWriteTimeout, 15 * time.Second},
		{"HTTP idle timeout", HTTPIdleTimeout, 60 * time.Second},
		{"Health check timeout", HealthCheckTimeout, 5 * time.Second},
		{"Database connect timeout", DatabaseConnectTimeout, 30 * time.Second},
		{"Server selection timeout", ServerSelectionTimeout, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.constant != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, tt.constant)
			}
		})
	}
}

func TestSensitiveFields(t *testing.T) {
	for _, field := range []string{"password", "token", "secret", "authorization", "uri"} {
		if !slices.Contains(SensitiveFields, field) {
			t.Errorf("Expected SensitiveFields to contain %q", field)
		}
	}

	if RedactedPlaceholder != "***REDACTED***" {
		t.Errorf("Expected placeholder '***REDACTED***', got '%s'", RedactedPlaceholder)
	}
}

func TestContextKeys(t *testing.T) {
	if ContextKeyRequestID != "request_id" {
		t.Errorf("Expected 'request_id', got '%s'", ContextKeyRequestID)
	}
}
