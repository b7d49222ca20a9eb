// Package health serves liveness and readiness endpoints.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/studybrief/brief/cmd/brief/internal/constants"
	"github.com/studybrief/brief/cmd/brief/internal/database"
	apperrors "github.com/studybrief/brief/cmd/brief/internal/errors"
	"github.com/studybrief/brief/cmd/brief/internal/requestmeta"
)

// Status represents the health status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// CheckResult represents the result of a health check
type CheckResult struct {
	Status  Status        `json:"status"`
	Message string        `json:"message,omitempty"`
	Time    time.Time     `json:"time"`
	Latency time.Duration `json:"latency,omitempty"`
}

// HealthResponse is the response for /health endpoint
type HealthResponse struct {
	Status    Status    `json:"status"`
	Database  string    `json:"database,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

// ReadinessResponse is the response for a ready /health/ready
type ReadinessResponse struct {
	Status    Status                 `json:"status"`
	Checks    map[string]CheckResult `json:"checks"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`
}

// DatabaseChecker is the part of database.Driver the health service needs.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
	Dialect() database.DialectType
	DatabaseName() string
}

// Config holds configuration for the health checker
type Config struct {
	// Timeout is the maximum time for the readiness ping
	Timeout time.Duration

	// Version is the application version
	Version string

	// Errors renders the 503 readiness body. Defaults to a handler on the
	// global logger.
	Errors *apperrors.ErrorHandler
}

// DefaultConfig returns the default health configuration
func DefaultConfig() Config {
	return Config{
		Timeout: constants.HealthCheckTimeout,
	}
}

// Service provides health check functionality
type Service struct {
	config Config
	db     DatabaseChecker
}

// NewService creates a new health check service. db may be nil.
func NewService(config Config, db DatabaseChecker) *Service {
	if config.Timeout == 0 {
		config.Timeout = constants.HealthCheckTimeout
	}
	if config.Errors == nil {
		config.Errors = apperrors.NewErrorHandler(apperrors.ErrorHandlerConfig{})
	}

	return &Service{
		config: config,
		db:     db,
	}
}

// LivenessHandler handles GET /health. It answers 200 while the process
// serves requests and never touches the database.
func (s *Service) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    StatusHealthy,
		Timestamp: time.Now().UTC(),
		Version:   s.config.Version,
		RequestID: requestmeta.RequestID(r.Context()),
	}

	if s.db != nil {
		response.Database = s.db.DatabaseName()
	}

	s.writeJSON(w, http.StatusOK, response)
}

// ReadinessHandler handles GET /health/ready. It pings the database under
// the configured timeout. A failed ping answers 503 with the standard error
// body, the check results carried in its details.
func (s *Service) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.config.Timeout)
	defer cancel()

	checks := make(map[string]CheckResult)

	if s.db != nil {
		result, err := s.checkDatabase(ctx)
		checks["database"] = result
		if err != nil {
			apiErr := apperrors.NewDatabaseError(err).WithDetails(map[string]any{
				"status": StatusUnhealthy,
				"checks": checks,
			})
			s.config.Errors.WriteError(w, r, apiErr)
			return
		}
	}

	s.writeJSON(w, http.StatusOK, ReadinessResponse{
		Status:    StatusHealthy,
		Checks:    checks,
		Timestamp: time.Now().UTC(),
		RequestID: requestmeta.RequestID(r.Context()),
	})
}

func (s *Service) checkDatabase(ctx context.Context) (CheckResult, error) {
	start := time.Now()

	if err := s.db.Ping(ctx); err != nil {
		return CheckResult{
			Status:  StatusUnhealthy,
			Message: "Database " + s.db.DatabaseName() + " unreachable: " + err.Error(),
			Time:    start,
			Latency: time.Since(start),
		}, err
	}

	return CheckResult{
		Status:  StatusHealthy,
		Message: string(s.db.Dialect()) + " database " + s.db.DatabaseName() + " reachable",
		Time:    start,
		Latency: time.Since(start),
	}, nil
}

func (s *Service) writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set(constants.HeaderContentType, constants.MIMEApplicationJSON)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}
