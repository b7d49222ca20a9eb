// Package server provides HTTP server setup and routing.
// Every route runs behind the correlation middleware so logs, metrics and
// error bodies of a single request share one request id.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/studybrief/brief/cmd/brief/internal/config"
	"github.com/studybrief/brief/cmd/brief/internal/constants"
	"github.com/studybrief/brief/cmd/brief/internal/database"
	apperrors "github.com/studybrief/brief/cmd/brief/internal/errors"
	"github.com/studybrief/brief/cmd/brief/internal/health"
	"github.com/studybrief/brief/cmd/brief/internal/logging"
	"github.com/studybrief/brief/cmd/brief/internal/metrics"
	"github.com/studybrief/brief/cmd/brief/internal/middleware"
	"github.com/studybrief/brief/cmd/brief/internal/requestmeta"
)

// Server represents the HTTP server
type Server struct {
	config     *config.AppConfig
	db         database.Driver
	logger     *logging.Logger
	router     chi.Router
	server     *http.Server
	health     *health.Service
	errHandler *apperrors.ErrorHandler
	version    string
}

// New creates a new server instance. db may be nil, in which case the
// readiness endpoint always answers 200.
func New(cfg *config.AppConfig, db database.Driver, logger *logging.Logger, version string) (*Server, error) {
	if logger == nil {
		logger = logging.GetLogger()
	}

	generator, err := requestmeta.GeneratorByName(cfg.RequestID.Generator)
	if err != nil {
		return nil, err
	}

	errHandler := apperrors.NewErrorHandler(apperrors.ErrorHandlerConfig{
		Logger:        logger,
		LogStackTrace: true,
	})

	srv := &Server{
		config:     cfg,
		db:         db,
		logger:     logger,
		router:     chi.NewRouter(),
		errHandler: errHandler,
		version:    version,
	}

	var checker health.DatabaseChecker
	if db != nil {
		checker = db
	}
	srv.health = health.NewService(health.Config{
		Timeout: constants.HealthCheckTimeout,
		Version: version,
		Errors:  errHandler,
	}, checker)

	correlator := requestmeta.New(requestmeta.Options{
		Header:    cfg.RequestID.Header,
		Generator: generator,
		MaxLength: cfg.RequestID.MaxLength,
	})

	srv.setupMiddleware(correlator)
	srv.setupRoutes()

	srv.server = &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      srv.router,
		ReadTimeout:  constants.HTTPReadTimeout,
		WriteTimeout: constants.HTTPWriteTimeout,
		IdleTimeout:  constants.HTTPIdleTimeout,
	}

	return srv, nil
}

// setupMiddleware installs the middleware chain. The correlator runs first so
// that every later layer sees the request id. Recovery sits inside the request
// logger and metrics so a panicking request is still logged and counted as a 500.
func (s *Server) setupMiddleware(correlator *requestmeta.Correlator) {
	cors := middleware.NewCORSMiddleware(middleware.CORSConfig{
		Enabled:          s.config.CORS.Enabled,
		AllowedOrigins:   s.config.CORS.AllowedOrigins,
		AllowedMethods:   s.config.CORS.AllowedMethods,
		AllowedHeaders:   s.config.CORS.AllowedHeaders,
		ExposedHeaders:   s.config.CORS.ExposedHeaders,
		AllowCredentials: s.config.CORS.AllowCredentials,
		MaxAge:           s.config.CORS.MaxAge,
	})

	var skip []string
	if s.config.Metrics.Enabled {
		skip = append(skip, s.config.Metrics.Path)
	}
	requestLogger := logging.NewRequestLogger(logging.RequestLoggerConfig{
		Logger:     s.logger,
		SkipPaths:  skip,
		LogHeaders: true,
	})

	s.router.Use(correlator.Middleware)
	s.router.Use(requestLogger.Middleware)
	s.router.Use(metrics.Middleware)
	s.router.Use(s.errHandler.RecoveryMiddleware)
	s.router.Use(cors.Handle)
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.Get("/", s.rootHandler)
	s.router.Get("/health", s.health.LivenessHandler)
	s.router.Get("/health/ready", s.health.ReadinessHandler)

	if s.config.Metrics.Enabled {
		s.router.Method(http.MethodGet, s.config.Metrics.Path, metrics.Handler())
	}

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.errHandler.WriteError(w, r, apperrors.NewNotFoundError("Endpoint"))
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.errHandler.WriteError(w, r, apperrors.NewMethodNotAllowedError(r.Method))
	})
}

func (s *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(constants.HeaderContentType, constants.MIMETextPlain)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(config.RootMessage))
}

// Handler returns the fully wrapped router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start starts the HTTP server and blocks until it stops. A server closed
// through Shutdown returns nil.
func (s *Server) Start() error {
	s.logger.WithFields(map[string]any{
		"address": s.server.Addr,
		"version": s.version,
	}).Info("Starting server")

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if err := s.server.Shutdown(ctx); err != nil {
		_ = s.server.Close()
		return err
	}
	return nil
}
