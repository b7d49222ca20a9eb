// Package shutdown runs named cleanup functions when the process is asked
// to stop.
package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/studybrief/brief/cmd/brief/internal/constants"
	"github.com/studybrief/brief/cmd/brief/internal/logging"
)

// ShutdownFunc is a function that will be called during shutdown
type ShutdownFunc func(ctx context.Context) error

// Config holds configuration for the shutdown handler
type Config struct {
	// Timeout bounds the whole shutdown sequence
	Timeout time.Duration

	// Signals is the list of OS signals to listen for
	Signals []os.Signal

	// OnShutdownStart is called when shutdown begins
	OnShutdownStart func()

	// OnShutdownComplete is called when shutdown completes
	OnShutdownComplete func(err error)

	// Logger defaults to the global logger
	Logger *logging.Logger
}

// DefaultConfig returns the default shutdown configuration
func DefaultConfig() Config {
	return Config{
		Timeout: constants.ShutdownTimeout,
		Signals: []os.Signal{os.Interrupt, syscall.SIGTERM},
	}
}

// Handler manages graceful shutdown of services
type Handler struct {
	config Config

	mu    sync.Mutex
	funcs []namedShutdownFunc

	trigger     chan struct{}
	triggerOnce sync.Once
	runOnce     sync.Once
	done        chan struct{}
	err         error
}

type namedShutdownFunc struct {
	name string
	fn   ShutdownFunc
}

// NewHandler creates a new shutdown handler
func NewHandler(config Config) *Handler {
	defaults := DefaultConfig()
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}
	if config.Signals == nil {
		config.Signals = defaults.Signals
	}
	if config.Logger == nil {
		config.Logger = logging.GetLogger()
	}

	return &Handler{
		config:  config,
		trigger: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Register adds a shutdown function. Functions run in LIFO order, so
// resources opened first are released last.
func (h *Handler) Register(name string, fn ShutdownFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.funcs = append(h.funcs, namedShutdownFunc{name: name, fn: fn})
}

// HTTPServer is an interface for HTTP servers that support graceful shutdown
type HTTPServer interface {
	Shutdown(ctx context.Context) error
}

// RegisterServer registers an HTTP server for shutdown
func (h *Handler) RegisterServer(name string, server HTTPServer) {
	h.Register(name, server.Shutdown)
}

// Listen blocks until a signal arrives, Trigger is called or ctx is done,
// then runs the shutdown sequence and returns its error.
// It is meant to be one member of an errgroup.
func (h *Handler) Listen(ctx context.Context) error {
	sigCtx, stop := signal.NotifyContext(ctx, h.config.Signals...)
	defer stop()

	select {
	case <-sigCtx.Done():
		if ctx.Err() == nil {
			h.config.Logger.Info("Shutdown signal received")
		}
	case <-h.trigger:
		h.config.Logger.Info("Shutdown requested")
	}

	return h.Shutdown()
}

// Trigger initiates shutdown programmatically. Safe to call more than once.
func (h *Handler) Trigger() {
	h.triggerOnce.Do(func() { close(h.trigger) })
}

// Shutdown runs the registered functions once and returns the first error.
// Later calls wait for the first run and return the same error.
func (h *Handler) Shutdown() error {
	h.runOnce.Do(func() {
		h.err = h.performShutdown()
		close(h.done)
	})
	<-h.done
	return h.err
}

// Done is closed once shutdown has completed.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}

func (h *Handler) performShutdown() error {
	if h.config.OnShutdownStart != nil {
		h.config.OnShutdownStart()
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.mu.Lock()
	funcs := make([]namedShutdownFunc, len(h.funcs))
	copy(funcs, h.funcs)
	h.mu.Unlock()

	var shutdownErr error
	for i := len(funcs) - 1; i >= 0; i-- {
		f := funcs[i]
		logger := h.config.Logger.WithField("component", f.name)

		start := time.Now()
		if err := f.fn(ctx); err != nil {
			logger.ErrorWithErr("Shutdown failed", err)
			if shutdownErr == nil {
				shutdownErr = err
			}
			continue
		}
		logger.WithField("took", time.Since(start).String()).Info("Shut down")
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		h.config.Logger.Warn("Shutdown timeout exceeded")
		if shutdownErr == nil {
			shutdownErr = ctx.Err()
		}
	}

	if h.config.OnShutdownComplete != nil {
		h.config.OnShutdownComplete(shutdownErr)
	}

	h.config.Logger.Info("Shutdown complete")
	return shutdownErr
}
