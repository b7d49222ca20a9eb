package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/studybrief/brief/cmd/brief/internal/constants"
	"github.com/studybrief/brief/cmd/brief/internal/logging"
)

// State is the bootstrap lifecycle.
type State int

const (
	NotConnected State = iota
	ProbePending
	Connected
	Failed
)

func (s State) String() string {
	switch s {
	case NotConnected:
		return "not_connected"
	case ProbePending:
		return "probe_pending"
	case Connected:
		return "connected"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Bootstrap results reported to BootstrapOptions.OnResult.
const (
	ResultSuccess = "success"
)

// BootstrapOptions configures a Bootstrapper. Zero values select the defaults.
type BootstrapOptions struct {
	Logger *logging.Logger

	// Exit terminates the process from MustConnect (default os.Exit).
	Exit func(code int)

	// MaxTries bounds connection attempts. 0 and 1 both mean a single attempt.
	MaxTries uint

	// InitialInterval is the first backoff delay between attempts.
	InitialInterval time.Duration

	// OnResult is called once per Connect with ResultSuccess or the failure
	// kind's String().
	OnResult func(result string)
}

// Bootstrapper brings up the process-wide database connection once at startup.
type Bootstrapper struct {
	opts BootstrapOptions

	mu    sync.Mutex
	state State
}

// NewBootstrapper creates a Bootstrapper.
func NewBootstrapper(opts BootstrapOptions) *Bootstrapper {
	if opts.Logger == nil {
		opts.Logger = logging.GetLogger()
	}
	if opts.Exit == nil {
		opts.Exit = os.Exit
	}
	if opts.MaxTries == 0 {
		opts.MaxTries = 1
	}
	if opts.InitialInterval <= 0 {
		opts.InitialInterval = constants.RetryInitialInterval
	}
	return &Bootstrapper{opts: opts}
}

// State returns the current lifecycle state.
func (b *Bootstrapper) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Bootstrapper) setState(s State) {
	b.mu.Lock()
	b.state = s
	b.mu.Unlock()
}

// Connect opens driver, probes it with a ping and leaves it open for the
// application. On success exactly two info lines are logged. On failure the
// driver is closed and a *BootstrapError is returned; nothing is logged so
// the caller decides how to report it.
func (b *Bootstrapper) Connect(ctx context.Context, driver Driver) error {
	if driver == nil {
		err := &BootstrapError{Kind: ConfigurationMissing, Err: errors.New("no database driver configured")}
		b.finish(err)
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = b.opts.InitialInterval

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := b.attempt(ctx, driver)
		if err != nil && KindOf(err) == ConfigurationMissing {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(b.opts.MaxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			b.opts.Logger.WithFields(map[string]any{
				"error":    err.Error(),
				"retry_in": next.String(),
			}).Warn("Database bootstrap attempt failed")
		}),
	)

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Err
	}
	if err != nil && KindOf(err) == 0 {
		// the retry loop gave up on its own, e.g. ctx was cancelled while waiting
		err = &BootstrapError{Kind: ConnectionFailure, Err: err}
	}

	b.finish(err)
	return err
}

func (b *Bootstrapper) attempt(ctx context.Context, driver Driver) error {
	b.setState(NotConnected)

	if err := driver.Connect(ctx); err != nil {
		_ = driver.Close(ctx)
		if KindOf(err) != 0 {
			return err
		}
		return &BootstrapError{Kind: ConnectionFailure, Err: err}
	}

	b.setState(ProbePending)

	if err := driver.Ping(ctx); err != nil {
		_ = driver.Close(ctx)
		return &BootstrapError{
			Kind: classifyProbe(err),
			Err:  fmt.Errorf("ping database %s: %w", driver.DatabaseName(), err),
		}
	}
	b.opts.Logger.Infof("Pinged database %s: deployment reachable", driver.DatabaseName())

	b.opts.Logger.Infof("Connected to %s database %s", driver.Dialect(), driver.DatabaseName())
	return nil
}

func (b *Bootstrapper) finish(err error) {
	result := ResultSuccess
	if err != nil {
		b.setState(Failed)
		result = KindOf(err).String()
	} else {
		b.setState(Connected)
	}

	if b.opts.OnResult != nil {
		b.opts.OnResult(result)
	}
}

// MustConnect is Connect with the fail-fast policy: any failure is logged as
// one error line and the process exits with status 1.
func (b *Bootstrapper) MustConnect(ctx context.Context, driver Driver) {
	if err := b.Connect(ctx, driver); err != nil {
		b.opts.Logger.ErrorWithErr("Database bootstrap failed", err)
		b.opts.Exit(1)
	}
}
