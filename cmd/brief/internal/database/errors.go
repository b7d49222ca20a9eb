package database

import (
	"context"
	"errors"
	"fmt"
	"net"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotConnected is returned by Ping before Connect.
var ErrNotConnected = errors.New("database not connected")

// ErrorKind classifies bootstrap failures.
type ErrorKind int

const (
	// ConfigurationMissing means credentials or the connection string are absent.
	ConfigurationMissing ErrorKind = iota + 1
	// ConnectionFailure means the deployment could not be reached.
	ConnectionFailure
	// ProbeFailure means the deployment answered but rejected the probe.
	ProbeFailure
)

func (k ErrorKind) String() string {
	switch k {
	case ConfigurationMissing:
		return "configuration_missing"
	case ConnectionFailure:
		return "connection_failure"
	case ProbeFailure:
		return "probe_failure"
	default:
		return "unknown"
	}
}

// BootstrapError is returned by every failed bootstrap step.
type BootstrapError struct {
	Kind ErrorKind
	Err  error
}

func (e *BootstrapError) Error() string {
	return fmt.Sprintf("database bootstrap: %s: %v", e.Kind, e.Err)
}

func (e *BootstrapError) Unwrap() error {
	return e.Err
}

// Is matches any BootstrapError of the same kind, so callers can write
// errors.Is(err, &BootstrapError{Kind: ProbeFailure}).
func (e *BootstrapError) Is(target error) bool {
	t, ok := target.(*BootstrapError)
	return ok && t.Err == nil && t.Kind == e.Kind
}

// KindOf returns the kind of the first BootstrapError in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var be *BootstrapError
	if errors.As(err, &be) {
		return be.Kind
	}
	return 0
}

// classifyProbe tells a deployment that never answered from one that
// answered with an error.
func classifyProbe(err error) ErrorKind {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return ProbeFailure
	}

	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return ConnectionFailure
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return ConnectionFailure
	}

	return ProbeFailure
}
