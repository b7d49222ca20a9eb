package requestmeta

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// IDGenerator produces a new, unique correlation id. Implementations must be
// safe for concurrent use.
type IDGenerator func() string

// NewUUID returns a random (version 4) UUID string.
func NewUUID() string {
	return uuid.NewString()
}

// NewULID returns a ULID built from the current time and crypto/rand entropy.
// ULIDs sort by creation time, which keeps correlated log lines in order.
func NewULID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// GeneratorByName maps a configuration value to a generator.
func GeneratorByName(name string) (IDGenerator, error) {
	switch name {
	case "", "uuid":
		return NewUUID, nil
	case "ulid":
		return NewULID, nil
	default:
		return nil, fmt.Errorf("unknown request id generator %q", name)
	}
}
