package ports

import (
	"context"
	"time"

	"github.com/bft-labs/sunshade/internal/domain"
)

// Network brings the device's network link up and down around a fetch.
type Network interface {
	// Acquire blocks until the link is usable.
	Acquire(ctx context.Context) error
	// Release tears the link down. It is safe to call after a failed Acquire.
	Release() error
}

// Clock provides the current wall-clock time.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// Sync brings the clock in line with a reference source.
	Sync(ctx context.Context) error
}

// Actuator drives the shade motor.
type Actuator interface {
	// Drive energizes the output for dir, holds it for d, then de-energizes it.
	// The hold is not interruptible.
	Drive(dir domain.Direction, d time.Duration) error
}

// Suspender puts the device to sleep.
type Suspender interface {
	// Suspend sleeps for d or until ctx is done.
	Suspend(ctx context.Context, d time.Duration) error
}
