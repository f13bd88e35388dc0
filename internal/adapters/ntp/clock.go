// Package ntp provides wall clocks for the cycle: one trusting the operating
// system and one corrected against an NTP server.
package ntp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/beevik/ntp"

	"github.com/bft-labs/sunshade/internal/domain"
	"github.com/bft-labs/sunshade/pkg/log"
)

// DefaultMaxOffset is the largest drift tolerated without correction.
const DefaultMaxOffset = 2 * time.Second

// defaultQueryTimeout applies when ctx carries no deadline.
const defaultQueryTimeout = 5 * time.Second

// SystemClock trusts the operating system clock.
type SystemClock struct{}

// Now returns time.Now.
func (SystemClock) Now() time.Time { return time.Now() }

// Sync does nothing.
func (SystemClock) Sync(context.Context) error { return nil }

type queryFunc func(host string, opt ntp.QueryOptions) (*ntp.Response, error)

// Clock corrects the system clock by the offset measured against an NTP
// server. Offsets within MaxOffset are ignored.
type Clock struct {
	server    string
	maxOffset time.Duration
	logger    log.Logger
	query     queryFunc
	now       func() time.Time

	mu     sync.RWMutex
	offset time.Duration
	synced bool
}

// NewClock creates a clock synchronized against server.
func NewClock(server string, maxOffset time.Duration, logger log.Logger) *Clock {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	if maxOffset <= 0 {
		maxOffset = DefaultMaxOffset
	}
	return &Clock{
		server:    server,
		maxOffset: maxOffset,
		logger:    logger,
		query:     ntp.QueryWithOptions,
		now:       time.Now,
	}
}

// Now returns the corrected time.
func (c *Clock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now().Add(c.offset)
}

// Synced reports whether the last Sync succeeded.
func (c *Clock) Synced() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.synced
}

// Sync queries the server once. A failed or invalid response leaves the
// clock unsynchronized and returns an error matching domain.ErrClockUnsynced.
func (c *Clock) Sync(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrClockUnsynced, err)
	}
	timeout := defaultQueryTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}

	resp, err := c.query(c.server, ntp.QueryOptions{Timeout: timeout})
	if err == nil {
		err = resp.Validate()
	}
	if err != nil {
		c.mu.Lock()
		c.synced = false
		c.mu.Unlock()
		return fmt.Errorf("%w: query %s: %w", domain.ErrClockUnsynced, c.server, err)
	}

	offset := resp.ClockOffset
	applied := time.Duration(0)
	if offset > c.maxOffset || offset < -c.maxOffset {
		applied = offset
		c.logger.Warn("system clock drift corrected",
			log.String("server", c.server),
			log.Duration("offset", offset),
		)
	}

	c.mu.Lock()
	c.offset = applied
	c.synced = true
	c.mu.Unlock()

	c.logger.Debug("clock synchronized",
		log.String("server", c.server),
		log.Duration("offset", offset),
		log.Duration("rtt", resp.RTT),
	)
	return nil
}
