// Package host implements the device ports for a general-purpose Linux host,
// where the network link is managed by the operating system and suspend is a
// timed wait.
package host

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/bft-labs/sunshade/internal/domain"
	"github.com/bft-labs/sunshade/pkg/log"
)

// Network waits for the host's link to resolve a probe address. An empty
// ProbeHost makes Acquire a no-op.
type Network struct {
	ProbeHost string
	Logger    log.Logger

	lookup func(ctx context.Context, host string) ([]string, error)
}

// NewNetwork creates a host network that probes host on Acquire.
func NewNetwork(probeHost string, logger log.Logger) *Network {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Network{
		ProbeHost: probeHost,
		Logger:    logger,
		lookup:    net.DefaultResolver.LookupHost,
	}
}

// Acquire resolves ProbeHost to confirm the link is up.
func (n *Network) Acquire(ctx context.Context) error {
	if n.ProbeHost == "" {
		return nil
	}
	addrs, err := n.lookup(ctx, n.ProbeHost)
	if err != nil {
		return fmt.Errorf("%w: network probe %s: %w", domain.ErrTransport, n.ProbeHost, err)
	}
	n.Logger.Debug("network acquired",
		log.String("probe", n.ProbeHost),
		log.Int("addresses", len(addrs)),
	)
	return nil
}

// Release does nothing; the operating system owns the link.
func (n *Network) Release() error {
	return nil
}

// Suspender sleeps in-process until the duration elapses or ctx is done.
type Suspender struct {
	Logger log.Logger
}

// Suspend waits for d. It returns ctx.Err() when interrupted.
func (s Suspender) Suspend(ctx context.Context, d time.Duration) error {
	if s.Logger != nil {
		s.Logger.Info("suspending",
			log.Duration("duration", d),
			log.Time("wake_at", time.Now().Add(d)),
		)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
