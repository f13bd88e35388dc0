package sunshade

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/bft-labs/sunshade/internal/adapters/gpio"
	"github.com/bft-labs/sunshade/internal/adapters/host"
	httpAdapter "github.com/bft-labs/sunshade/internal/adapters/http"
	"github.com/bft-labs/sunshade/internal/adapters/ntp"
	"github.com/bft-labs/sunshade/internal/app"
	"github.com/bft-labs/sunshade/internal/cliconfig"
	"github.com/bft-labs/sunshade/internal/decision"
	"github.com/bft-labs/sunshade/internal/ports"
	"github.com/bft-labs/sunshade/internal/solar"
	"github.com/bft-labs/sunshade/pkg/log"
)

// Re-exported types for library users.
type (
	// Config is the controller configuration.
	Config = cliconfig.Config
	// Report is the result of one cycle.
	Report = app.Report
	// Phase is a step of one cycle.
	Phase = app.Phase
)

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return cliconfig.DefaultConfig()
}

// Controller owns the hardware for the life of the process and builds a
// fresh cycle from the current configuration.
type Controller struct {
	mu     sync.Mutex
	cfg    Config
	cycle  *app.Cycle
	opts   options
	logger log.Logger

	actuator ports.Actuator
	periph   *gpio.Peripherals
}

// New validates cfg, opens the actuator and builds the first cycle.
func New(cfg Config, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	c := &Controller{cfg: cfg, opts: o, logger: logger, actuator: o.actuator}
	if c.actuator == nil {
		if cfg.DryRun {
			c.actuator = gpio.DryRun{Logger: logger}
		} else {
			periph, err := gpio.Open(cfg.Pins(), logger)
			if err != nil {
				return nil, err
			}
			c.periph = periph
			c.actuator = periph.Actuator()
		}
	}

	cycle, err := c.build(cfg)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.cycle = cycle
	return c, nil
}

// Config returns the configuration of the next cycle.
func (c *Controller) Config() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// Next implements app.CycleSource. When reloading is enabled and the
// configuration changed, the new configuration is loaded first; a failed
// reload keeps the previous cycle.
func (c *Controller) Next() (app.CycleRunner, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.opts.loader == nil || c.opts.notifier == nil || !c.opts.notifier.Changed() {
		return c.cycle, nil
	}

	cfg, err := c.opts.loader.Load()
	if err == nil {
		err = c.checkFixed(cfg)
	}
	var cycle *app.Cycle
	if err == nil {
		cycle, err = c.build(cfg)
	}
	if err != nil {
		c.logger.Warn("config reload failed, keeping previous config", log.Err(err))
		return c.cycle, nil
	}

	c.cfg = cfg
	c.cycle = cycle
	c.logger.Info("config reloaded",
		log.String("endpoint", cfg.Endpoint),
		log.Duration("window", cfg.Window),
		log.Duration("idle_sleep", cfg.IdleSleep),
	)
	return c.cycle, nil
}

// checkFixed rejects changes to settings bound when the hardware was opened.
func (c *Controller) checkFixed(cfg Config) error {
	if cfg.Pins() != c.cfg.Pins() || cfg.DryRun != c.cfg.DryRun {
		return fmt.Errorf("pins and dry_run cannot change without a restart")
	}
	return nil
}

// Run runs cycles until ctx is done, or a single cycle in once mode.
func (c *Controller) Run(ctx context.Context) (Report, error) {
	suspender := c.opts.suspender
	if suspender == nil {
		suspender = host.Suspender{Logger: c.logger}
	}
	return app.NewRunner(c, suspender, c.logger, c.Config().Once).Run(ctx)
}

// Close releases the GPIO mapping.
func (c *Controller) Close() error {
	if c.periph != nil {
		return c.periph.Close()
	}
	return nil
}

func (c *Controller) build(cfg Config) (*app.Cycle, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	client := c.opts.client
	if client == nil {
		hc, err := httpAdapter.NewClient(httpAdapter.ClientConfig{
			Timeout: cfg.HTTPTimeout,
			CAFile:  cfg.CAFile,
		})
		if err != nil {
			return nil, err
		}
		client = hc
	}

	clock := c.opts.clock
	if clock == nil {
		if cfg.NTPServer != "" {
			clock = ntp.NewClock(cfg.NTPServer, cfg.MaxClockOffset, c.logger)
		} else {
			clock = ntp.SystemClock{}
		}
	}

	network := c.opts.network
	if network == nil {
		probe := ""
		if u, err := url.Parse(cfg.Endpoint); err == nil {
			probe = u.Hostname()
		}
		network = host.NewNetwork(probe, c.logger)
	}

	cycleCfg := app.CycleConfig{
		Endpoint: cfg.Endpoint,
		Policy:   decision.Policy{Window: cfg.Window, IdleSleep: cfg.IdleSleep},
		Pulse:    cfg.Pulse,
		Location: loc,
		Plausibility: solar.Plausibility{
			Latitude:  cfg.Latitude,
			Longitude: cfg.Longitude,
			Tolerance: cfg.PlausibilityTolerance,
		},
	}
	fetcher := httpAdapter.NewFetcher(client, c.logger, cfg.ChunkSize)
	return app.NewCycle(cycleCfg, network, fetcher, clock, c.actuator, c.logger, c.opts.observer), nil
}
