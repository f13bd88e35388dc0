package app

import (
	"context"
	"time"

	"github.com/bft-labs/sunshade/internal/decision"
	"github.com/bft-labs/sunshade/internal/domain"
	"github.com/bft-labs/sunshade/internal/ports"
	"github.com/bft-labs/sunshade/internal/solar"
	"github.com/bft-labs/sunshade/pkg/log"
)

// DefaultPulse is how long the actuator output is held.
const DefaultPulse = 15 * time.Second

// CycleConfig contains the constants of one duty cycle.
type CycleConfig struct {
	Endpoint     string
	Policy       decision.Policy
	Pulse        time.Duration
	Location     *time.Location
	Plausibility solar.Plausibility
}

// Cycle runs one wake cycle: fetch, decide, then actuate or request a
// suspend. A Cycle keeps no state between runs.
type Cycle struct {
	config   CycleConfig
	network  ports.Network
	fetcher  ports.Fetcher
	clock    ports.Clock
	actuator ports.Actuator
	logger   log.Logger
	observer PhaseObserver
}

// NewCycle creates a cycle with the given dependencies.
func NewCycle(
	config CycleConfig,
	network ports.Network,
	fetcher ports.Fetcher,
	clock ports.Clock,
	actuator ports.Actuator,
	logger log.Logger,
	observer PhaseObserver,
) *Cycle {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.Policy == (decision.Policy{}) {
		config.Policy = decision.DefaultPolicy()
	}
	if config.Pulse <= 0 {
		config.Pulse = DefaultPulse
	}
	return &Cycle{
		config:   config,
		network:  network,
		fetcher:  fetcher,
		clock:    clock,
		actuator: actuator,
		logger:   logger,
		observer: observer,
	}
}

// Report is the result of one cycle.
type Report struct {
	// Outcome is the decision. Failed cycles report Idle.
	Outcome decision.Outcome
	// Sleep is how long to suspend before the next cycle.
	Sleep time.Duration
	// Now is the instant the decision was made at. Zero if never reached.
	Now time.Time
	// Events are the resolved solar events. Zero if never reached.
	Events domain.Events
	// Phases lists the phases the cycle went through.
	Phases []Phase
	// Err is the first error of the cycle.
	Err error
}

// Failed reports whether the cycle ended in PhaseFailed.
func (r Report) Failed() bool {
	return len(r.Phases) > 0 && r.Phases[len(r.Phases)-1] == PhaseFailed
}

// Run executes the cycle. It never returns without a sleep duration: any
// error turns into an Idle outcome with the policy's idle sleep, and nothing
// is actuated.
func (c *Cycle) Run(ctx context.Context) Report {
	seq := NewSequencer(c.logger, c.observer)
	rep := c.run(ctx, seq)
	rep.Phases = seq.History()

	fields := []log.Field{
		log.String("action", rep.Outcome.Action.String()),
		log.Duration("sleep", rep.Sleep),
		log.String("phase", seq.Phase().String()),
	}
	if !rep.Now.IsZero() {
		fields = append(fields, log.Time("now", rep.Now))
	}
	if rep.Err != nil {
		fields = append(fields, log.Err(rep.Err))
		c.logger.Error("cycle failed", fields...)
	} else {
		c.logger.Info("cycle complete", fields...)
	}
	return rep
}

func (c *Cycle) run(ctx context.Context, seq *Sequencer) Report {
	idle := decision.IdleOutcome(c.config.Policy.IdleSleep)
	fail := func(rep Report, err error) Report {
		if terr := seq.TransitionTo(PhaseFailed); terr != nil {
			c.logger.Warn("phase transition rejected", log.Err(terr))
		}
		rep.Outcome = idle
		rep.Sleep = idle.Sleep
		rep.Err = err
		return rep
	}
	var rep Report

	// Network is held from here until the clock is synchronized.
	if err := c.network.Acquire(ctx); err != nil {
		c.release()
		return fail(rep, err)
	}
	if err := seq.TransitionTo(PhaseNetworkUp); err != nil {
		c.release()
		return fail(rep, err)
	}

	text, err := c.fetcher.Fetch(ctx, c.config.Endpoint)
	if err == nil {
		err = seq.TransitionTo(PhaseFetched)
	}
	if err != nil {
		c.release()
		return fail(rep, err)
	}

	err = c.clock.Sync(ctx)
	if err == nil {
		err = seq.TransitionTo(PhaseClockSynced)
	}
	if err != nil {
		c.release()
		return fail(rep, err)
	}

	c.release()
	if err := seq.TransitionTo(PhaseNetworkDown); err != nil {
		return fail(rep, err)
	}

	rep.Now = c.clock.Now().In(c.config.Location)
	payload, err := solar.Parse(text)
	if err != nil {
		return fail(rep, err)
	}
	if err := solar.CheckContext(payload, rep.Now); err != nil {
		return fail(rep, err)
	}
	events, err := solar.Resolve(payload, rep.Now)
	if err != nil {
		return fail(rep, err)
	}
	if err := c.config.Plausibility.Check(events); err != nil {
		return fail(rep, err)
	}
	rep.Events = events

	rep.Outcome = decision.DecideEvents(rep.Now, events, c.config.Policy)
	if err := seq.TransitionTo(PhaseDecided); err != nil {
		return fail(rep, err)
	}
	c.logger.Info("decided",
		log.String("action", rep.Outcome.Action.String()),
		log.Time("sunrise", events.Sunrise),
		log.Time("sunset", events.Sunset),
	)

	dir, ok := rep.Outcome.Action.Direction()
	if !ok {
		rep.Sleep = rep.Outcome.Sleep
		if err := seq.TransitionTo(PhaseSuspended); err != nil {
			return fail(rep, err)
		}
		return rep
	}

	if err := c.actuator.Drive(dir, c.config.Pulse); err != nil {
		return fail(rep, err)
	}
	// Sleep past the window that triggered this action.
	rep.Sleep = 2 * c.config.Policy.Window
	if err := seq.TransitionTo(PhaseActuated); err != nil {
		return fail(rep, err)
	}
	return rep
}

func (c *Cycle) release() {
	if err := c.network.Release(); err != nil {
		c.logger.Warn("network release failed", log.Err(err))
	}
}
