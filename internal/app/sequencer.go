package app

import (
	"fmt"
	"sync"

	"github.com/bft-labs/sunshade/internal/domain"
	"github.com/bft-labs/sunshade/pkg/log"
)

// Phase is a step of one duty cycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseNetworkUp
	PhaseFetched
	PhaseClockSynced
	PhaseNetworkDown
	PhaseDecided
	PhaseActuated
	PhaseSuspended
	PhaseFailed
)

// String returns a human-readable representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseNetworkUp:
		return "NetworkUp"
	case PhaseFetched:
		return "Fetched"
	case PhaseClockSynced:
		return "ClockSynced"
	case PhaseNetworkDown:
		return "NetworkDown"
	case PhaseDecided:
		return "Decided"
	case PhaseActuated:
		return "Actuated"
	case PhaseSuspended:
		return "Suspended"
	case PhaseFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further transition is allowed.
func (p Phase) Terminal() bool {
	return p == PhaseActuated || p == PhaseSuspended || p == PhaseFailed
}

// next lists the forward transitions. Failed is reachable from every
// non-terminal phase.
var next = map[Phase][]Phase{
	PhaseIdle:        {PhaseNetworkUp},
	PhaseNetworkUp:   {PhaseFetched},
	PhaseFetched:     {PhaseClockSynced},
	PhaseClockSynced: {PhaseNetworkDown},
	PhaseNetworkDown: {PhaseDecided},
	PhaseDecided:     {PhaseActuated, PhaseSuspended},
}

// PhaseObserver is called when the sequencer changes phase.
type PhaseObserver interface {
	OnPhaseChange(previous, current Phase)
}

// Sequencer enforces the order of a cycle's steps.
type Sequencer struct {
	mu       sync.RWMutex
	phase    Phase
	history  []Phase
	logger   log.Logger
	observer PhaseObserver
}

// NewSequencer creates a sequencer in PhaseIdle.
func NewSequencer(logger log.Logger, observer PhaseObserver) *Sequencer {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Sequencer{
		phase:    PhaseIdle,
		history:  []Phase{PhaseIdle},
		logger:   logger,
		observer: observer,
	}
}

// Phase returns the current phase.
func (s *Sequencer) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// History returns every phase entered so far, starting with PhaseIdle.
func (s *Sequencer) History() []Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Phase(nil), s.history...)
}

// TransitionTo moves to p. It returns an error matching domain.ErrPhaseOrder
// when p does not directly follow the current phase.
func (s *Sequencer) TransitionTo(p Phase) error {
	s.mu.Lock()
	prev := s.phase
	if !allowed(prev, p) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", domain.ErrPhaseOrder, prev, p)
	}
	s.phase = p
	s.history = append(s.history, p)
	s.mu.Unlock()

	// Notify outside of lock
	if s.observer != nil {
		s.observer.OnPhaseChange(prev, p)
	}

	s.logger.Debug("cycle phase",
		log.String("from", prev.String()),
		log.String("to", p.String()),
	)
	return nil
}

func allowed(from, to Phase) bool {
	if from.Terminal() {
		return false
	}
	if to == PhaseFailed {
		return true
	}
	for _, p := range next[from] {
		if p == to {
			return true
		}
	}
	return false
}
