// Package decision picks the single action a duty cycle performs.
package decision

import (
	"time"

	"github.com/bft-labs/sunshade/internal/domain"
)

// Defaults for Policy.
const (
	DefaultWindow    = 60 * time.Minute
	DefaultIdleSleep = 2 * time.Hour
)

// Action is what the cycle does after deciding.
type Action int

const (
	// Idle suspends the device for Outcome.Sleep.
	Idle Action = iota
	// Lower drives the shade down.
	Lower
	// Raise drives the shade up.
	Raise
)

// String returns a human-readable representation of the action.
func (a Action) String() string {
	switch a {
	case Idle:
		return "idle"
	case Lower:
		return "lower"
	case Raise:
		return "raise"
	default:
		return "unknown"
	}
}

// Direction maps Lower and Raise to the actuator direction. ok is false for Idle.
func (a Action) Direction() (d domain.Direction, ok bool) {
	switch a {
	case Lower:
		return domain.Lower, true
	case Raise:
		return domain.Raise, true
	default:
		return 0, false
	}
}

// Policy holds the decision constants.
type Policy struct {
	// Window is the half-width of the interval around each event.
	Window time.Duration
	// IdleSleep is how long the device sleeps when no window is open.
	IdleSleep time.Duration
}

// DefaultPolicy returns a Policy with a 60 minute window and 2 hour sleep.
func DefaultPolicy() Policy {
	return Policy{Window: DefaultWindow, IdleSleep: DefaultIdleSleep}
}

// Outcome is the result of one decision. Sleep is set only for Idle.
type Outcome struct {
	Action Action
	Sleep  time.Duration
}

// IdleOutcome returns an Idle outcome sleeping for d.
func IdleOutcome(d time.Duration) Outcome {
	return Outcome{Action: Idle, Sleep: d}
}

// Decide returns Lower when now is within Window of sunset, otherwise Raise
// when now is within Window of sunrise, otherwise Idle. Both window ends are
// inclusive. The sunset window wins when the two overlap.
func Decide(now, sunrise, sunset time.Time, p Policy) Outcome {
	if within(now, sunset, p.Window) {
		return Outcome{Action: Lower}
	}
	if within(now, sunrise, p.Window) {
		return Outcome{Action: Raise}
	}
	return IdleOutcome(p.IdleSleep)
}

// DecideEvents is Decide over resolved events.
func DecideEvents(now time.Time, ev domain.Events, p Policy) Outcome {
	return Decide(now, ev.Sunrise, ev.Sunset, p)
}

func within(now, event time.Time, window time.Duration) bool {
	return !now.Before(event.Add(-window)) && !now.After(event.Add(window))
}
