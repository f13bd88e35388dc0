package domain

import "time"

// Direction is the way the actuator is driven.
type Direction int

const (
	// Raise opens the shade (sunrise).
	Raise Direction = iota + 1
	// Lower closes the shade (sunset).
	Lower
)

// String returns a human-readable representation of the direction.
func (d Direction) String() string {
	switch d {
	case Raise:
		return "raise"
	case Lower:
		return "lower"
	default:
		return "unknown"
	}
}

// Events holds today's solar events resolved to local instants.
type Events struct {
	Sunrise time.Time
	Sunset  time.Time
}
