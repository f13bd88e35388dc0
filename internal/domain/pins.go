package domain

import "fmt"

// PinConfig names the BCM pin numbers used by the actuator.
// A zero StatusPin disables the status LED.
type PinConfig struct {
	RaisePin  int
	LowerPin  int
	StatusPin int
}

// Validate checks that the pins are distinct and in range.
func (c PinConfig) Validate() error {
	if !validPin(c.RaisePin) || !validPin(c.LowerPin) {
		return fmt.Errorf("%w: raise and lower pins must be in 1..27", ErrInvalidConfig)
	}
	if c.RaisePin == c.LowerPin {
		return fmt.Errorf("%w: raise and lower pins must differ", ErrInvalidConfig)
	}
	if c.StatusPin != 0 {
		if !validPin(c.StatusPin) {
			return fmt.Errorf("%w: status pin must be in 1..27", ErrInvalidConfig)
		}
		if c.StatusPin == c.RaisePin || c.StatusPin == c.LowerPin {
			return fmt.Errorf("%w: status pin must not share a motor pin", ErrInvalidConfig)
		}
	}
	return nil
}

func validPin(n int) bool {
	return n >= 1 && n <= 27
}
