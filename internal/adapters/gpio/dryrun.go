package gpio

import (
	"fmt"
	"time"

	"github.com/bft-labs/sunshade/internal/domain"
	"github.com/bft-labs/sunshade/pkg/log"
)

// DryRun logs pulses instead of touching hardware. It returns immediately.
type DryRun struct {
	Logger log.Logger
}

// Drive logs the pulse.
func (d DryRun) Drive(dir domain.Direction, pulse time.Duration) error {
	if dir != domain.Raise && dir != domain.Lower {
		return fmt.Errorf("gpio: unknown direction %d", dir)
	}
	if d.Logger != nil {
		d.Logger.Info("dry run: actuator pulse",
			log.String("direction", dir.String()),
			log.Duration("pulse", pulse),
		)
	}
	return nil
}
