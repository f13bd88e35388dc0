package solar

import (
	"fmt"
	"time"

	"github.com/bft-labs/sunshade/internal/domain"
)

// Resolve converts both payload fields to instants on now's calendar day,
// in now's location.
func Resolve(p Payload, now time.Time) (domain.Events, error) {
	sunrise, err := ToLocalInstant(p.Sunrise, now)
	if err != nil {
		return domain.Events{}, fmt.Errorf("sunrise: %w", err)
	}
	sunset, err := ToLocalInstant(p.Sunset, now)
	if err != nil {
		return domain.Events{}, fmt.Errorf("sunset: %w", err)
	}
	return domain.Events{Sunrise: sunrise, Sunset: sunset}, nil
}
