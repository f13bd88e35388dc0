package solar

import (
	"time"

	"github.com/nathan-osman/go-sunrise"

	"github.com/bft-labs/sunshade/internal/domain"
)

// Plausibility compares fetched events with an astronomical estimate for the
// configured coordinates. A zero Tolerance disables the check.
type Plausibility struct {
	Latitude  float64
	Longitude float64
	Tolerance time.Duration
}

// Enabled reports whether Check does anything.
func (p Plausibility) Enabled() bool {
	return p.Tolerance > 0
}

// Check returns a ParseError when either event is further than Tolerance
// from the estimate. Days without a sunrise or sunset (polar day or night)
// are not checked.
func (p Plausibility) Check(ev domain.Events) error {
	if !p.Enabled() {
		return nil
	}
	if err := p.checkOne("sunrise", ev.Sunrise, true); err != nil {
		return err
	}
	return p.checkOne("sunset", ev.Sunset, false)
}

func (p Plausibility) checkOne(field string, at time.Time, rise bool) error {
	best := time.Duration(-1)
	// The solar day at the coordinates need not match the local calendar
	// day, so the neighbours are tried too.
	for _, offset := range []int{-1, 0, 1} {
		day := at.AddDate(0, 0, offset)
		r, s := sunrise.SunriseSunset(p.Latitude, p.Longitude, day.Year(), day.Month(), day.Day())
		est := s
		if rise {
			est = r
		}
		if est.IsZero() {
			continue
		}
		diff := at.Sub(est)
		if diff < 0 {
			diff = -diff
		}
		if best < 0 || diff < best {
			best = diff
		}
	}
	if best < 0 || best <= p.Tolerance {
		return nil
	}
	return &domain.ParseError{
		Kind:  domain.Implausible,
		Field: field,
		Raw:   at.Format(time.RFC3339),
	}
}
