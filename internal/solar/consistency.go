package solar

import (
	"time"

	"github.com/bft-labs/sunshade/internal/domain"
)

const vendorDateLayout = "2006-01-02"

// CheckContext rejects a payload whose optional date or timezone disagrees
// with now, the device's local time. Absent fields, unparseable dates and
// zone names unknown to the zone database are not checked. Zones are
// compared by their UTC offset at now, so aliases and time.Local pass.
func CheckContext(p Payload, now time.Time) error {
	if p.Date != "" {
		if d, err := time.Parse(vendorDateLayout, p.Date); err == nil {
			y, m, day := now.Date()
			if d.Year() != y || d.Month() != m || d.Day() != day {
				return &domain.ParseError{Kind: domain.StaleEvents, Field: "date", Raw: p.Date}
			}
		}
	}
	if p.Timezone != "" {
		if loc, err := time.LoadLocation(p.Timezone); err == nil {
			_, vendor := now.In(loc).Zone()
			_, local := now.Zone()
			if vendor != local {
				return &domain.ParseError{Kind: domain.StaleEvents, Field: "timezone", Raw: p.Timezone}
			}
		}
	}
	return nil
}
