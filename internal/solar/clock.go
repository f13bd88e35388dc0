package solar

import (
	"strconv"
	"strings"
	"time"

	"github.com/bft-labs/sunshade/internal/domain"
)

// ToLocalInstant converts a vendor time string such as "5:22:11 PM" to an
// instant on referenceDate's calendar day in referenceDate's location.
//
// A string without an AM/PM suffix is taken as AM.
func ToLocalInstant(raw string, referenceDate time.Time) (time.Time, error) {
	hour, minute, second, err := parseClock(raw)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := referenceDate.Date()
	t, err := resolveWall(y, m, d, hour, minute, second, referenceDate.Location())
	if err != nil {
		return time.Time{}, &timeError{raw: raw, err: err}
	}
	return t, nil
}

// parseClock returns the 24-hour time of day encoded in raw.
func parseClock(raw string) (hour, minute, second int, err error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ':' || r == ' ' || r == '"'
	})
	nums := make([]int, 0, 3)
	for _, f := range fields {
		n, perr := strconv.ParseUint(f, 10, 16)
		if perr != nil {
			continue
		}
		nums = append(nums, int(n))
	}
	if len(nums) != 3 {
		return 0, 0, 0, &domain.ParseError{Kind: domain.MalformedTime, Raw: raw}
	}
	hour, minute, second = nums[0], nums[1], nums[2]
	if hour < 1 || hour > 12 || minute > 59 || second > 59 {
		return 0, 0, 0, &domain.ParseError{Kind: domain.MalformedTime, Raw: raw}
	}

	suffix := strings.TrimRight(raw, ` "`)
	switch {
	case strings.HasSuffix(suffix, "PM") && hour != 12:
		hour += 12
	case strings.HasSuffix(suffix, "AM") && hour == 12:
		hour = 0
	}
	return hour, minute, second, nil
}

// resolveWall maps a wall-clock reading in loc to the single instant that
// shows it. time.Date silently normalizes gaps and picks one side of a
// fold, so every offset in effect around the reading is tried instead.
func resolveWall(y int, mo time.Month, d, h, mi, s int, loc *time.Location) (time.Time, error) {
	wall := time.Date(y, mo, d, h, mi, s, 0, time.UTC)

	var matches []time.Time
	seen := make(map[int]bool, 3)
	for _, off := range candidateOffsets(time.Date(y, mo, d, h, mi, s, 0, loc)) {
		if seen[off] {
			continue
		}
		seen[off] = true

		t := wall.Add(-time.Duration(off) * time.Second).In(loc)
		if sameWall(t, wall) {
			matches = append(matches, t)
		}
	}

	switch len(matches) {
	case 0:
		return time.Time{}, domain.ErrNonexistentLocalTime
	case 1:
		return matches[0], nil
	default:
		return time.Time{}, domain.ErrAmbiguousLocalTime
	}
}

// candidateOffsets returns the UTC offsets of the zone in effect at t and of
// the zones immediately before and after it.
func candidateOffsets(t time.Time) []int {
	_, off := t.Zone()
	offsets := []int{off}
	start, end := t.ZoneBounds()
	if !start.IsZero() {
		_, before := start.Add(-time.Nanosecond).Zone()
		offsets = append(offsets, before)
	}
	if !end.IsZero() {
		_, after := end.Zone()
		offsets = append(offsets, after)
	}
	return offsets
}

func sameWall(t, wall time.Time) bool {
	ty, tm, td := t.Date()
	wy, wm, wd := wall.Date()
	return ty == wy && tm == wm && td == wd &&
		t.Hour() == wall.Hour() && t.Minute() == wall.Minute() && t.Second() == wall.Second()
}

// timeError keeps the raw string next to a resolution failure while still
// matching the domain sentinels.
type timeError struct {
	raw string
	err error
}

func (e *timeError) Error() string {
	return e.err.Error() + ": " + strconv.Quote(e.raw)
}

func (e *timeError) Unwrap() error {
	return e.err
}
