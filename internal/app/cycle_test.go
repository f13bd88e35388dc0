package app

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/sunshade/internal/decision"
	"github.com/bft-labs/sunshade/internal/domain"
	"github.com/bft-labs/sunshade/internal/solar"
)

const okBody = `{"results":{"sunrise":"6:00:00 AM","sunset":"6:00:00 PM"},"status":"OK"}`

// trace records device calls in order.
type trace struct {
	calls []string
}

func (t *trace) add(s string) { t.calls = append(t.calls, s) }

type fakeNetwork struct {
	tr         *trace
	acquireErr error
}

func (n *fakeNetwork) Acquire(context.Context) error {
	n.tr.add("acquire")
	return n.acquireErr
}

func (n *fakeNetwork) Release() error {
	n.tr.add("release")
	return nil
}

type fakeFetcher struct {
	tr   *trace
	body string
	err  error
	got  string
}

func (f *fakeFetcher) Fetch(_ context.Context, endpoint string) (string, error) {
	f.tr.add("fetch")
	f.got = endpoint
	return f.body, f.err
}

type fakeClock struct {
	tr      *trace
	now     time.Time
	syncErr error
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sync(context.Context) error {
	c.tr.add("sync")
	return c.syncErr
}

type fakeActuator struct {
	tr    *trace
	err   error
	pulse time.Duration
}

func (a *fakeActuator) Drive(dir domain.Direction, d time.Duration) error {
	a.tr.add("drive:" + dir.String())
	a.pulse = d
	return a.err
}

type fixture struct {
	tr       *trace
	network  *fakeNetwork
	fetcher  *fakeFetcher
	clock    *fakeClock
	actuator *fakeActuator
	config   CycleConfig
}

func newFixture(now time.Time) *fixture {
	tr := &trace{}
	return &fixture{
		tr:       tr,
		network:  &fakeNetwork{tr: tr},
		fetcher:  &fakeFetcher{tr: tr, body: okBody},
		clock:    &fakeClock{tr: tr, now: now},
		actuator: &fakeActuator{tr: tr},
		config: CycleConfig{
			Endpoint: "https://api.example/json",
			Policy:   decision.DefaultPolicy(),
			Pulse:    15 * time.Second,
			Location: time.UTC,
		},
	}
}

func (f *fixture) cycle() *Cycle {
	return NewCycle(f.config, f.network, f.fetcher, f.clock, f.actuator, nil, nil)
}

func utc(h, m int) time.Time {
	return time.Date(2024, 6, 21, h, m, 0, 0, time.UTC)
}

func TestCycle_Run_Actions(t *testing.T) {
	tests := []struct {
		name       string
		now        time.Time
		wantAction decision.Action
		wantCalls  []string
		wantSleep  time.Duration
		wantLast   Phase
	}{
		{
			name:       "sunset window lowers",
			now:        utc(17, 30),
			wantAction: decision.Lower,
			wantCalls:  []string{"acquire", "fetch", "sync", "release", "drive:lower"},
			wantSleep:  2 * time.Hour,
			wantLast:   PhaseActuated,
		},
		{
			name:       "sunrise window raises",
			now:        utc(6, 30),
			wantAction: decision.Raise,
			wantCalls:  []string{"acquire", "fetch", "sync", "release", "drive:raise"},
			wantSleep:  2 * time.Hour,
			wantLast:   PhaseActuated,
		},
		{
			name:       "midday idles",
			now:        utc(12, 0),
			wantAction: decision.Idle,
			wantCalls:  []string{"acquire", "fetch", "sync", "release"},
			wantSleep:  2 * time.Hour,
			wantLast:   PhaseSuspended,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.now)
			rep := f.cycle().Run(context.Background())

			require.NoError(t, rep.Err)
			assert.Equal(t, tt.wantAction, rep.Outcome.Action)
			assert.Equal(t, tt.wantCalls, f.tr.calls)
			assert.Equal(t, tt.wantSleep, rep.Sleep)
			assert.False(t, rep.Failed())
			assert.Equal(t, []Phase{
				PhaseIdle, PhaseNetworkUp, PhaseFetched, PhaseClockSynced,
				PhaseNetworkDown, PhaseDecided, tt.wantLast,
			}, rep.Phases)
			assert.True(t, rep.Now.Equal(tt.now))
			assert.True(t, rep.Events.Sunset.Equal(utc(18, 0)))
			assert.Equal(t, "https://api.example/json", f.fetcher.got)
		})
	}
}

func TestCycle_Run_PulseDuration(t *testing.T) {
	f := newFixture(utc(17, 30))
	f.config.Pulse = 3 * time.Second
	f.cycle().Run(context.Background())
	assert.Equal(t, 3*time.Second, f.actuator.pulse)
}

func TestCycle_Run_Failures(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name      string
		setup     func(f *fixture)
		wantErr   error
		wantCalls []string
	}{
		{
			name:      "network unavailable",
			setup:     func(f *fixture) { f.network.acquireErr = cause },
			wantErr:   cause,
			wantCalls: []string{"acquire", "release"},
		},
		{
			name:      "transport error",
			setup:     func(f *fixture) { f.fetcher.err = fmt.Errorf("%w: %w", domain.ErrTransport, cause) },
			wantErr:   domain.ErrTransport,
			wantCalls: []string{"acquire", "fetch", "release"},
		},
		{
			name:      "protocol error",
			setup:     func(f *fixture) { f.fetcher.err = &domain.StatusError{Code: 503} },
			wantErr:   domain.ErrProtocol,
			wantCalls: []string{"acquire", "fetch", "release"},
		},
		{
			name:      "clock unsynchronized",
			setup:     func(f *fixture) { f.clock.syncErr = domain.ErrClockUnsynced },
			wantErr:   domain.ErrClockUnsynced,
			wantCalls: []string{"acquire", "fetch", "sync", "release"},
		},
		{
			name:      "missing field",
			setup:     func(f *fixture) { f.fetcher.body = `{"results":{"sunrise":"6:00:00 AM"}}` },
			wantErr:   domain.ErrParse,
			wantCalls: []string{"acquire", "fetch", "sync", "release"},
		},
		{
			name:      "malformed time",
			setup:     func(f *fixture) { f.fetcher.body = `{"results":{"sunrise":"6:00 AM","sunset":"6:00:00 PM"}}` },
			wantErr:   domain.ErrParse,
			wantCalls: []string{"acquire", "fetch", "sync", "release"},
		},
		{
			name: "vendor date and zone differ from device",
			setup: func(f *fixture) {
				f.fetcher.body = `{"results":{"date":"2024-06-22","sunrise":"6:00:00 AM","sunset":"6:00:00 PM",` +
					`"timezone":"Australia/Sydney"},"status":"OK"}`
			},
			wantErr:   domain.ErrParse,
			wantCalls: []string{"acquire", "fetch", "sync", "release"},
		},
		{
			name: "vendor zone differs from device",
			setup: func(f *fixture) {
				f.fetcher.body = `{"results":{"date":"2024-06-21","sunrise":"6:00:00 AM","sunset":"6:00:00 PM",` +
					`"timezone":"Australia/Sydney"},"status":"OK"}`
			},
			wantErr:   domain.ErrParse,
			wantCalls: []string{"acquire", "fetch", "sync", "release"},
		},
		{
			name: "implausible events",
			setup: func(f *fixture) {
				f.config.Plausibility = solar.Plausibility{Latitude: 0, Longitude: 0, Tolerance: time.Minute}
				f.fetcher.body = `{"results":{"sunrise":"1:00:00 AM","sunset":"2:00:00 AM"}}`
			},
			wantErr:   domain.ErrParse,
			wantCalls: []string{"acquire", "fetch", "sync", "release"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(utc(17, 30))
			tt.setup(f)
			rep := f.cycle().Run(context.Background())

			assert.ErrorIs(t, rep.Err, tt.wantErr)
			assert.Equal(t, decision.IdleOutcome(2*time.Hour), rep.Outcome)
			assert.Equal(t, 2*time.Hour, rep.Sleep)
			assert.Equal(t, tt.wantCalls, f.tr.calls)
			assert.True(t, rep.Failed())
		})
	}
}

func TestCycle_Run_ActuatorErrorStillSleeps(t *testing.T) {
	f := newFixture(utc(17, 30))
	f.actuator.err = errors.New("pin stuck")
	rep := f.cycle().Run(context.Background())

	assert.EqualError(t, rep.Err, "pin stuck")
	assert.Equal(t, decision.Idle, rep.Outcome.Action)
	assert.Equal(t, 2*time.Hour, rep.Sleep)
	assert.True(t, rep.Failed())
	assert.Equal(t, []string{"acquire", "fetch", "sync", "release", "drive:lower"}, f.tr.calls)
}

func TestCycle_Run_ReleaseBeforeDecision(t *testing.T) {
	f := newFixture(utc(17, 30))
	obs := &mockObserver{}
	c := NewCycle(f.config, f.network, f.fetcher, f.clock, f.actuator, nil, obs)
	c.Run(context.Background())

	var released, decided int
	for i, ch := range obs.Changes() {
		switch ch[1] {
		case PhaseNetworkDown:
			released = i
		case PhaseDecided:
			decided = i
		}
	}
	assert.Less(t, released, decided)
}

func TestCycle_Run_UsesConfiguredLocation(t *testing.T) {
	loc := time.FixedZone("AEST", 10*60*60)
	// 07:30 UTC is 17:30 AEST, inside the sunset window.
	f := newFixture(utc(7, 30))
	f.config.Location = loc
	rep := f.cycle().Run(context.Background())

	require.NoError(t, rep.Err)
	assert.Equal(t, decision.Lower, rep.Outcome.Action)
	assert.Equal(t, loc, rep.Now.Location())
}

func TestCycle_Run_StaleVendorDate(t *testing.T) {
	f := newFixture(time.Date(2024, 6, 21, 16, 30, 0, 0, time.UTC))
	f.fetcher.body = `{"results":{"date":"2024-06-22","sunrise":"6:00:00 AM","sunset":"6:00:00 PM",` +
		`"timezone":"Australia/Sydney"},"status":"OK"}`
	rep := f.cycle().Run(context.Background())

	var pe *domain.ParseError
	require.ErrorAs(t, rep.Err, &pe)
	assert.Equal(t, domain.StaleEvents, pe.Kind)
	assert.Equal(t, "date", pe.Field)
	assert.Equal(t, decision.Idle, rep.Outcome.Action)
	assert.NotContains(t, f.tr.calls, "drive:lower")
}

func TestCycle_Run_MatchingVendorContext(t *testing.T) {
	f := newFixture(utc(17, 30))
	f.fetcher.body = `{"results":{"date":"2024-06-21","sunrise":"6:00:00 AM","sunset":"6:00:00 PM",` +
		`"timezone":"UTC"},"status":"OK"}`
	rep := f.cycle().Run(context.Background())

	require.NoError(t, rep.Err)
	assert.Equal(t, decision.Lower, rep.Outcome.Action)
}

func TestCycle_Run_Repeatable(t *testing.T) {
	f := newFixture(utc(12, 0))
	c := f.cycle()
	first := c.Run(context.Background())
	second := c.Run(context.Background())
	assert.Equal(t, first.Outcome, second.Outcome)
	assert.Equal(t, first.Phases, second.Phases)
}
