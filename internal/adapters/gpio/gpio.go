// Package gpio drives the shade motor through Raspberry Pi GPIO pins.
package gpio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/stianeikeland/go-rpio/v4"

	"github.com/bft-labs/sunshade/internal/domain"
	"github.com/bft-labs/sunshade/pkg/log"
)

// outputPin is the subset of rpio.Pin the actuator uses.
type outputPin interface {
	Output()
	High()
	Low()
}

// Peripherals owns the mapped GPIO memory. Open it once per process and
// pass it down; Close releases the mapping.
type Peripherals struct {
	mu     sync.Mutex
	cfg    domain.PinConfig
	logger log.Logger
	closed bool
	unmap  func() error
	pin    func(int) outputPin
}

// Open maps GPIO memory and configures the pins as outputs driven low.
func Open(cfg domain.PinConfig, logger log.Logger) (*Peripherals, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("open gpio: %w", err)
	}
	p := newPeripherals(cfg, logger, rpio.Close, func(n int) outputPin { return rpio.Pin(n) })
	return p, nil
}

func newPeripherals(cfg domain.PinConfig, logger log.Logger, unmap func() error, pin func(int) outputPin) *Peripherals {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	p := &Peripherals{cfg: cfg, logger: logger, unmap: unmap, pin: pin}
	for _, n := range []int{cfg.RaisePin, cfg.LowerPin, cfg.StatusPin} {
		if n == 0 {
			continue
		}
		out := pin(n)
		out.Output()
		out.Low()
	}
	return p
}

// Actuator returns the actuator bound to the configured pins.
func (p *Peripherals) Actuator() *Actuator {
	a := &Actuator{
		periph: p,
		raise:  p.pin(p.cfg.RaisePin),
		lower:  p.pin(p.cfg.LowerPin),
		sleep:  time.Sleep,
		logger: p.logger,
	}
	if p.cfg.StatusPin != 0 {
		a.status = p.pin(p.cfg.StatusPin)
	}
	return a
}

// Close unmaps GPIO memory. Further drives fail.
func (p *Peripherals) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.unmap()
}

func (p *Peripherals) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// ErrClosed is returned when driving after Peripherals.Close.
var ErrClosed = errors.New("gpio: peripherals closed")

// Actuator implements ports.Actuator on two motor pins and an optional
// status LED.
type Actuator struct {
	periph *Peripherals
	raise  outputPin
	lower  outputPin
	status outputPin
	sleep  func(time.Duration)
	logger log.Logger
}

// Drive sets the pin for dir high, holds it for d, then sets it low. The
// status LED, when configured, mirrors the motor pin.
func (a *Actuator) Drive(dir domain.Direction, d time.Duration) error {
	if a.periph.isClosed() {
		return ErrClosed
	}
	var out outputPin
	switch dir {
	case domain.Raise:
		out = a.raise
	case domain.Lower:
		out = a.lower
	default:
		return fmt.Errorf("gpio: unknown direction %d", dir)
	}

	a.logger.Info("driving actuator",
		log.String("direction", dir.String()),
		log.Duration("pulse", d),
	)
	out.High()
	if a.status != nil {
		a.status.High()
	}
	a.sleep(d)
	out.Low()
	if a.status != nil {
		a.status.Low()
	}
	return nil
}
