package cliconfig

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/bft-labs/sunshade/internal/domain"
)

// DefaultEndpoint returns today's events for Canberra.
const DefaultEndpoint = "https://api.sunrisesunset.io/json?lat=-35.2820012&lng=149.128998"

// Default coordinates matching DefaultEndpoint.
const (
	DefaultLatitude  = -35.2820012
	DefaultLongitude = 149.128998
)

// Config holds CLI configuration for sunshade.
type Config struct {
	Endpoint  string
	Latitude  float64
	Longitude float64
	Timezone  string

	Window    time.Duration
	IdleSleep time.Duration

	ChunkSize   int
	HTTPTimeout time.Duration
	CAFile      string

	NTPServer      string
	MaxClockOffset time.Duration

	RaisePin  int
	LowerPin  int
	StatusPin int
	Pulse     time.Duration

	PlausibilityTolerance time.Duration

	LogLevel string
	DryRun   bool
	Once     bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Endpoint:       DefaultEndpoint,
		Latitude:       DefaultLatitude,
		Longitude:      DefaultLongitude,
		Window:         60 * time.Minute,
		IdleSleep:      2 * time.Hour,
		ChunkSize:      256,
		HTTPTimeout:    30 * time.Second,
		MaxClockOffset: 2 * time.Second,
		RaisePin:       25,
		LowerPin:       21,
		Pulse:          15 * time.Second,
		LogLevel:       "info",
	}
}

// Validate checks the configuration for errors. Every error matches
// domain.ErrInvalidConfig.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil || c.Endpoint == "" {
		return invalid("endpoint %q is not a URL", c.Endpoint)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return invalid("endpoint scheme must be https or http, got %q", u.Scheme)
	}
	if u.Host == "" {
		return invalid("endpoint %q has no host", c.Endpoint)
	}

	if c.Latitude < -90 || c.Latitude > 90 {
		return invalid("latitude %v out of range", c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return invalid("longitude %v out of range", c.Longitude)
	}
	if _, err := c.Location(); err != nil {
		return err
	}

	if c.Window <= 0 {
		return invalid("window must be positive")
	}
	if c.IdleSleep <= 0 {
		return invalid("idle sleep must be positive")
	}
	if c.ChunkSize <= 0 {
		return invalid("chunk size must be positive")
	}
	if c.HTTPTimeout <= 0 {
		return invalid("http timeout must be positive")
	}
	if c.Pulse <= 0 {
		return invalid("pulse must be positive")
	}
	if c.MaxClockOffset < 0 {
		return invalid("max clock offset must not be negative")
	}
	if c.PlausibilityTolerance < 0 {
		return invalid("plausibility tolerance must not be negative")
	}

	return c.Pins().Validate()
}

// Location resolves Timezone. An empty Timezone is time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %w", domain.ErrInvalidConfig, c.Timezone, err)
	}
	return loc, nil
}

// Pins returns the actuator pin assignment.
func (c *Config) Pins() domain.PinConfig {
	return domain.PinConfig{RaisePin: c.RaisePin, LowerPin: c.LowerPin, StatusPin: c.StatusPin}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{domain.ErrInvalidConfig}, args...)...)
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setIntPtr sets an int value from a pointer, allowing zero.
func (s *configSetter) setIntPtr(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setFloatPtr sets a float64 value from a pointer, allowing zero and negatives.
func (s *configSetter) setFloatPtr(flag string, value *float64, dst *float64) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination.
// Zero is accepted. Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}

// setFloatFromString parses a string to float64 and sets the destination.
// Used for environment variables that come as strings.
func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = f
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
