package cliconfig

import (
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
// Pointers distinguish an explicit zero from an absent key.
type FileConfig struct {
	Endpoint              string   `toml:"endpoint"`
	Latitude              *float64 `toml:"latitude"`
	Longitude             *float64 `toml:"longitude"`
	Timezone              string   `toml:"timezone"`
	Window                string   `toml:"window"`
	IdleSleep             string   `toml:"idle_sleep"`
	ChunkSize             int      `toml:"chunk_size"`
	HTTPTimeout           string   `toml:"http_timeout"`
	CAFile                string   `toml:"ca_file"`
	NTPServer             string   `toml:"ntp_server"`
	MaxClockOffset        string   `toml:"max_clock_offset"`
	RaisePin              int      `toml:"raise_pin"`
	LowerPin              int      `toml:"lower_pin"`
	StatusPin             *int     `toml:"status_pin"`
	Pulse                 string   `toml:"pulse"`
	PlausibilityTolerance string   `toml:"plausibility_tolerance"`
	LogLevel              string   `toml:"log_level"`
	DryRun                *bool    `toml:"dry_run"`
	Once                  *bool    `toml:"once"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.sunshade/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".sunshade", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("endpoint", fc.Endpoint, &cfg.Endpoint)
	s.setString("timezone", fc.Timezone, &cfg.Timezone)
	s.setString("ca-file", fc.CAFile, &cfg.CAFile)
	s.setString("ntp-server", fc.NTPServer, &cfg.NTPServer)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	s.setFloatPtr("latitude", fc.Latitude, &cfg.Latitude)
	s.setFloatPtr("longitude", fc.Longitude, &cfg.Longitude)

	durations := []struct {
		flag  string
		value string
		dst   *time.Duration
	}{
		{"window", fc.Window, &cfg.Window},
		{"idle-sleep", fc.IdleSleep, &cfg.IdleSleep},
		{"timeout", fc.HTTPTimeout, &cfg.HTTPTimeout},
		{"max-clock-offset", fc.MaxClockOffset, &cfg.MaxClockOffset},
		{"pulse", fc.Pulse, &cfg.Pulse},
		{"plausibility-tolerance", fc.PlausibilityTolerance, &cfg.PlausibilityTolerance},
	}
	for _, d := range durations {
		if err := s.setDuration(d.flag, d.value, d.dst); err != nil {
			return err
		}
	}

	s.setInt("chunk-size", fc.ChunkSize, &cfg.ChunkSize)
	s.setInt("raise-pin", fc.RaisePin, &cfg.RaisePin)
	s.setInt("lower-pin", fc.LowerPin, &cfg.LowerPin)
	s.setIntPtr("status-pin", fc.StatusPin, &cfg.StatusPin)

	s.setBool("dry-run", fc.DryRun, &cfg.DryRun)
	s.setBool("once", fc.Once, &cfg.Once)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
