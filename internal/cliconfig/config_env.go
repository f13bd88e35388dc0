package cliconfig

import "os"

// EnvPrefix prefixes every environment variable read by ApplyEnvConfig.
const EnvPrefix = "SUNSHADE_"

// ApplyEnvConfig applies configuration from environment variables (SUNSHADE_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)
	env := func(key string) string { return os.Getenv(EnvPrefix + key) }

	s.setString("endpoint", env("ENDPOINT"), &cfg.Endpoint)
	s.setString("timezone", env("TIMEZONE"), &cfg.Timezone)
	s.setString("ca-file", env("CA_FILE"), &cfg.CAFile)
	s.setString("ntp-server", env("NTP_SERVER"), &cfg.NTPServer)
	s.setString("log-level", env("LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setFloatFromString("latitude", env("LATITUDE"), &cfg.Latitude); err != nil {
		return err
	}
	if err := s.setFloatFromString("longitude", env("LONGITUDE"), &cfg.Longitude); err != nil {
		return err
	}

	if err := s.setDuration("window", env("WINDOW"), &cfg.Window); err != nil {
		return err
	}
	if err := s.setDuration("idle-sleep", env("IDLE_SLEEP"), &cfg.IdleSleep); err != nil {
		return err
	}
	if err := s.setDuration("timeout", env("HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("max-clock-offset", env("MAX_CLOCK_OFFSET"), &cfg.MaxClockOffset); err != nil {
		return err
	}
	if err := s.setDuration("pulse", env("PULSE"), &cfg.Pulse); err != nil {
		return err
	}
	if err := s.setDuration("plausibility-tolerance", env("PLAUSIBILITY_TOLERANCE"), &cfg.PlausibilityTolerance); err != nil {
		return err
	}

	if err := s.setIntFromString("chunk-size", env("CHUNK_SIZE"), &cfg.ChunkSize); err != nil {
		return err
	}
	if err := s.setIntFromString("raise-pin", env("RAISE_PIN"), &cfg.RaisePin); err != nil {
		return err
	}
	if err := s.setIntFromString("lower-pin", env("LOWER_PIN"), &cfg.LowerPin); err != nil {
		return err
	}
	if err := s.setIntFromString("status-pin", env("STATUS_PIN"), &cfg.StatusPin); err != nil {
		return err
	}

	s.setBoolFromString("dry-run", env("DRY_RUN"), &cfg.DryRun)
	s.setBoolFromString("once", env("ONCE"), &cfg.Once)

	return nil
}
