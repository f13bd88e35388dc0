package cliconfig

import "fmt"

// Loader rebuilds the effective configuration from its sources:
// defaults and flags (Base), then the TOML file, then SUNSHADE_* variables.
// Flags named in Changed keep their Base value.
type Loader struct {
	Path    string
	Base    Config
	Changed map[string]bool
}

// Load reads the sources and validates the result. A missing file is not an
// error.
func (l Loader) Load() (Config, error) {
	cfg := l.Base
	if l.Path != "" && FileExists(l.Path) {
		fc, err := LoadFileConfig(l.Path)
		if err != nil {
			return Config{}, fmt.Errorf("load config: %w", err)
		}
		if err := ApplyFileConfig(&cfg, fc, l.Changed); err != nil {
			return Config{}, err
		}
	}
	if err := ApplyEnvConfig(&cfg, l.Changed); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
