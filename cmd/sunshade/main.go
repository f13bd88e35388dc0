package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	// Zone data for devices without a system zoneinfo database.
	_ "time/tzdata"

	"github.com/bft-labs/sunshade/internal/cliconfig"
	"github.com/bft-labs/sunshade/pkg/log"
	"github.com/bft-labs/sunshade/pkg/sunshade"
)

const helpDescription = `
Raise and lower a shade or vent around local sunrise and sunset.

Each cycle fetches today's solar events once, releases the network, then
either pulses the motor (within the window around sunset or sunrise) or
sleeps. Configure via file, SUNSHADE_* environment variables, or flags.
`

var exampleUsage = strings.TrimSpace(`
  sunshade --dry-run --once
  sunshade --config /etc/sunshade/config.toml --ntp-server pool.ntp.org
  sunshade --endpoint "https://api.sunrisesunset.io/json?lat=51.5&lng=-0.12" --timezone Europe/London
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:     "sunshade",
		Short:   "Drive a shade motor around local sunrise and sunset",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			// Flags and defaults are the base; file then SUNSHADE_* override
			// anything not set on the command line.
			loader := cliconfig.Loader{Path: cfgFile, Base: cfg, Changed: changed}
			effective, err := loader.Load()
			if err != nil {
				return err
			}

			zl := cliconfig.LoggerWithLevel(effective.LogLevel)
			zl.Info().Interface("config", effective).Msg("configuration")
			logger := log.NewZerologAdapterWithLogger(zl)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			opts := []sunshade.Option{sunshade.WithLogger(logger)}
			if !effective.Once && cfgFile != "" {
				w, err := cliconfig.NewWatcher(cfgFile, logger)
				if err != nil {
					zl.Warn().Err(err).Msg("config reload disabled")
				} else {
					go w.Run(ctx)
					opts = append(opts, sunshade.WithReload(loader, w))
				}
			}

			ctl, err := sunshade.New(effective, opts...)
			if err != nil {
				return fmt.Errorf("create controller: %w", err)
			}
			defer ctl.Close()

			report, err := ctl.Run(ctx)
			if err != nil {
				return err
			}
			if effective.Once {
				// The platform performs the suspend after exit.
				zl.Info().
					Str("action", report.Outcome.Action.String()).
					Dur("sleep", report.Sleep).
					Msg("cycle done")
				fmt.Fprintf(cmd.OutOrStdout(), "sleep=%s\n", report.Sleep)
				if report.Err != nil {
					return report.Err
				}
			} else if errors.Is(ctx.Err(), context.Canceled) {
				zl.Info().Msg("received signal, stopping...")
			}
			return nil
		},
	}

	// Flags
	f := root.Flags()
	f.StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.sunshade/config.toml)")
	f.StringVar(&cfg.Endpoint, "endpoint", cfg.Endpoint, "solar-event endpoint URL")
	f.Float64Var(&cfg.Latitude, "latitude", cfg.Latitude, "site latitude for the plausibility check")
	f.Float64Var(&cfg.Longitude, "longitude", cfg.Longitude, "site longitude for the plausibility check")
	f.StringVar(&cfg.Timezone, "timezone", cfg.Timezone, "IANA zone for local time (default: system local)")
	f.DurationVar(&cfg.Window, "window", cfg.Window, "half-width of the window around sunrise and sunset")
	f.DurationVar(&cfg.IdleSleep, "idle-sleep", cfg.IdleSleep, "sleep when outside both windows or after a failure")
	f.IntVar(&cfg.ChunkSize, "chunk-size", cfg.ChunkSize, "response body read size in bytes")
	f.DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP timeout")
	f.StringVar(&cfg.CAFile, "ca-file", cfg.CAFile, "extra PEM CA bundle trusted for the endpoint")
	f.StringVar(&cfg.NTPServer, "ntp-server", cfg.NTPServer, "NTP server to correct the clock against (default: trust system clock)")
	f.DurationVar(&cfg.MaxClockOffset, "max-clock-offset", cfg.MaxClockOffset, "clock drift tolerated without correction")
	f.IntVar(&cfg.RaisePin, "raise-pin", cfg.RaisePin, "BCM pin driving the raise output")
	f.IntVar(&cfg.LowerPin, "lower-pin", cfg.LowerPin, "BCM pin driving the lower output")
	f.IntVar(&cfg.StatusPin, "status-pin", cfg.StatusPin, "BCM pin for the status LED (0 disables)")
	f.DurationVar(&cfg.Pulse, "pulse", cfg.Pulse, "how long the motor output is held")
	f.DurationVar(&cfg.PlausibilityTolerance, "plausibility-tolerance", cfg.PlausibilityTolerance, "reject events further than this from the astronomical estimate (0 disables)")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	f.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "log actuator pulses instead of driving GPIO")
	f.BoolVar(&cfg.Once, "once", cfg.Once, "run one cycle, print the requested sleep and exit")

	if err := root.Execute(); err != nil {
		l := cliconfig.Logger()
		l.Error().Err(err).Msg("sunshade")
		os.Exit(1)
	}
}
