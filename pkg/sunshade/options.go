package sunshade

import (
	"github.com/bft-labs/sunshade/internal/app"
	"github.com/bft-labs/sunshade/internal/cliconfig"
	"github.com/bft-labs/sunshade/internal/ports"
	"github.com/bft-labs/sunshade/pkg/log"
)

// ChangeNotifier reports whether configuration changed since the last call.
// *cliconfig.Watcher satisfies this interface.
type ChangeNotifier interface {
	Changed() bool
}

// Option configures optional behavior of a Controller.
type Option func(*options)

type options struct {
	logger    log.Logger
	client    ports.HTTPClient
	actuator  ports.Actuator
	clock     ports.Clock
	network   ports.Network
	suspender ports.Suspender
	observer  app.PhaseObserver
	loader    *cliconfig.Loader
	notifier  ChangeNotifier
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithHTTPClient sets the client used for the solar-event fetch.
// If not provided, one is built from the TLS settings in the config.
func WithHTTPClient(client ports.HTTPClient) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithActuator replaces the GPIO (or dry-run) actuator.
func WithActuator(a ports.Actuator) Option {
	return func(o *options) {
		o.actuator = a
	}
}

// WithClock replaces the clock chosen from the config.
func WithClock(c ports.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithNetwork replaces the host network.
func WithNetwork(n ports.Network) Option {
	return func(o *options) {
		o.network = n
	}
}

// WithSuspender replaces the in-process sleep between cycles.
func WithSuspender(s ports.Suspender) Option {
	return func(o *options) {
		o.suspender = s
	}
}

// WithPhaseObserver receives every cycle phase change.
func WithPhaseObserver(obs app.PhaseObserver) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithReload rebuilds the configuration through loader before any cycle
// that follows a change reported by notifier.
func WithReload(loader cliconfig.Loader, notifier ChangeNotifier) Option {
	return func(o *options) {
		o.loader = &loader
		o.notifier = notifier
	}
}
