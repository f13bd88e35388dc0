// Package log provides the logging abstraction used by sunshade components.
//
// Components depend on the Logger interface only. The zerolog adapter is
// what the sunshade binary wires in; the no-op logger is for tests and for
// embedding the cycle in a host that does its own reporting.
//
// # Usage
//
//	logger := log.NewZerologAdapter()
//	logger.Info("cycle complete", log.String("action", "lower"))
//
// Or wrap an existing zerolog logger:
//
//	logger := log.NewZerologAdapterWithLogger(zerolog.New(os.Stderr))
package log
