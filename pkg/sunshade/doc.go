// Package sunshade wires a configuration to the shade controller's adapters
// and runs duty cycles.
//
// # Basic Usage
//
//	cfg := sunshade.DefaultConfig()
//	cfg.DryRun = true
//	cfg.Once = true
//
//	ctl, err := sunshade.New(cfg, sunshade.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ctl.Close()
//
//	report, err := ctl.Run(ctx)
//
// In once mode Run performs a single cycle and the caller is expected to
// suspend the device for report.Sleep. Otherwise Run loops, sleeping between
// cycles, until ctx is cancelled.
//
// # Reloading
//
// [WithReload] re-reads configuration before a cycle whenever the watcher
// reports a change. Pin assignments and dry-run mode are fixed when New
// opens the hardware and are not reloaded.
package sunshade
