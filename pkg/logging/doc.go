// Package logging provides the diagnostic logger used by the actionmock CLI and
// harness internals.
//
// It is a thin layer over log/slog with subsystem-tagged helpers:
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("Runner", "Spawning %s", target)
//	logging.Debug("Loader", "Registered %d exec rules", n)
//	logging.Warn("Runner", "Ignoring mocks for unknown interceptor %q", id)
//	logging.Error("Serve", err, "Failed to reload rules")
//
// A loader process tags its entries with the run it belongs to through
// With("run", id), so they can be matched with the runner's own entries.
//
// Until InitForCLI is called every call is a no-op. Test binaries that use the
// harness therefore never see harness diagnostics mixed into the output of the
// action under test.
//
// This logger is distinct from the interceptors' log sinks (see package mock):
// the sinks produce test-facing output that assertions rely on, while this
// package carries operator diagnostics.
package logging
