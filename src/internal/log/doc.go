// Package log provides leveled logging for botiplist.
//
// It keeps a small set of package-level printf helpers (Debugf, Infof, Warnf,
// Errorf, Fatalf) on top of a charmbracelet/log logger, so callers never need
// to carry a logger around. Structured fields are available through With.
//
// # Log Levels
//
//   - DEBUG: only shown when verbose mode is on
//   - INFO: general progress
//   - WARN: degraded but recoverable situations (an endpoint was skipped)
//   - ERROR: failures
//
// # Example Usage
//
//	log.SetVerbose(true)
//	log.Infof("Refreshing %d endpoints", n)
//	log.With("endpoint", "googlebot").Warn("skipped", "status", 404)
//
// All logs go to stderr, so stdout stays reserved for command output
// (artifact paths, inline content).
package log
