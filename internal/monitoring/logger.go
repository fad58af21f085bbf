// Package monitoring carries the process-wide diagnostic logger used by
// background tasks such as the deck watcher. Production code logs through
// Logf; tests capture or mute it with SetLogger.
package monitoring

import "log"

// Logf is the package-level diagnostic logger, defaulting to log.Printf.
// Background goroutines log through it so their output can be redirected.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. A nil f installs a no-op logger,
// which mutes background diagnostics entirely.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
