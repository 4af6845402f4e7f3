// Package monitoring carries the process-wide diagnostic logger used by the
// pipeline and the sweep harness.
package monitoring

import "log"

// Logf is the diagnostic logger. It defaults to log.Printf; tests mute it
// with SetLogger(nil) and long-running callers may redirect it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. A nil argument installs a no-op
// logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
