// Package monitoring provides the package-level diagnostic logger shared by
// the fragmentation pipeline. Resource-lifecycle violations (reference-count
// leaks, double releases) are programming errors, not user-facing failures;
// they are reported here and the pipeline keeps running.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but
// may be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Violationf reports a resource-lifecycle violation. These indicate a
// reference-counting or ownership bug in the caller, never bad input data.
func Violationf(format string, v ...interface{}) {
	Logf("lifecycle violation: "+format, v...)
}
