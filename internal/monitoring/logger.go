package monitoring

import "log"

// Logf is the shared diagnostic logger for the module. It defaults to
// log.Printf; callers (typically tests, or embedders that route logs
// elsewhere) may replace it via SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger swaps the package logger. A nil argument installs a no-op
// logger, which mutes all diagnostic output.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
