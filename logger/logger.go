// Package logger holds the process-wide default sirius/log.Logger that
// a Party falls back to when no WithLogger option is given. cmd/anonbt
// calls SetLogger once at startup to attach a real handler; tests leave
// it at the default discard logger so Ginkgo's own output stays clean.
package logger

import "github.com/getamis/sirius/log"

var defaultLogger = log.Discard()

// Logger returns the current process-wide default logger.
func Logger() log.Logger {
	return defaultLogger
}

// SetLogger replaces the process-wide default logger.
func SetLogger(l log.Logger) {
	defaultLogger = l
}
