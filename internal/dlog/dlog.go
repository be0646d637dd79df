// Package dlog centralizes the daemon's structured logging setup around
// charmbracelet/log, tagging every logger with the component that owns it.
package dlog

import (
	"os"

	"github.com/charmbracelet/log"
)

// loggers holds every logger returned by For, so Init can set their level.
var loggers []*log.Logger

// Init sets the process-wide log level. debug enables DebugLevel; otherwise
// InfoLevel.
func Init(debug bool) {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}
	log.SetLevel(level)
	for _, l := range loggers {
		l.SetLevel(level)
	}
	log.SetReportTimestamp(true)
}

// For returns a logger whose lines are prefixed with the given component
// name.
func For(component string) *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          component,
	})
	loggers = append(loggers, l)
	return l
}
