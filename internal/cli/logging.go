package cli

import (
	"io"

	"github.com/charmbracelet/log"
)

// newLogger returns the diagnostics logger. It writes to the error stream and
// stays quiet below warnings unless --verbose is set.
func newLogger(w io.Writer, verbose, quiet bool) *log.Logger {
	level := log.WarnLevel
	switch {
	case verbose:
		level = log.DebugLevel
	case quiet:
		level = log.ErrorLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       log.TextFormatter,
		ReportTimestamp: false,
		ReportCaller:    false,
		Prefix:          "todotxt",
	})
}
