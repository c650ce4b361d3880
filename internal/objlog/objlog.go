// Package objlog provides the structured logger shared by every core
// package and the cmd/objdiff CLI, adapted from the teacher's internal/logging
// package: same environment-variable configuration surface, same
// charmbracelet/log backend, renamed for this module's own env prefix.
package objlog

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// New builds the shared logger based on environment variables:
// OBJDIFF_LOG_LEVEL: debug, info, warn, error (default: info)
// OBJDIFF_LOG_PREFIX: prefix for log messages (default: "objdiff ")
func New() *log.Logger {
	lg := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})

	switch os.Getenv("OBJDIFF_LOG_LEVEL") {
	case "debug":
		lg.SetLevel(log.DebugLevel)
	case "warn":
		lg.SetLevel(log.WarnLevel)
	case "error":
		lg.SetLevel(log.ErrorLevel)
	default:
		lg.SetLevel(log.InfoLevel)
	}

	prefix := os.Getenv("OBJDIFF_LOG_PREFIX")
	if prefix == "" {
		prefix = "objdiff "
	}
	return lg.WithPrefix(prefix)
}

// Default is the package-level logger callers use directly. The pipeline
// logs Warn through it, with the symbol name as a key/value field, when it
// skips a function whose bytes it cannot read; the CLI logs its final error
// through it. The loader and the architecture adapters do not log.
var Default = New()
