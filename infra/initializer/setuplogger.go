// Package initializer wires process-level infrastructure: the logger and
// the database connection checks that must happen before anything else.
package initializer

import (
	"log/slog"
	"os"

	"github.com/charmbracelet/log"

	"github.com/acquirex/reconcile/config"
)

// SetupLogger builds the process logger and installs it as the slog
// default.
func SetupLogger(cfg config.LogConfig) *slog.Logger {
	formattersMap := map[string]log.Formatter{
		"json": log.JSONFormatter,
		"text": log.TextFormatter,
	}
	formatter := log.TextFormatter
	if f, ok := formattersMap[cfg.Format]; ok {
		formatter = f
	}

	logger := log.NewWithOptions(os.Stdout, log.Options{
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		Level:           log.Level(cfg.Level),
		Prefix:          cfg.Prefix,
		Formatter:       formatter,
	})

	slogger := slog.New(logger)
	slog.SetDefault(slogger)
	return slogger
}
