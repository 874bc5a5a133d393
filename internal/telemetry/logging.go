// Package telemetry wires up the process-wide logger and metrics.
package telemetry

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogging configures zerolog's global logger. level is one of
// zerolog's level strings ("debug", "info", "warn", "error"); an
// unrecognized value falls back to info.
func InitLogging(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
