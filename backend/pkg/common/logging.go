package common

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger configures a zerolog logger for a service. All log lines
// carry the service name and environment. LOG_LEVEL downgrades or
// raises verbosity; production environments emit JSON, everything else
// gets the console writer.
func NewLogger(service, env string) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(getEnv("LOG_LEVEL", "info")))
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if env == "production" {
		logger = zerolog.New(os.Stdout)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	return logger.Level(level).With().
		Timestamp().
		Str("service", service).
		Str("env", env).
		Logger()
}
