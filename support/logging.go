package support

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger builds the process logger and installs it as the zerolog default.
func Logger(cfg Config) *zerolog.Logger {
	var logger zerolog.Logger
	if cfg.LogFormat == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}

	logger = logger.Level(cfg.LogLevel).With().Timestamp().Str("app", "wee-counter").Logger()
	log.Logger = logger

	return &logger
}
