package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New builds the process logger. TJR_ENV=dev selects a human-readable
// console writer; anything else emits JSON lines. TJR_DEBUG=1 lowers the
// level to debug.
func New() zerolog.Logger {
	level := zerolog.InfoLevel
	if os.Getenv("TJR_DEBUG") == "1" {
		level = zerolog.DebugLevel
	}

	var logger zerolog.Logger
	if os.Getenv("TJR_ENV") == "dev" {
		output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		logger = zerolog.New(output).Level(level).With().Timestamp().Logger()
	} else {
		zerolog.TimeFieldFormat = time.RFC3339
		logger = zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	}
	log.Logger = logger
	return logger
}
