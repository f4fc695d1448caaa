package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/ThariniLelwala/EduBloom-sub000/app/config"
)

// New builds the process-wide zerolog logger from the logging config.
func New(cfg config.LoggingConfig) zerolog.Logger {
	var log zerolog.Logger

	if cfg.Pretty {
		output := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		log = zerolog.New(output).With().Timestamp().Logger()
	} else {
		log = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	switch cfg.Level {
	case "debug":
		log = log.Level(zerolog.DebugLevel)
	case "warn":
		log = log.Level(zerolog.WarnLevel)
	case "error":
		log = log.Level(zerolog.ErrorLevel)
	default:
		log = log.Level(zerolog.InfoLevel)
	}

	return log
}
