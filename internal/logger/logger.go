package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is the application logger instance
var Logger zerolog.Logger

// Init initializes the logger with the given level and format. Format
// "json" writes structured lines for log shippers, anything else gets
// the human console writer.
func Init(level, format string) {
	zerolog.SetGlobalLevel(parseLogLevel(level))

	var out zerolog.ConsoleWriter
	if strings.ToLower(format) == "json" {
		Logger = zerolog.New(os.Stdout).With().
			Timestamp().
			Logger()
	} else {
		out = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		Logger = zerolog.New(out).With().
			Timestamp().
			Logger()
	}

	// Set the global logger
	log.Logger = Logger
}

// parseLogLevel parses string log level to zerolog level
func parseLogLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// GetLogger returns the configured logger instance
func GetLogger() zerolog.Logger {
	return Logger
}
