// Package logging builds the zerolog logger the commands share.
package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New builds a console logger on stderr so command output on stdout
// stays machine-readable.
func New(level string) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(level))
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"}
	return zerolog.New(output).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}
