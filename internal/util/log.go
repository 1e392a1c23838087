package util

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// NewLogger builds a zerolog logger writing to stderr so diagnostics never
// mix with the JSON result emitted on stdout.
func NewLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger().Level(lvl)
}
