package main

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// newLogger builds the process logger. Unknown levels fall back to info.
func newLogger(level, format string, w io.Writer) zerolog.Logger {
	if strings.EqualFold(format, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(parseLogLevel(level)).With().Timestamp().Logger()
}

func parseLogLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "disabled", "none":
		return zerolog.Disabled
	case "warning":
		return zerolog.WarnLevel
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// httpLogLevel maps the process level onto the per-request default used by
// the HTTP layer.
func httpLogLevel(l zerolog.Level) string {
	switch {
	case l == zerolog.Disabled:
		return "off"
	case l <= zerolog.DebugLevel:
		return "debug"
	case l <= zerolog.InfoLevel:
		return "info"
	default:
		return "error"
	}
}
