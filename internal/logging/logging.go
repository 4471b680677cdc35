package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ParseLevel converts a string level into zerolog.Level with a safe default
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
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

// SetupConsole sends the global logger to w in human readable form.
func SetupConsole(level string, w io.Writer) {
	zerolog.SetGlobalLevel(ParseLevel(level))
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}).
		With().Timestamp().Logger()
}

// SetupFile sends the global logger to a JSON log file. The terminal page
// owns stdout, so the chat UI logs here. The returned closer flushes it.
func SetupFile(level, path string) (io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create log directory")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open log file %s", path)
	}
	zerolog.SetGlobalLevel(ParseLevel(level))
	log.Logger = zerolog.New(f).With().Timestamp().Logger()
	return f, nil
}
