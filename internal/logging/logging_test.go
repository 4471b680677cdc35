package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		" info ":  zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestSetupConsole(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)
	var buf bytes.Buffer
	SetupConsole("warn", &buf)

	log.Info().Msg("hidden")
	log.Warn().Str("status", "degraded").Msg("backend reported unhealthy status")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "backend reported unhealthy status")
	assert.Contains(t, out, "degraded")
}

func TestSetupFile(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)
	path := filepath.Join(t.TempDir(), "logs", "medibot.log")

	closer, err := SetupFile("debug", path)
	require.NoError(t, err)
	log.Debug().Msg("written to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"written to file"`)
}
