package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("json respects level", func(t *testing.T) {
		buf := new(bytes.Buffer)
		log := New(Config{Level: "warn", Format: "json", Output: buf})

		log.Info().Msg("hidden")
		log.Warn().Str("component", "acceptor").Msg("visible")

		require.NotContains(t, buf.String(), "hidden")
		require.Contains(t, buf.String(), `"component":"acceptor"`)
		require.Contains(t, buf.String(), `"message":"visible"`)
	})

	t.Run("console", func(t *testing.T) {
		buf := new(bytes.Buffer)
		log := New(Config{Level: "info", Format: "console", Output: buf})
		log.Info().Msg("hello")

		require.Contains(t, buf.String(), "hello")
		require.NotContains(t, buf.String(), `"message"`)
	})
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	require.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	require.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
}

func TestTestLogger(t *testing.T) {
	tl := NewTestLogger(t)
	tl.Debug().Str("path", "/api/users").Msg("dispatched")

	tl.AssertContains(t, "/api/users")
	require.False(t, tl.Contains("nothing like that"))
}
