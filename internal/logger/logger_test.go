package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"debug":   zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"ERROR":   zerolog.ErrorLevel,
		" off ":   zerolog.Disabled,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
	}

	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "warn", Format: "json", Component: "importer", Writer: &buf})

	l.Info().Msg("dropped")
	l.Warn().Str("address", "3f49624084b67849c7b4e805c5988c21a430f9d9").Msg("skipped")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "importer", entry["component"])
	assert.Equal(t, "skipped", entry["message"])
	assert.Equal(t, "3f49624084b67849c7b4e805c5988c21a430f9d9", entry["address"])
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "debug", Format: "console", NoColor: true, Writer: &buf})

	l.Debug().Str("k", "v").Msg("console-msg")

	out := buf.String()
	assert.Contains(t, out, "console-msg")
	assert.Contains(t, out, "k=v")
}

func TestGetAndNamed(t *testing.T) {
	assert.NotNil(t, Get())
	assert.Same(t, Get(), Named(""))
	assert.NotSame(t, Get(), Named("scheduler"))
}

func TestNop(t *testing.T) {
	assert.Equal(t, zerolog.Disabled, Nop().GetLevel())
}
