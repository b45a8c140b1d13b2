package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	log, closer, err := New(Options{})
	require.NoError(t, err)
	assert.Nil(t, closer)
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
}

func TestNewLevelParsing(t *testing.T) {
	log, _, err := New(Options{Level: "DEBUG"})
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, log.GetLevel())

	_, _, err = New(Options{Level: "shouting"})
	assert.Error(t, err)
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, _, err := New(Options{Format: "xml"})
	assert.Error(t, err)
}

func TestNewFileOutputJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	log, closer, err := New(Options{Format: FormatJSON, Output: path})
	require.NoError(t, err)
	require.NotNil(t, closer)

	log.Info().Str("event", "startup").Msg("listening")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "listening", entry["message"])
	assert.Equal(t, "startup", entry["event"])
	assert.Equal(t, "info", entry["level"])
}

func TestNewFileOutputUnwritable(t *testing.T) {
	_, _, err := New(Options{Output: filepath.Join(t.TempDir(), "missing", "server.log")})
	assert.Error(t, err)
}
