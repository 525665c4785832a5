package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: DebugLevel, Output: &buf})
	t.Cleanup(func() { Configure(Config{Level: InfoLevel}) })

	Info().Int64("sessionID", 7).Msg("usage computed")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "usage computed", line["message"])
	assert.Equal(t, "swimdesk", line["service"])
	assert.EqualValues(t, 7, line["sessionID"])
}

func TestConfigure_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: WarnLevel, Output: &buf})
	t.Cleanup(func() { Configure(Config{Level: InfoLevel}) })

	Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestConfigFromStrings(t *testing.T) {
	cfg := ConfigFromStrings(" DEBUG ", "text")
	assert.Equal(t, DebugLevel, cfg.Level)
	assert.True(t, cfg.Pretty)

	cfg = ConfigFromStrings("info", "json")
	assert.False(t, cfg.Pretty)
	assert.Equal(t, InfoLevel.zerologLevel(), LogLevel("bogus").zerologLevel())
}
