package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetOutputAndLevel(t *testing.T) {
	defer SetOutput(os.Stderr)

	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(zerolog.WarnLevel)

	Log.Info().Msg("dropped")
	assert.Equal(t, 0, buf.Len())

	Log.Warn().Int("components", 2).Msg("kept")

	var line map[string]any
	require.Nil(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "kept", line["message"])
	assert.Equal(t, "pls", line["component"])
	assert.Equal(t, 2.0, line["components"])

	// level survives a new output
	var other bytes.Buffer
	SetOutput(&other)
	assert.Equal(t, zerolog.WarnLevel, Log.GetLevel())
	SetLevel(zerolog.InfoLevel)
}

func TestParseLevel(t *testing.T) {
	testData := map[string]struct {
		expected zerolog.Level
		hasErr   bool
	}{
		"":        {zerolog.InfoLevel, false},
		"debug":   {zerolog.DebugLevel, false},
		"warn":    {zerolog.WarnLevel, false},
		"verbose": {zerolog.NoLevel, true},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			lvl, err := ParseLevel(name)
			if td.hasErr {
				assert.NotNil(t, err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, lvl)
		})
	}
}
