package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvironment(t *testing.T) {
	assert.Equal(t, Production, ParseEnvironment("production"))
	assert.Equal(t, Testing, ParseEnvironment("testing"))
	assert.Equal(t, Development, ParseEnvironment("staging"))
	assert.Equal(t, Development, ParseEnvironment(""))
}

func TestInit_ProductionWritesJSONAtInfo(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Environment: Production, Output: &buf})
	t.Cleanup(func() { Init() })

	Debug().Msg("hidden")
	Info().Str("user_id", "alice").Msg("order placed")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "alice", entry["user_id"])
	assert.Equal(t, "order placed", entry["message"])
}

func TestInit_TestingOnlyWarnings(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Environment: Testing, Output: &buf})
	t.Cleanup(func() { Init() })

	Info().Msg("quiet")
	assert.Zero(t, buf.Len())

	Warn().Msg("loud")
	assert.Contains(t, buf.String(), "loud")
}
