package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-alerts/pkg/logger"
)

func TestLogger_ProduccionEmiteJSON(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewWithWriter(logger.Config{Env: "production", Level: "info"}, &buf)

	comp := l.Component("monitor")
	comp.Info().Str("bar_id", "bar-1").Msg("chequeo")
	l.Debug().Msg("descartado por nivel")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "monitor", entry["component"])
	assert.Equal(t, "bar-1", entry["bar_id"])
	assert.Equal(t, "chequeo", entry["message"])
}

func TestLogger_NivelDesconocidoUsaInfo(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewWithWriter(logger.Config{Env: "production", Level: "verbose"}, &buf)
	l.Debug().Msg("no")
	l.Info().Msg("si")
	assert.Contains(t, buf.String(), `"si"`)
	assert.NotContains(t, buf.String(), `"no"`)
}
