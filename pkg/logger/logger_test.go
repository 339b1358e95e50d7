package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m), buf.String())
	return m
}

func TestNew_IncluyeAppEnCadaLinea(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{App: "stock-ledger", Env: "production", Level: "info", Output: &buf})

	log.Named("http").ForAccount("loc-a", "item-harina").Info().Msg("movimiento")

	line := decodeLine(t, &buf)
	assert.Equal(t, "stock-ledger", line["app"])
	assert.Equal(t, "http", line["component"])
	assert.Equal(t, "loc-a", line["location_id"])
	assert.Equal(t, "item-harina", line["item_id"])
	assert.Equal(t, "info", line["level"])
	assert.Contains(t, line, "time")
}

func TestNew_SinAppNoAgregaCampo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Output: &buf})

	log.Info().Msg("hola")

	assert.NotContains(t, decodeLine(t, &buf), "app")
}

func TestNew_RespetaNivel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "warn", Output: &buf})

	log.Info().Msg("descartado")
	assert.Zero(t, buf.Len())

	log.Warn().Msg("visible")
	assert.Equal(t, "warn", decodeLine(t, &buf)["level"])
}

func TestNop_DescartaTodo(t *testing.T) {
	assert.NotPanics(t, func() {
		logger.Nop().ForAccount("loc-a", "item").Error().Msg("nada")
	})
}
