package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

func TestNew_ProduccionEscribeJSON(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "info", Output: &buf})

	log.Named("orders").Info().Str("order_id", "o-1").Msg("orden creada")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "la salida en producción debe ser JSON")
	assert.Equal(t, "orden creada", entry["message"])
	assert.Equal(t, "orders", entry["component"])
	assert.Equal(t, "o-1", entry["order_id"])
}

func TestNew_NivelFiltraDebug(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "warn", Output: &buf})

	log.Info().Msg("no debe salir")
	assert.Empty(t, buf.String(), "info no se escribe con nivel warn")
}
