package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/pkg/telemetry"
)

func TestSetup_DeshabilitadoDevuelveNoop(t *testing.T) {
	tracer, shutdown, err := telemetry.Setup(context.Background(), telemetry.Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, tracer)

	_, span := tracer.Start(context.Background(), "op")
	assert.False(t, span.SpanContext().IsValid(), "un span noop no tiene contexto válido")
	span.End()

	assert.NoError(t, shutdown(context.Background()))
}
