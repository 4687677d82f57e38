package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/pkg/metrics"
)

func TestMetrics_CuentaEntradasYOperaciones(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.LedgerEntry("sale", 2)
	m.LedgerEntry("sale", 1)
	m.LedgerEntry("purchase", 0)
	m.OrderOperation("sales", "create", metrics.OutcomeOK, 10*time.Millisecond)
	m.OrderOperation("sales", "create", metrics.OutcomeRejected, time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "inventory_ledger_entries_total")
	assert.Contains(t, names, "order_operations_total")
	assert.Contains(t, names, "order_operation_duration_seconds")

	n, err := testutil.GatherAndCount(reg, "inventory_ledger_entries_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "n cero no crea serie para purchase")

	n, err = testutil.GatherAndCount(reg, "order_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMetrics_NilNoFalla(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.LedgerEntry("sale", 1)
		m.OrderOperation("sales", "create", metrics.OutcomeOK, time.Second)
		m.HTTPRequest("GET", "/health", 200, time.Millisecond)
	})
}
