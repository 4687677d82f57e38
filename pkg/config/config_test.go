package config_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/pkg/config"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := config.FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, 25, cfg.DB.MaxConns)
	assert.Equal(t, 5000, cfg.DB.LockTimeoutMS)
	assert.True(t, decimal.RequireFromString("0.19").Equal(cfg.Orders.TaxRate), "tasa por defecto 19%")
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.True(t, cfg.Telemetry.MetricsEnabled)
	assert.False(t, cfg.Telemetry.OTelEnabled)
	assert.False(t, cfg.Events.Enabled(), "sin KAFKA_BROKERS no se publican eventos")
	assert.Equal(t, "inventory.ledger", cfg.Events.LedgerTopic)
	assert.Equal(t, "./docs/swagger.json", cfg.HTTP.SwaggerFile)
}

func TestFromViper_KafkaBrokersSeparadosPorComa(t *testing.T) {
	v := viper.New()
	v.Set("KAFKA_BROKERS", " kafka-1:9092, ,kafka-2:9092 ")

	cfg, err := config.FromViper(v)
	require.NoError(t, err)

	assert.True(t, cfg.Events.Enabled())
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Events.KafkaBrokers)
}

func TestFromViper_LeeValoresComoTexto(t *testing.T) {
	v := viper.New()
	v.Set("DB_LOCK_TIMEOUT_MS", "250")
	v.Set("ORDER_TAX_RATE", "0.08")
	v.Set("OTEL_ENABLED", "true")
	v.Set("STORAGE_DRIVER", "MEMORY")

	cfg, err := config.FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, 250, cfg.DB.LockTimeoutMS)
	assert.Equal(t, "250ms", cfg.DB.LockTimeout().String())
	assert.Equal(t, "0.08", cfg.Orders.TaxRate.String())
	assert.True(t, cfg.Telemetry.OTelEnabled)
	assert.Equal(t, "memory", cfg.Storage.Driver)
}

func TestFromViper_RechazaValoresInvalidos(t *testing.T) {
	cases := map[string]string{
		"ORDER_TAX_RATE":     "abc",
		"STORAGE_DRIVER":     "sqlite",
		"DB_LOCK_TIMEOUT_MS": "-1",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			v := viper.New()
			v.Set(key, val)
			_, err := config.FromViper(v)
			assert.Error(t, err, "debe rechazar %s=%s", key, val)
		})
	}
}

func TestDSN_EscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/w", DBName: "ledger", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2Fw@db:5432/ledger?sslmode=disable", c.DSN())
	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
