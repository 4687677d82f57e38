// migrate aplica los scripts SQL embebidos que aún no figuran en schema_migrations.
//
// Uso: go run ./cmd/migrate
// Lee la conexión de DATABASE_URL o DB_HOST/DB_PORT/... igual que la API.
package main

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level}).Named("migrate")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	applied, err := postgres.Migrate(ctx, pool, log)
	if err != nil {
		pool.Close()
		log.Fatal().Err(err).Int("applied", applied).Msg("migración interrumpida")
	}
	log.Info().Int("applied", applied).Msg("migraciones al día")
}
