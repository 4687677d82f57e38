package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"

	appinventory "github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/orders"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/kafka"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stock-ledger-api/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
	"github.com/jhoicas/stock-ledger-api/pkg/metrics"
	"github.com/jhoicas/stock-ledger-api/pkg/telemetry"
)

// version se sobreescribe en el build con -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("version", version).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()
	tracer, shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:     cfg.Telemetry.OTelEnabled,
		Endpoint:    cfg.Telemetry.OTelEndpoint,
		Insecure:    cfg.Telemetry.OTelInsecure,
		ServiceName: cfg.Telemetry.ServiceName,
		Version:     version,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("configurar OpenTelemetry")
	}

	var m *metrics.Metrics
	var gatherer prometheus.Gatherer
	if cfg.Telemetry.MetricsEnabled {
		m = metrics.New(prometheus.DefaultRegisterer)
		gatherer = prometheus.DefaultGatherer
	}

	var (
		txRunner appinventory.TxRunner
		repos    repository.TxRepos
		db       httpRouter.Pinger
	)
	switch cfg.Storage.Driver {
	case "memory":
		store := memory.New()
		txRunner, repos = store, store.Repos()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB, tracer)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner = postgres.NewTxRunner(pool, cfg.DB.LockTimeout())
		repos = postgres.Repos(pool)
		db = pool
	}

	ledger := appinventory.NewStockLedger(txRunner, repos.Products, repos.Transactions, log)
	if cfg.Events.Enabled() {
		publisher, err := kafka.NewLedgerPublisher(kafka.Config{
			Brokers:     cfg.Events.KafkaBrokers,
			Topic:       cfg.Events.LedgerTopic,
			ServiceName: cfg.Telemetry.ServiceName,
		}, otel.GetTracerProvider())
		if err != nil {
			log.Fatal().Err(err).Msg("configurar publicador Kafka")
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Error().Err(err).Msg("cerrar publicador Kafka")
			}
		}()
		ledger.SetPublisher(publisher)
		log.Info().Strs("brokers", cfg.Events.KafkaBrokers).Str("topic", cfg.Events.LedgerTopic).Msg("publicación de libro habilitada")
	}
	swaggerFile := cfg.HTTP.SwaggerFile
	if swaggerFile != "" {
		if _, err := os.Stat(swaggerFile); err != nil {
			log.Warn().Err(err).Str("file", swaggerFile).Msg("documento OpenAPI no disponible, /docs desactivado")
			swaggerFile = ""
		}
	}

	taxRate := cfg.Orders.TaxRate
	orderDeps := orders.Deps{
		TxRunner: txRunner,
		Ledger:   ledger,
		TaxRate:  &taxRate,
		Log:      log,
		Metrics:  m,
		Tracer:   tracer,
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(log.Named("http")),
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		SalesOrders:    orders.NewSalesOrderUseCase(orderDeps),
		PurchaseOrders: orders.NewPurchaseOrderUseCase(orderDeps),
		Ledger:         ledger,
		JWTSecret:      cfg.JWT.Secret,
		ServiceName:    cfg.App.Name,
		DB:             db,
		Metrics:        m,
		Gatherer:       gatherer,
		Tracer:         tracer,
		SwaggerFile:    swaggerFile,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado de OpenTelemetry")
	}

	log.Info().Msg("aplicación detenida")
}
