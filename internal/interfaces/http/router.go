package http

import (
	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/orders"
	"github.com/jhoicas/stock-ledger-api/pkg/metrics"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	SalesOrders    *orders.SalesOrderUseCase
	PurchaseOrders *orders.PurchaseOrderUseCase
	Ledger         *inventory.StockLedger
	JWTSecret      string
	ServiceName    string
	DB             Pinger              // nil = /health sin chequeo de BD
	Metrics        *metrics.Metrics    // nil = sin métricas HTTP
	Gatherer       prometheus.Gatherer // nil = sin /metrics
	Tracer         trace.Tracer        // nil = sin spans HTTP
	SwaggerFile    string              // "" = sin /docs
}

// Router registra middlewares de observabilidad y las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Tracer != nil {
		app.Use(TracingMiddleware(deps.Tracer))
	}
	if deps.Metrics != nil {
		app.Use(MetricsMiddleware(deps.Metrics))
	}

	// Swagger UI: http://localhost:<port>/docs
	if deps.SwaggerFile != "" {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: deps.SwaggerFile,
			Path:     "docs",
			Title:    "Stock Ledger API",
		}))
	}

	app.Get("/health", NewHealthHandler(deps.ServiceName, deps.DB).Check)
	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Sales orders
	sales := protected.Group("/sales-orders")
	salesHandler := NewSalesOrderHandler(deps.SalesOrders)
	sales.Post("/", salesHandler.Create)
	sales.Get("/:id", salesHandler.Get)
	sales.Put("/:id", salesHandler.Update)
	sales.Delete("/:id", salesHandler.Delete)

	// Purchase orders
	purchases := protected.Group("/purchase-orders")
	purchaseHandler := NewPurchaseOrderHandler(deps.PurchaseOrders)
	purchases.Post("/", purchaseHandler.Create)
	purchases.Get("/:id", purchaseHandler.Get)
	purchases.Put("/:id", purchaseHandler.Update)
	purchases.Delete("/:id", purchaseHandler.Delete)

	// Inventory ledger; los ajustes manuales quedan para admin y bodeguero
	inventoryHandler := NewInventoryHandler(deps.Ledger)
	invGroup := protected.Group("/inventory")
	invGroup.Post("/adjustments", RequireRole(RoleAdmin, RoleBodeguero), inventoryHandler.Adjust)
	invGroup.Get("/transactions", inventoryHandler.ListTransactions)
	protected.Get("/products/:id/transactions", inventoryHandler.ProductTransactions)
	protected.Get("/products/:id/availability", inventoryHandler.Availability)
}
