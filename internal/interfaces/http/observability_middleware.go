package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/stock-ledger-api/pkg/metrics"
)

// MetricsMiddleware registra conteo y latencia por método, ruta registrada y status.
// Usa la ruta de Fiber (/api/sales-orders/:id) para no explotar la cardinalidad.
func MetricsMiddleware(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		m.HTTPRequest(c.Method(), c.Route().Path, responseStatus(c, err), time.Since(start))
		return err
	}
}

// TracingMiddleware abre un span de servidor por petición, continuando el contexto W3C entrante,
// y lo deja en c.UserContext() para que los casos de uso cuelguen sus spans de él.
func TracingMiddleware(tracer trace.Tracer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		carrier := propagation.HeaderCarrier(c.GetReqHeaders())
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), carrier)
		ctx, span := tracer.Start(ctx, c.Method()+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(semconv.HTTPRequestMethodKey.String(c.Method())),
		)
		defer span.End()
		c.SetUserContext(ctx)

		err := c.Next()
		status := responseStatus(c, err)
		route := c.Route().Path
		span.SetName(c.Method() + " " + route)
		span.SetAttributes(semconv.HTTPRoute(route), semconv.HTTPResponseStatusCode(status))
		if status >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, "")
		}
		return err
	}
}

// responseStatus devuelve el status final; si el handler devolvió error lo resuelve el ErrorHandler después.
func responseStatus(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	if fe, ok := err.(*fiber.Error); ok {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
