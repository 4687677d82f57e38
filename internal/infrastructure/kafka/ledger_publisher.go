package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	otelkafka "github.com/Trendyol/otel-kafka-konsumer"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

var _ inventory.LedgerPublisher = (*LedgerPublisher)(nil)

// Producer escritor de mensajes; otelkafka.Writer lo implementa propagando el contexto de traza en headers.
type Producer interface {
	WriteMessage(ctx context.Context, msg kafka.Message) error
	Close() error
}

// Config destino de las entradas del libro.
type Config struct {
	Brokers     []string
	Topic       string
	ServiceName string
}

// LedgerPublisher publica cada entrada confirmada como un mensaje JSON con clave product_id,
// así los consumidores reciben los movimientos de un mismo producto en orden.
type LedgerPublisher struct {
	producer Producer
}

// NewLedgerPublisher crea el writer instrumentado con OpenTelemetry.
func NewLedgerPublisher(cfg Config, tp trace.TracerProvider) (*LedgerPublisher, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		return nil, errors.New("kafka: brokers y topic son obligatorios")
	}
	base := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
		RequiredAcks: kafka.RequireAll,
	}
	writer, err := otelkafka.NewWriter(base,
		otelkafka.WithTracerProvider(tp),
		otelkafka.WithPropagator(propagation.TraceContext{}),
		otelkafka.WithAttributes(
			[]attribute.KeyValue{
				semconv.MessagingDestinationNameKey.String(cfg.Topic),
				attribute.String("messaging.kafka.client_id", cfg.ServiceName),
			},
		),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka: crear writer: %w", err)
	}
	return NewLedgerPublisherWithProducer(writer), nil
}

// NewLedgerPublisherWithProducer usa un productor ya construido (tests u otra instrumentación).
func NewLedgerPublisherWithProducer(p Producer) *LedgerPublisher {
	return &LedgerPublisher{producer: p}
}

// PublishLedger envía las entradas en el orden recibido; se detiene en el primer error.
func (p *LedgerPublisher) PublishLedger(ctx context.Context, entries []*entity.InventoryTransaction) error {
	for _, e := range entries {
		msg, err := ledgerMessage(e)
		if err != nil {
			return err
		}
		if err := p.producer.WriteMessage(ctx, msg); err != nil {
			return fmt.Errorf("kafka: publicar entrada %s: %w", e.ID, err)
		}
	}
	return nil
}

// Close libera el writer.
func (p *LedgerPublisher) Close() error {
	return p.producer.Close()
}

func ledgerMessage(e *entity.InventoryTransaction) (kafka.Message, error) {
	payload, err := json.Marshal(inventory.NewLedgerEvent(e))
	if err != nil {
		return kafka.Message{}, fmt.Errorf("kafka: serializar entrada %s: %w", e.ID, err)
	}
	return kafka.Message{
		Key:   []byte(e.ProductID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("inventory.ledger_entry")},
			{Key: "transaction_type", Value: []byte(e.Type)},
		},
	}, nil
}
