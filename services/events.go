package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// Event types
const (
	EventOrderCreated       = "order.created"
	EventOrderUpdated       = "order.updated"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderMoved         = "order.moved"
	EventOrderCancelled     = "order.cancelled"
	EventOrderSettled       = "order.settled"
	EventPaymentRefunded    = "payment.refunded"
	EventTableStatusChanged = "table.status_changed"
)

// Event is the JSON payload broadcast to the floor and written to Kafka.
type Event struct {
	Type        string           `json:"type"`
	OrderID     string           `json:"orderId,omitempty"`
	OrderNumber string           `json:"orderNumber,omitempty"`
	TableID     string           `json:"tableId,omitempty"`
	TableNumber string           `json:"tableNumber,omitempty"`
	Status      string           `json:"status,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Method      string           `json:"paymentMethod,omitempty"`
	Timestamp   time.Time        `json:"timestamp"`
}

func (e Event) key() string {
	if e.OrderID != "" {
		return e.OrderID
	}
	return e.TableID
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// MultiPublisher fans an event out to every publisher and joins the errors.
type MultiPublisher []Publisher

func (m MultiPublisher) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type KafkaPublisher struct {
	Writer *kafka.Writer
}

func NewKafkaWriter(broker, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.key()),
		Value: payload,
	})
}
