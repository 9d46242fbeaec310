package orders

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/MUR0612/smart-inventory/internal/kafka"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
	EventOrderDeleted       = "OrderDeleted"
)

const (
	TopicOrderCreated       = "orders.created"
	TopicOrderStatusChanged = "orders.status_changed"
	TopicOrderDeleted       = "orders.deleted"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	OrderID string      `json:"order_id"`
	Total   string      `json:"total"`
	Items   []OrderLine `json:"items"`
}

type StatusChangedPayload struct {
	OrderID string `json:"order_id"`
	From    Status `json:"from"`
	To      Status `json:"to"`
	Notes   string `json:"notes,omitempty"`
}

type OrderDeletedPayload struct {
	OrderID string `json:"order_id"`
	Status  Status `json:"status"`
}

// EventWriter matches kafka.Producer.Publish.
type EventWriter interface {
	Publish(topic string, key, value []byte, headers ...kafka.Header) error
}

// Events publishes order lifecycle envelopes keyed by order id so every
// event of one order lands on the same partition. A nil *Events is a no-op.
type Events struct {
	W        EventWriter
	Producer string
	Log      *zap.Logger
}

func (e *Events) Created(o *Order, at time.Time) {
	e.emit(TopicOrderCreated, EventOrderCreated, o.ID, at, OrderCreatedPayload{
		OrderID: o.ID,
		Total:   o.Total.StringFixed(2),
		Items:   o.Lines,
	})
}

func (e *Events) StatusChanged(o *Order, from Status, note string, at time.Time) {
	e.emit(TopicOrderStatusChanged, EventOrderStatusChanged, o.ID, at, StatusChangedPayload{
		OrderID: o.ID,
		From:    from,
		To:      o.Status,
		Notes:   note,
	})
}

func (e *Events) Deleted(o *Order, at time.Time) {
	e.emit(TopicOrderDeleted, EventOrderDeleted, o.ID, at, OrderDeletedPayload{OrderID: o.ID, Status: o.Status})
}

func (e *Events) emit(topic, typ, orderID string, at time.Time, payload any) {
	if e == nil || e.W == nil {
		return
	}
	env := Envelope{
		EventID:       uuid.NewString(),
		EventType:     typ,
		EventVersion:  1,
		OccurredAt:    at.UTC(),
		Producer:      e.Producer,
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	err := e.W.Publish(topic, []byte(orderID), kafkax.MustMarshal(env),
		kafka.Header{Key: "x-event-type", Value: []byte(typ)})
	if err != nil && e.Log != nil {
		e.Log.Warn("publish order event", zap.String("topic", topic), zap.String("order_id", orderID), zap.Error(err))
	}
}
