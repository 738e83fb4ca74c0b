package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderCancelled     = "OrderCancelled"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	OrderID    string `json:"order_id"`
	Number     string `json:"number"`
	UserID     string `json:"user_id"`
	Status     Status `json:"status"`
	TotalCents int    `json:"total_cents"`
}

type OrderCancelledPayload struct {
	OrderID string `json:"order_id"`
	Number  string `json:"number"`
	UserID  string `json:"user_id"`
	Reason  string `json:"reason"`
	By      string `json:"by"`
}

type OrderStatusChangedPayload struct {
	OrderID string `json:"order_id"`
	Number  string `json:"number"`
	UserID  string `json:"user_id"`
	From    Status `json:"from"`
	To      Status `json:"to"`
}
