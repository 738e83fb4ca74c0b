package redisx

import "time"

const (
	// Pending charge intent: intent:charge:{intent_id} -> {"user_id","amount_cents"}
	KeyChargeIntent = "intent:charge:%s"

	// Fast-path idempotency for payment confirmation:
	// idem:payment:confirm:{payment_id} -> order_id
	KeyConfirmIdem = "idem:payment:confirm:%s"

	// Cached order status: order_status:{order_id} -> OrderStatusEntry
	KeyOrderStatus = "order_status:%s"

	// Event dedup in consumers: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

// OrderStatusEntry is the cached order-status record. UserID names the
// order's owner so readers can enforce ownership without touching the
// database; entries without it are treated as a cache miss.
type OrderStatusEntry struct {
	Status string `json:"status"`
	UserID string `json:"user_id,omitempty"`
}

var (
	TTLChargeIntent = 30 * time.Minute
	TTLConfirmIdem  = 24 * time.Hour
	TTLStatusCache  = 5 * time.Minute
	TTLDedup        = 48 * time.Hour
)
