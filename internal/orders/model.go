package orders

import (
	"time"

	"github.com/floracart/storefront/internal/apperr"
	"github.com/floracart/storefront/internal/pricing"
)

type PaymentMethod string

const (
	MethodCOD    PaymentMethod = "cod"
	MethodOnline PaymentMethod = "online"
	MethodWallet PaymentMethod = "wallet"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCOD, MethodOnline, MethodWallet:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Address is snapshotted onto the order at creation time.
type Address struct {
	Type    string `json:"type"` // home | work | other
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

func (a Address) Validate() error {
	switch a.Type {
	case "", "home", "work", "other":
	default:
		return apperr.New(apperr.KindValidation, "invalid address type %q", a.Type)
	}
	for _, f := range []struct{ name, v string }{
		{"name", a.Name}, {"phone", a.Phone}, {"address", a.Address},
		{"city", a.City}, {"state", a.State}, {"pincode", a.Pincode},
	} {
		if f.v == "" {
			return apperr.New(apperr.KindValidation, "shipping address: missing %s", f.name)
		}
	}
	return nil
}

type PaymentInfo struct {
	Method        PaymentMethod `json:"method"`
	Status        PaymentStatus `json:"status"`
	TransactionID string        `json:"transaction_id,omitempty"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
}

type Tracking struct {
	TrackingNumber string     `json:"tracking_number,omitempty"`
	Courier        string     `json:"courier,omitempty"`
	ShippedAt      *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt    *time.Time `json:"delivered_at,omitempty"`
}

// Item is a line frozen at order time; later catalog edits never alter it.
type Item struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	PriceCents int    `json:"price_cents"`
	Qty        int    `json:"qty"`
	Image      string `json:"image,omitempty"`
}

type Order struct {
	ID                 string            `json:"id"`
	UserID             string            `json:"user_id"`
	Number             string            `json:"number"`
	Items              []Item            `json:"items"`
	Address            Address           `json:"shipping_address"`
	Payment            PaymentInfo       `json:"payment"`
	Status             Status            `json:"status"`
	Pricing            pricing.Breakdown `json:"pricing"`
	Tracking           Tracking          `json:"tracking"`
	CustomerNotes      string            `json:"customer_notes,omitempty"`
	AdminNotes         string            `json:"admin_notes,omitempty"`
	CancellationReason string            `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time        `json:"cancelled_at,omitempty"`
	CancelledBy        string            `json:"cancelled_by,omitempty"` // customer | admin | system
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// TotalItems is the summed quantity across lines.
func (o *Order) TotalItems() int {
	n := 0
	for _, it := range o.Items {
		n += it.Qty
	}
	return n
}

// Summary is the condensed shape used by list responses.
type Summary struct {
	ID         string    `json:"id"`
	Number     string    `json:"number"`
	TotalItems int       `json:"total_items"`
	TotalCents int       `json:"total_cents"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

func (o *Order) Summary() Summary {
	return Summary{
		ID:         o.ID,
		Number:     o.Number,
		TotalItems: o.TotalItems(),
		TotalCents: o.Pricing.TotalCents,
		Status:     o.Status,
		CreatedAt:  o.CreatedAt,
	}
}

type Stats struct {
	TotalOrders     int `json:"total_orders"`
	TotalCents      int `json:"total_cents"`
	PendingOrders   int `json:"pending_orders"`
	DeliveredOrders int `json:"delivered_orders"`
	CancelledOrders int `json:"cancelled_orders"`
}
