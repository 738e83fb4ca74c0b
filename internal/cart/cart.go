// Package cart manages the per-user staging area for intended purchases.
// One cart per user, at most one entry per product, quantities 1..10.
package cart

import (
	"context"
	"time"

	"github.com/floracart/storefront/internal/catalog"
)

// MaxQtyPerItem caps every cart entry.
const MaxQtyPerItem = 10

type Item struct {
	ProductID string    `json:"product_id"`
	Qty       int       `json:"qty"`
	AddedAt   time.Time `json:"added_at"`
}

// ResolvedItem pairs a cart entry with its current product snapshot.
type ResolvedItem struct {
	Product catalog.Product `json:"product"`
	Qty     int             `json:"qty"`
	AddedAt time.Time       `json:"added_at"`
}

type View struct {
	UserID     string         `json:"user_id"`
	Items      []ResolvedItem `json:"items"`
	TotalItems int            `json:"total_items"`
	TotalCents int            `json:"total_cents"`
}

// Store is the persistence contract for carts. The pgx implementation
// merges concurrent adds with an upsert; mocks stand in for tests.
type Store interface {
	// EnsureCart creates the user's cart row on first access.
	EnsureCart(ctx context.Context, userID string) error
	Items(ctx context.Context, userID string) ([]Item, error)
	// MergeItem adds qty to an existing entry (capped at MaxQtyPerItem)
	// or inserts a new one.
	MergeItem(ctx context.Context, userID, productID string, qty int) error
	// SetQty overwrites an entry's quantity. Returns false when the
	// entry does not exist.
	SetQty(ctx context.Context, userID, productID string, qty int) (bool, error)
	RemoveItem(ctx context.Context, userID, productID string) error
	RemoveItems(ctx context.Context, userID string, productIDs []string) error
	Clear(ctx context.Context, userID string) error
}

// Products is the slice of the catalog the cart needs.
type Products interface {
	Get(ctx context.Context, id string) (catalog.Product, error)
	GetMany(ctx context.Context, ids []string) (map[string]catalog.Product, error)
}
