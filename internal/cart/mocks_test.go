package cart

import (
	"context"
	"sync"
	"time"

	"github.com/floracart/storefront/internal/apperr"
	"github.com/floracart/storefront/internal/catalog"
)

// memStore implements Store in memory for tests. Methods hold a mutex
// so concurrent merges behave like the SQL upsert.
type memStore struct {
	mu    sync.Mutex
	carts map[string][]Item
}

func newMemStore() *memStore {
	return &memStore{carts: map[string][]Item{}}
}

func (m *memStore) EnsureCart(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.carts[userID]; !ok {
		m.carts[userID] = []Item{}
	}
	return nil
}

func (m *memStore) Items(_ context.Context, userID string) ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Item, len(m.carts[userID]))
	copy(out, m.carts[userID])
	return out, nil
}

func (m *memStore) MergeItem(_ context.Context, userID, productID string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.carts[userID]
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Qty += qty
			if items[i].Qty > MaxQtyPerItem {
				items[i].Qty = MaxQtyPerItem
			}
			return nil
		}
	}
	if qty > MaxQtyPerItem {
		qty = MaxQtyPerItem
	}
	m.carts[userID] = append(items, Item{ProductID: productID, Qty: qty, AddedAt: time.Now()})
	return nil
}

func (m *memStore) SetQty(_ context.Context, userID, productID string, qty int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.carts[userID]
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Qty = qty
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) RemoveItem(_ context.Context, userID, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.carts[userID]
	out := items[:0]
	for _, it := range items {
		if it.ProductID != productID {
			out = append(out, it)
		}
	}
	m.carts[userID] = out
	return nil
}

func (m *memStore) RemoveItems(ctx context.Context, userID string, productIDs []string) error {
	for _, id := range productIDs {
		if err := m.RemoveItem(ctx, userID, id); err != nil {
			return err
		}
	}
	return nil
}

func (m *memStore) Clear(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[userID] = []Item{}
	return nil
}

// memProducts implements Products for tests.
type memProducts struct {
	products map[string]catalog.Product
}

func (m *memProducts) Get(_ context.Context, id string) (catalog.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return catalog.Product{}, apperr.New(apperr.KindNotFound, "product %s not found", id)
	}
	return p, nil
}

func (m *memProducts) GetMany(_ context.Context, ids []string) (map[string]catalog.Product, error) {
	out := map[string]catalog.Product{}
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}
