package httpx

import (
	"context"
	"time"

	"github.com/floracart/storefront/internal/apperr"
	"github.com/floracart/storefront/internal/cart"
	"github.com/floracart/storefront/internal/catalog"
	"github.com/floracart/storefront/internal/orders"
)

type memStore struct {
	items map[string][]cart.Item
}

func newMemStore() *memStore { return &memStore{items: map[string][]cart.Item{}} }

func (m *memStore) EnsureCart(ctx context.Context, userID string) error {
	if _, ok := m.items[userID]; !ok {
		m.items[userID] = nil
	}
	return nil
}

func (m *memStore) Items(ctx context.Context, userID string) ([]cart.Item, error) {
	return m.items[userID], nil
}

func (m *memStore) MergeItem(ctx context.Context, userID, productID string, qty int) error {
	for i, it := range m.items[userID] {
		if it.ProductID == productID {
			q := it.Qty + qty
			if q > cart.MaxQtyPerItem {
				q = cart.MaxQtyPerItem
			}
			m.items[userID][i].Qty = q
			return nil
		}
	}
	m.items[userID] = append(m.items[userID], cart.Item{ProductID: productID, Qty: qty, AddedAt: time.Now()})
	return nil
}

func (m *memStore) SetQty(ctx context.Context, userID, productID string, qty int) (bool, error) {
	for i, it := range m.items[userID] {
		if it.ProductID == productID {
			m.items[userID][i].Qty = qty
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) RemoveItem(ctx context.Context, userID, productID string) error {
	out := m.items[userID][:0]
	for _, it := range m.items[userID] {
		if it.ProductID != productID {
			out = append(out, it)
		}
	}
	m.items[userID] = out
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

func (m *memStore) Clear(ctx context.Context, userID string) error {
	m.items[userID] = nil
	return nil
}

type memProducts struct {
	products map[string]catalog.Product
}

func (m *memProducts) Get(ctx context.Context, id string) (catalog.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return catalog.Product{}, apperr.New(apperr.KindNotFound, "product %s not found", id)
	}
	return p, nil
}

func (m *memProducts) GetMany(ctx context.Context, ids []string) (map[string]catalog.Product, error) {
	out := map[string]catalog.Product{}
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type memRepo struct {
	orders map[string]*orders.Order
	seq    int
}

func newMemRepo() *memRepo { return &memRepo{orders: map[string]*orders.Order{}} }

func (m *memRepo) CountCreatedBetween(ctx context.Context, from, to time.Time) (int, error) {
	return m.seq, nil
}

func (m *memRepo) Create(ctx context.Context, o *orders.Order) error {
	cp := *o
	m.orders[o.ID] = &cp
	m.seq++
	return nil
}

func (m *memRepo) Get(ctx context.Context, id string) (*orders.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (m *memRepo) FindByTransactionID(ctx context.Context, txnID string) (*orders.Order, error) {
	for _, o := range m.orders {
		if o.Payment.TransactionID == txnID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memRepo) List(ctx context.Context, userID string, f orders.ListFilter) ([]orders.Order, int, error) {
	var out []orders.Order
	for _, o := range m.orders {
		if o.UserID == userID && (f.Status == "" || o.Status == f.Status) {
			out = append(out, *o)
		}
	}
	return out, len(out), nil
}

func (m *memRepo) Stats(ctx context.Context, userID string) (orders.Stats, error) {
	st := orders.Stats{}
	for _, o := range m.orders {
		if o.UserID != userID {
			continue
		}
		st.TotalOrders++
		st.TotalCents += o.Pricing.TotalCents
	}
	return st, nil
}

func (m *memRepo) UpdateStatus(ctx context.Context, o *orders.Order, releaseStock bool) error {
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

type fakeGateway struct{ intents int }

func (g *fakeGateway) CreateIntent(ctx context.Context, amountCents int, currency string) (string, error) {
	g.intents++
	return "intent_1", nil
}

func (g *fakeGateway) KeyID() string { return "key_test" }
