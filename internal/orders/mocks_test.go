package orders

import (
	"context"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/floracart/storefront/internal/cart"
)

// mockRepo implements Repo in memory for service tests.
type mockRepo struct {
	orders map[string]*Order

	// FailNumbers makes Create return ErrNumberTaken for these numbers,
	// simulating a concurrent winner.
	FailNumbers map[string]bool
	CreateErr   error
	createCalls int
	released    []string
}

func newMockRepo() *mockRepo {
	return &mockRepo{orders: map[string]*Order{}, FailNumbers: map[string]bool{}}
}

func (m *mockRepo) CountCreatedBetween(_ context.Context, from, to time.Time) (int, error) {
	n := 0
	for _, o := range m.orders {
		if !o.CreatedAt.Before(from) && o.CreatedAt.Before(to) {
			n++
		}
	}
	return n, nil
}

func (m *mockRepo) Create(_ context.Context, o *Order) error {
	m.createCalls++
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if m.FailNumbers[o.Number] {
		delete(m.FailNumbers, o.Number)
		return ErrNumberTaken
	}
	for _, ex := range m.orders {
		if ex.Number == o.Number {
			return ErrNumberTaken
		}
		if o.Payment.TransactionID != "" && ex.Payment.TransactionID == o.Payment.TransactionID {
			return ErrDuplicateTransaction
		}
	}
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *mockRepo) Get(_ context.Context, id string) (*Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (m *mockRepo) FindByTransactionID(_ context.Context, txnID string) (*Order, error) {
	for _, o := range m.orders {
		if o.Payment.TransactionID == txnID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockRepo) List(_ context.Context, userID string, f ListFilter) ([]Order, int, error) {
	var out []Order
	for _, o := range m.orders {
		if o.UserID != userID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, len(out), nil
}

func (m *mockRepo) Stats(_ context.Context, userID string) (Stats, error) {
	var s Stats
	for _, o := range m.orders {
		if o.UserID != userID {
			continue
		}
		s.TotalOrders++
		s.TotalCents += o.Pricing.TotalCents
		switch o.Status {
		case StatusPending:
			s.PendingOrders++
		case StatusDelivered:
			s.DeliveredOrders++
		case StatusCancelled:
			s.CancelledOrders++
		}
	}
	return s, nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, o *Order, releaseStock bool) error {
	cp := *o
	m.orders[o.ID] = &cp
	if releaseStock {
		m.released = append(m.released, o.ID)
	}
	return nil
}

// mockCarts implements Carts.
type mockCarts struct {
	view    cart.View
	getErr  error
	cleared bool
}

func (m *mockCarts) Get(_ context.Context, _ string) (cart.View, error) {
	return m.view, m.getErr
}

func (m *mockCarts) Clear(_ context.Context, _ string) error {
	m.cleared = true
	return nil
}

// mockPublisher records published envelopes.
type mockPublisher struct {
	messages [][]byte
}

func (m *mockPublisher) Publish(_, value []byte, _ ...kafkago.Header) {
	m.messages = append(m.messages, value)
}
