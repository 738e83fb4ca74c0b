package payment

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/floracart/storefront/internal/apperr"
	"github.com/floracart/storefront/internal/cart"
	"github.com/floracart/storefront/internal/orders"
)

// mockGateway implements Gateway.
type mockGateway struct {
	intentID string
	err      error
	calls    int
	amounts  []int
}

func (m *mockGateway) CreateIntent(_ context.Context, amountCents int, _ string) (string, error) {
	m.calls++
	m.amounts = append(m.amounts, amountCents)
	return m.intentID, m.err
}

func (m *mockGateway) KeyID() string { return "key_test" }

// mockCarts implements Carts.
type mockCarts struct {
	view cart.View
	err  error
}

func (m *mockCarts) Get(_ context.Context, _ string) (cart.View, error) {
	return m.view, m.err
}

// mockOrders implements Orders, recording orders by transaction id. The
// mutex makes the transaction-id uniqueness behave like the database
// constraint under concurrent confirmations.
type mockOrders struct {
	mu          sync.Mutex
	byTxn       map[string]*orders.Order
	createErr   error
	createCalls int
}

func newMockOrders() *mockOrders {
	return &mockOrders{byTxn: map[string]*orders.Order{}}
}

func (m *mockOrders) CreatePaid(_ context.Context, userID string, addr orders.Address, txnID string) (*orders.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.createErr != nil {
		return nil, m.createErr
	}
	if _, ok := m.byTxn[txnID]; ok {
		return nil, apperr.Wrap(apperr.KindConflict, errors.New("duplicate transaction"), "payment already recorded")
	}
	now := time.Now()
	o := &orders.Order{
		ID:     "order-" + txnID,
		UserID: userID,
		Status: orders.StatusProcessing,
		Payment: orders.PaymentInfo{
			Method: orders.MethodOnline, Status: orders.PaymentCompleted,
			TransactionID: txnID, PaidAt: &now,
		},
		Address: addr,
	}
	m.byTxn[txnID] = o
	return o, nil
}

func (m *mockOrders) FindByTransactionID(_ context.Context, txnID string) (*orders.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byTxn[txnID], nil
}

// racingOrders simulates a duplicate confirmation that misses the lookup
// but loses on the unique transaction constraint: the first Find returns
// nothing, CreatePaid conflicts, later Finds see the winner.
type racingOrders struct {
	inner  *mockOrders
	winner *orders.Order
	looked bool
}

func (r *racingOrders) FindByTransactionID(ctx context.Context, txnID string) (*orders.Order, error) {
	if !r.looked {
		r.looked = true
		return nil, nil
	}
	return r.inner.FindByTransactionID(ctx, txnID)
}

func (r *racingOrders) CreatePaid(ctx context.Context, userID string, addr orders.Address, txnID string) (*orders.Order, error) {
	return r.inner.CreatePaid(ctx, userID, addr, txnID)
}
