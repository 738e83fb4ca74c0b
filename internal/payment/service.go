package payment

import (
	"context"
	"fmt"

	"github.com/floracart/storefront/internal/apperr"
	"github.com/floracart/storefront/internal/cart"
	"github.com/floracart/storefront/internal/orders"
	"github.com/floracart/storefront/internal/redisx"
)

// Carts is the slice of the cart manager this path reads.
type Carts interface {
	Get(ctx context.Context, userID string) (cart.View, error)
}

// Orders is the slice of the order lifecycle this path drives.
type Orders interface {
	CreatePaid(ctx context.Context, userID string, addr orders.Address, transactionID string) (*orders.Order, error)
	FindByTransactionID(ctx context.Context, txnID string) (*orders.Order, error)
}

type Service struct {
	Gateway  Gateway
	Intents  *Intents
	Carts    Carts
	Orders   Orders
	Secret   string
	Currency string
}

// InitiateCharge opens a charge intent for the cart's current payable
// amount. No order exists yet; the cart stays as it is until the
// confirmation arrives.
func (s *Service) InitiateCharge(ctx context.Context, userID string) (Intent, error) {
	view, err := s.Carts.Get(ctx, userID)
	if err != nil {
		return Intent{}, err
	}

	amount := 0
	valid := 0
	for _, it := range view.Items {
		if it.Product.PriceCents <= 0 {
			continue
		}
		valid++
		amount += it.Product.PriceCents * it.Qty
	}
	if valid == 0 {
		return Intent{}, apperr.New(apperr.KindEmptyCart, "no valid products in cart")
	}
	if amount <= 0 {
		return Intent{}, apperr.New(apperr.KindValidation, "invalid cart amount")
	}

	id, err := s.Gateway.CreateIntent(ctx, amount, s.Currency)
	if err != nil {
		return Intent{}, fmt.Errorf("create charge intent: %w", err)
	}

	in := Intent{ID: id, UserID: userID, AmountCents: amount}
	if err := s.Intents.Put(ctx, in); err != nil {
		return Intent{}, err
	}
	return in, nil
}

// ConfirmCharge verifies the gateway's signed callback and, on first
// delivery, runs the order-creation sequence with payment settled.
// Retried callbacks with the same transaction id return the existing
// order instead of creating a second one.
func (s *Service) ConfirmCharge(ctx context.Context, userID, intentID, paymentID, signature string, addr orders.Address) (*orders.Order, error) {
	if !Verify(s.Secret, intentID, paymentID, signature) {
		return nil, apperr.New(apperr.KindPaymentVerification, "payment verification failed")
	}

	// A known intent must belong to the confirming user; an expired one
	// is tolerated since the signature already binds intent and payment.
	if in, ok, err := s.Intents.Get(ctx, intentID); err != nil {
		return nil, err
	} else if ok && in.UserID != userID {
		return nil, apperr.New(apperr.KindForbidden, "charge intent belongs to another user")
	}

	// Fast-path duplicate hint in Redis; the DB lookup stays the source
	// of truth either way.
	idemKey := fmt.Sprintf(redisx.KeyConfirmIdem, paymentID)
	if ok, _ := redisx.Exists(ctx, s.Intents.Redis, idemKey); ok {
		if existing, err := s.Orders.FindByTransactionID(ctx, paymentID); err == nil && existing != nil {
			return existing, nil
		}
	}

	if existing, err := s.Orders.FindByTransactionID(ctx, paymentID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	o, err := s.Orders.CreatePaid(ctx, userID, addr, paymentID)
	if err != nil {
		// A racing duplicate confirmation may have won between the
		// lookup and the insert; the unique transaction constraint
		// catches it and we return the winner's order.
		if apperr.Is(err, apperr.KindConflict) {
			if existing, ferr := s.Orders.FindByTransactionID(ctx, paymentID); ferr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}

	_ = s.Intents.Redis.Set(ctx, idemKey, o.ID, redisx.TTLConfirmIdem).Err()
	_ = s.Intents.Delete(ctx, intentID)
	return o, nil
}
