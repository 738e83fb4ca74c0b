package orders

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/floracart/storefront/internal/apperr"
	"github.com/floracart/storefront/internal/cart"
	kafkax "github.com/floracart/storefront/internal/kafka"
	"github.com/floracart/storefront/internal/pricing"
)

// numberRetries bounds the retry loop on order-number collisions.
const numberRetries = 3

// Repo is the persistence contract the service drives.
type Repo interface {
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int, error)
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	FindByTransactionID(ctx context.Context, txnID string) (*Order, error)
	List(ctx context.Context, userID string, f ListFilter) ([]Order, int, error)
	Stats(ctx context.Context, userID string) (Stats, error)
	UpdateStatus(ctx context.Context, o *Order, releaseStock bool) error
}

// Carts is the slice of the cart manager the lifecycle needs.
type Carts interface {
	Get(ctx context.Context, userID string) (cart.View, error)
	Clear(ctx context.Context, userID string) error
}

// Publisher matches the kafka producer; nil disables events.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type Service struct {
	Repo   Repo
	Carts  Carts
	Pricer pricing.Engine
	// One producer per topic, nil disables that stream.
	CreatedEvents   Publisher
	CancelledEvents Publisher
	StatusEvents    Publisher
	Prefix          string
	ServiceName     string
	Now             func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create converts the user's cart into an order: snapshot lines, price
// them, reserve stock, persist, clear the cart. Payment starts pending.
func (s *Service) Create(ctx context.Context, userID string, addr Address, method PaymentMethod, notes string) (*Order, error) {
	if !method.Valid() {
		return nil, apperr.New(apperr.KindValidation, "invalid payment method %q", method)
	}
	return s.createFromCart(ctx, userID, addr, notes,
		PaymentInfo{Method: method, Status: PaymentPending}, StatusPending)
}

// CreatePaid is the gateway-confirmed path: payment is already completed,
// so the order starts in processing with the transaction recorded.
func (s *Service) CreatePaid(ctx context.Context, userID string, addr Address, transactionID string) (*Order, error) {
	paidAt := s.now()
	return s.createFromCart(ctx, userID, addr, "",
		PaymentInfo{Method: MethodOnline, Status: PaymentCompleted, TransactionID: transactionID, PaidAt: &paidAt},
		StatusProcessing)
}

func (s *Service) createFromCart(ctx context.Context, userID string, addr Address, notes string, payment PaymentInfo, initial Status) (*Order, error) {
	if err := addr.Validate(); err != nil {
		return nil, err
	}

	view, err := s.Carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(view.Items) == 0 {
		return nil, apperr.New(apperr.KindEmptyCart, "your cart is empty")
	}

	// Stock may have moved since the items entered the cart; fail early
	// with the product's name. The authoritative guard is the locked
	// decrement inside Repo.Create.
	for _, it := range view.Items {
		if it.Product.Stock < it.Qty {
			return nil, apperr.New(apperr.KindOutOfStock,
				"insufficient stock for %s: available %d", it.Product.Name, it.Product.Stock)
		}
	}

	items := make([]Item, 0, len(view.Items))
	lines := make([]pricing.Line, 0, len(view.Items))
	for _, it := range view.Items {
		items = append(items, Item{
			ProductID:  it.Product.ID,
			Name:       it.Product.Name,
			PriceCents: it.Product.PriceCents,
			Qty:        it.Qty,
			Image:      it.Product.Image,
		})
		lines = append(lines, pricing.Line{UnitPriceCents: it.Product.PriceCents, Qty: it.Qty})
	}

	o := &Order{
		ID:            uuid.NewString(),
		UserID:        userID,
		Items:         items,
		Address:       addr,
		Payment:       payment,
		Status:        initial,
		Pricing:       s.Pricer.Quote(lines),
		CustomerNotes: notes,
	}

	// The daily sequence is a count-then-format race; the unique
	// constraint on the number settles it, losers retry with a fresh
	// count.
	for attempt := 0; ; attempt++ {
		now := s.now()
		from, to := DayBounds(now)
		n, err := s.Repo.CountCreatedBetween(ctx, from, to)
		if err != nil {
			return nil, err
		}
		o.Number = Number(s.Prefix, now, n+1)
		o.CreatedAt = now
		o.UpdatedAt = now

		err = s.Repo.Create(ctx, o)
		if err == nil {
			break
		}
		if errors.Is(err, ErrNumberTaken) && attempt < numberRetries-1 {
			continue
		}
		if errors.Is(err, ErrNumberTaken) {
			return nil, apperr.Wrap(apperr.KindConflict, err, "could not assign an order number")
		}
		if errors.Is(err, ErrDuplicateTransaction) {
			return nil, apperr.Wrap(apperr.KindConflict, err, "payment already recorded")
		}
		return nil, err
	}

	if err := s.Carts.Clear(ctx, userID); err != nil {
		// The order exists; an uncleared cart is an annoyance, not a
		// correctness problem.
		log.Printf("clear cart for user %s after order %s: %v", userID, o.Number, err)
	}

	s.publish(s.CreatedEvents, EventOrderCreated, o.ID, kafkax.MustMarshal(OrderCreatedPayload{
		OrderID: o.ID, Number: o.Number, UserID: o.UserID, Status: o.Status, TotalCents: o.Pricing.TotalCents,
	}))
	return o, nil
}

// Get returns an order, enforcing ownership: customers see their own,
// admins see everything.
func (s *Service) Get(ctx context.Context, userID, role, orderID string) (*Order, error) {
	o, err := s.Repo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperr.New(apperr.KindNotFound, "order %s not found", orderID)
	}
	if o.UserID != userID && role != "admin" {
		return nil, apperr.New(apperr.KindForbidden, "not authorized to access this order")
	}
	return o, nil
}

func (s *Service) List(ctx context.Context, userID string, f ListFilter) ([]Order, int, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, apperr.New(apperr.KindValidation, "invalid status filter %q", f.Status)
	}
	return s.Repo.List(ctx, userID, f)
}

func (s *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	return s.Repo.Stats(ctx, userID)
}

// FindByTransactionID returns the order carrying a gateway transaction
// id, or nil. Payment confirmation uses it to stay idempotent.
func (s *Service) FindByTransactionID(ctx context.Context, txnID string) (*Order, error) {
	return s.Repo.FindByTransactionID(ctx, txnID)
}

// Cancel is the customer-facing cancellation: allowed only while the
// order is pending or confirmed, and it releases exactly the stock the
// order reserved.
func (s *Service) Cancel(ctx context.Context, userID, orderID, reason string) (*Order, error) {
	o, err := s.Repo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperr.New(apperr.KindNotFound, "order %s not found", orderID)
	}
	if o.UserID != userID {
		return nil, apperr.New(apperr.KindForbidden, "not authorized to cancel this order")
	}
	if !o.Status.Cancellable() {
		return nil, apperr.New(apperr.KindNotCancellable,
			"order cannot be cancelled in status %s", o.Status)
	}
	if reason == "" {
		reason = "Cancelled by customer"
	}
	return s.cancel(ctx, o, reason, "customer")
}

func (s *Service) cancel(ctx context.Context, o *Order, reason, actor string) (*Order, error) {
	now := s.now()
	o.Status = StatusCancelled
	o.CancellationReason = reason
	o.CancelledAt = &now
	o.CancelledBy = actor

	if err := s.Repo.UpdateStatus(ctx, o, true); err != nil {
		// Stock restoration and the status write share a transaction;
		// if this failed nothing moved, but flag it loudly.
		log.Printf("FATAL INCONSISTENCY RISK: cancel order %s failed: %v", o.ID, err)
		return nil, err
	}

	s.publish(s.CancelledEvents, EventOrderCancelled, o.ID, kafkax.MustMarshal(OrderCancelledPayload{
		OrderID: o.ID, Number: o.Number, UserID: o.UserID, Reason: reason, By: actor,
	}))
	return o, nil
}

// StatusUpdate is the admin operation driving the state machine forward.
type StatusUpdate struct {
	Status         Status
	Notes          string
	TrackingNumber string
	Courier        string
}

func (s *Service) UpdateStatus(ctx context.Context, orderID string, upd StatusUpdate) (*Order, error) {
	if !upd.Status.Valid() {
		return nil, apperr.New(apperr.KindValidation, "unknown status %q", upd.Status)
	}
	o, err := s.Repo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperr.New(apperr.KindNotFound, "order %s not found", orderID)
	}
	if !CanTransition(o.Status, upd.Status) {
		return nil, apperr.New(apperr.KindInvalidTransition,
			"invalid status transition from %s to %s", o.Status, upd.Status)
	}

	if upd.Status == StatusCancelled {
		reason := upd.Notes
		if reason == "" {
			reason = "Cancelled by admin"
		}
		return s.cancel(ctx, o, reason, "admin")
	}

	from := o.Status
	now := s.now()
	o.Status = upd.Status
	if upd.Notes != "" {
		o.AdminNotes = upd.Notes
	}
	switch upd.Status {
	case StatusShipped:
		o.Tracking.ShippedAt = &now
		if upd.TrackingNumber != "" {
			o.Tracking.TrackingNumber = upd.TrackingNumber
		}
		if upd.Courier != "" {
			o.Tracking.Courier = upd.Courier
		}
	case StatusDelivered:
		o.Tracking.DeliveredAt = &now
		if o.Payment.Method == MethodCOD && o.Payment.Status == PaymentPending {
			o.Payment.Status = PaymentCompleted
		}
	}

	if err := s.Repo.UpdateStatus(ctx, o, false); err != nil {
		return nil, err
	}

	s.publish(s.StatusEvents, EventOrderStatusChanged, o.ID, kafkax.MustMarshal(OrderStatusChangedPayload{
		OrderID: o.ID, Number: o.Number, UserID: o.UserID, From: from, To: o.Status,
	}))
	return o, nil
}

func (s *Service) publish(p Publisher, eventType, orderID string, payload []byte) {
	if p == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    s.now().UTC(),
		Producer:      s.ServiceName,
		CorrelationID: orderID,
		Payload:       payload,
	}
	p.Publish(PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
