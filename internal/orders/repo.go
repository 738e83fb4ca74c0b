package orders

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/floracart/storefront/internal/inventory"
)

var (
	// ErrNumberTaken surfaces an order-number collision; the caller
	// recomputes the sequence and retries.
	ErrNumberTaken = errors.New("order number already taken")
	// ErrDuplicateTransaction means an order already carries this
	// payment transaction id.
	ErrDuplicateTransaction = errors.New("transaction already recorded")
)

type ListFilter struct {
	Page   int
	Limit  int
	Status Status
}

type PGRepo struct{ DB *pgxpool.Pool }

var _ Repo = (*PGRepo)(nil)

func (r *PGRepo) CountCreatedBetween(ctx context.Context, from, to time.Time) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE created_at >= $1 AND created_at < $2`,
		from, to).Scan(&n)
	return n, err
}

// Create persists the order, its items, and the stock reservation in one
// transaction: either everything lands or nothing does.
func (r *PGRepo) Create(ctx context.Context, o *Order) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO orders(
			id, user_id, number, status,
			payment_method, payment_status, transaction_id, paid_at,
			items_cents, shipping_cents, tax_cents, total_cents,
			ship_type, ship_name, ship_phone, ship_address, ship_city, ship_state, ship_pincode,
			customer_notes, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,NULLIF($7,''),$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$21)`,
		o.ID, o.UserID, o.Number, o.Status,
		o.Payment.Method, o.Payment.Status, o.Payment.TransactionID, o.Payment.PaidAt,
		o.Pricing.ItemsCents, o.Pricing.ShippingCents, o.Pricing.TaxCents, o.Pricing.TotalCents,
		o.Address.Type, o.Address.Name, o.Address.Phone, o.Address.Address,
		o.Address.City, o.Address.State, o.Address.Pincode,
		o.CustomerNotes, o.CreatedAt)
	if err != nil {
		return mapUniqueViolation(err)
	}

	lines := make([]inventory.Line, 0, len(o.Items))
	for _, it := range o.Items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items(order_id, product_id, name, price_cents, qty, image)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			o.ID, it.ProductID, it.Name, it.PriceCents, it.Qty, it.Image); err != nil {
			return err
		}
		lines = append(lines, inventory.Line{ProductID: it.ProductID, Qty: it.Qty})
	}

	// Conditional decrement inside the same transaction; a shortfall
	// rolls back the order rows above.
	if err := inventory.ReserveTx(ctx, tx, lines); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "orders_number_key":
			return ErrNumberTaken
		case "orders_transaction_id_key":
			return ErrDuplicateTransaction
		}
	}
	return err
}

const orderColumns = `
	id, user_id, number, status,
	payment_method, payment_status, COALESCE(transaction_id, ''), paid_at,
	items_cents, shipping_cents, tax_cents, total_cents,
	ship_type, ship_name, ship_phone, ship_address, ship_city, ship_state, ship_pincode,
	customer_notes, admin_notes,
	tracking_number, courier, shipped_at, delivered_at,
	cancellation_reason, cancelled_at, cancelled_by,
	created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var cancelledBy, reason *string
	err := row.Scan(
		&o.ID, &o.UserID, &o.Number, &o.Status,
		&o.Payment.Method, &o.Payment.Status, &o.Payment.TransactionID, &o.Payment.PaidAt,
		&o.Pricing.ItemsCents, &o.Pricing.ShippingCents, &o.Pricing.TaxCents, &o.Pricing.TotalCents,
		&o.Address.Type, &o.Address.Name, &o.Address.Phone, &o.Address.Address,
		&o.Address.City, &o.Address.State, &o.Address.Pincode,
		&o.CustomerNotes, &o.AdminNotes,
		&o.Tracking.TrackingNumber, &o.Tracking.Courier, &o.Tracking.ShippedAt, &o.Tracking.DeliveredAt,
		&reason, &o.CancelledAt, &cancelledBy,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if reason != nil {
		o.CancellationReason = *reason
	}
	if cancelledBy != nil {
		o.CancelledBy = *cancelledBy
	}
	return &o, nil
}

func (r *PGRepo) loadItems(ctx context.Context, o *Order) error {
	rows, err := r.DB.Query(ctx, `
		SELECT product_id, name, price_cents, qty, image
		FROM order_items WHERE order_id=$1 ORDER BY id`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.Name, &it.PriceCents, &it.Qty, &it.Image); err != nil {
			return err
		}
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

func (r *PGRepo) Get(ctx context.Context, id string) (*Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PGRepo) FindByTransactionID(ctx context.Context, txnID string) (*Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE transaction_id=$1`, txnID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PGRepo) List(ctx context.Context, userID string, f ListFilter) ([]Order, int, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 10
	}
	offset := (f.Page - 1) * f.Limit

	where := `WHERE user_id=$1`
	args := []any{userID}
	if f.Status != "" {
		where += ` AND status=$2`
		args = append(args, f.Status)
	}

	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM orders `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + orderColumns + ` FROM orders ` + where +
		` ORDER BY created_at DESC LIMIT ` + strconv.Itoa(f.Limit) + ` OFFSET ` + strconv.Itoa(offset)
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for i := range out {
		if err := r.loadItems(ctx, &out[i]); err != nil {
			return nil, 0, err
		}
	}
	return out, total, nil
}

func (r *PGRepo) Stats(ctx context.Context, userID string) (Stats, error) {
	var s Stats
	err := r.DB.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(total_cents), 0),
		       COUNT(*) FILTER (WHERE status = 'pending'),
		       COUNT(*) FILTER (WHERE status = 'delivered'),
		       COUNT(*) FILTER (WHERE status = 'cancelled')
		FROM orders WHERE user_id=$1`, userID).
		Scan(&s.TotalOrders, &s.TotalCents, &s.PendingOrders, &s.DeliveredOrders, &s.CancelledOrders)
	return s, err
}

// UpdateStatus persists the mutable order fields. When releaseStock is
// set (cancellation) the stock restoration runs in the same transaction.
func (r *PGRepo) UpdateStatus(ctx context.Context, o *Order, releaseStock bool) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE orders SET
			status=$2, admin_notes=$3,
			payment_status=$4,
			tracking_number=$5, courier=$6, shipped_at=$7, delivered_at=$8,
			cancellation_reason=NULLIF($9,''), cancelled_at=$10, cancelled_by=NULLIF($11,''),
			updated_at=now()
		WHERE id=$1`,
		o.ID, o.Status, o.AdminNotes,
		o.Payment.Status,
		o.Tracking.TrackingNumber, o.Tracking.Courier, o.Tracking.ShippedAt, o.Tracking.DeliveredAt,
		o.CancellationReason, o.CancelledAt, o.CancelledBy)
	if err != nil {
		return err
	}

	if releaseStock {
		lines := make([]inventory.Line, 0, len(o.Items))
		for _, it := range o.Items {
			lines = append(lines, inventory.Line{ProductID: it.ProductID, Qty: it.Qty})
		}
		if err := inventory.ReleaseTx(ctx, tx, lines); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

