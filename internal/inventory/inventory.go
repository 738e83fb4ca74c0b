// Package inventory owns the stock and sold counters. Every mutation of
// those fields in the system goes through Reserve/Release here; the
// decrement is guarded by a row lock so a stale earlier stock check can
// never oversell.
package inventory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/floracart/storefront/internal/apperr"
)

type Line struct {
	ProductID string
	Qty       int
}

// ReserveTx decrements stock and increments sold for every line inside
// the caller's transaction. Rows are locked with FOR UPDATE before the
// check, so concurrent reservations serialize per product. Any shortfall
// aborts with OutOfStock and the caller's rollback undoes prior lines.
func ReserveTx(ctx context.Context, tx pgx.Tx, lines []Line) error {
	for _, l := range lines {
		var name string
		var stock int
		err := tx.QueryRow(ctx,
			`SELECT name, stock FROM products WHERE id=$1 FOR UPDATE`, l.ProductID).
			Scan(&name, &stock)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.New(apperr.KindNotFound, "product %s not found", l.ProductID)
		}
		if err != nil {
			return err
		}
		if stock < l.Qty {
			return apperr.New(apperr.KindOutOfStock,
				"insufficient stock for %s: available %d, required %d", name, stock, l.Qty)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE products SET stock = stock - $2, sold = sold + $2, updated_at = now()
			 WHERE id=$1`, l.ProductID, l.Qty); err != nil {
			return err
		}
	}
	return nil
}

// ReleaseTx is the inverse of ReserveTx: stock returns, sold shrinks but
// never below zero. No precondition, it always succeeds.
func ReleaseTx(ctx context.Context, tx pgx.Tx, lines []Line) error {
	for _, l := range lines {
		if _, err := tx.Exec(ctx,
			`UPDATE products SET stock = stock + $2, sold = GREATEST(0, sold - $2), updated_at = now()
			 WHERE id=$1`, l.ProductID, l.Qty); err != nil {
			return err
		}
	}
	return nil
}

// Repo wraps the two entry points in their own transaction for callers
// that are not already inside one.
type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Reserve(ctx context.Context, lines []Line) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := ReserveTx(ctx, tx, lines); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repo) Release(ctx context.Context, lines []Line) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := ReleaseTx(ctx, tx, lines); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
