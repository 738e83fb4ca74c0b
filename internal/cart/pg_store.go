package cart

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore keeps carts in Postgres: one row per user in carts, entries in
// cart_items with a (user_id, product_id) primary key so concurrent adds
// for the same product merge in SQL instead of racing.
type PGStore struct{ DB *pgxpool.Pool }

var _ Store = (*PGStore)(nil)

func (s *PGStore) EnsureCart(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO carts(user_id) VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING`, userID)
	return err
}

func (s *PGStore) Items(ctx context.Context, userID string) ([]Item, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT product_id, qty, added_at FROM cart_items
		WHERE user_id=$1 ORDER BY added_at, product_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.Qty, &it.AddedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *PGStore) MergeItem(ctx context.Context, userID, productID string, qty int) error {
	// LEAST keeps the merged quantity under the cap even when two
	// requests land at once.
	_, err := s.DB.Exec(ctx, `
		INSERT INTO cart_items(user_id, product_id, qty)
		VALUES ($1, $2, LEAST($3, $4))
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET qty = LEAST(cart_items.qty + $3, $4)`,
		userID, productID, qty, MaxQtyPerItem)
	return err
}

func (s *PGStore) SetQty(ctx context.Context, userID, productID string, qty int) (bool, error) {
	ct, err := s.DB.Exec(ctx, `
		UPDATE cart_items SET qty=$3 WHERE user_id=$1 AND product_id=$2`,
		userID, productID, qty)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

func (s *PGStore) RemoveItem(ctx context.Context, userID, productID string) error {
	_, err := s.DB.Exec(ctx,
		`DELETE FROM cart_items WHERE user_id=$1 AND product_id=$2`, userID, productID)
	return err
}

func (s *PGStore) RemoveItems(ctx context.Context, userID string, productIDs []string) error {
	_, err := s.DB.Exec(ctx,
		`DELETE FROM cart_items WHERE user_id=$1 AND product_id = ANY($2)`, userID, productIDs)
	return err
}

func (s *PGStore) Clear(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1`, userID)
	return err
}
