// Package catalog is the read model over products. Stock and sold are
// surfaced here for display and prechecks, but mutation of those counters
// belongs to the inventory package alone.
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/floracart/storefront/internal/apperr"
)

type Product struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	PriceCents int       `json:"price_cents"`
	Image      string    `json:"image"`
	Stock      int       `json:"stock"`
	Sold       int       `json:"sold"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Store struct{ DB *pgxpool.Pool }

func (s *Store) Get(ctx context.Context, id string) (Product, error) {
	var p Product
	err := s.DB.QueryRow(ctx, `
		SELECT id, name, price_cents, image, stock, sold, is_active, created_at, updated_at
		FROM products WHERE id=$1`, id).
		Scan(&p.ID, &p.Name, &p.PriceCents, &p.Image, &p.Stock, &p.Sold, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, apperr.New(apperr.KindNotFound, "product %s not found", id)
	}
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

// GetMany returns the products that still exist, keyed by id. Missing ids
// are simply absent so callers can purge dangling references.
func (s *Store) GetMany(ctx context.Context, ids []string) (map[string]Product, error) {
	if len(ids) == 0 {
		return map[string]Product{}, nil
	}
	rows, err := s.DB.Query(ctx, `
		SELECT id, name, price_cents, image, stock, sold, is_active, created_at, updated_at
		FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]Product, len(ids))
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceCents, &p.Image, &p.Stock, &p.Sold, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}
