package cart

import (
	"context"

	"github.com/floracart/storefront/internal/apperr"
)

type Service struct {
	Store    Store
	Products Products
}

// Get returns the cart with resolved product snapshots, lazily creating
// it on first access. Entries whose product no longer exists are purged
// so a deleted product can never poison a cart read.
func (s *Service) Get(ctx context.Context, userID string) (View, error) {
	if err := s.Store.EnsureCart(ctx, userID); err != nil {
		return View{}, err
	}
	return s.resolve(ctx, userID)
}

func (s *Service) resolve(ctx context.Context, userID string) (View, error) {
	items, err := s.Store.Items(ctx, userID)
	if err != nil {
		return View{}, err
	}

	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.Products.GetMany(ctx, ids)
	if err != nil {
		return View{}, err
	}

	view := View{UserID: userID, Items: []ResolvedItem{}}
	var dangling []string
	for _, it := range items {
		p, ok := products[it.ProductID]
		if !ok {
			dangling = append(dangling, it.ProductID)
			continue
		}
		view.Items = append(view.Items, ResolvedItem{Product: p, Qty: it.Qty, AddedAt: it.AddedAt})
		view.TotalItems += it.Qty
		view.TotalCents += p.PriceCents * it.Qty
	}
	if len(dangling) > 0 {
		if err := s.Store.RemoveItems(ctx, userID, dangling); err != nil {
			return View{}, err
		}
	}
	return view, nil
}

// Count returns the total quantity across all entries.
func (s *Service) Count(ctx context.Context, userID string) (int, error) {
	view, err := s.Get(ctx, userID)
	if err != nil {
		return 0, err
	}
	return view.TotalItems, nil
}

// Add merges qty into the user's entry for productID, appending a new
// entry if none exists. The merged quantity is capped at MaxQtyPerItem
// and checked against current stock.
func (s *Service) Add(ctx context.Context, userID, productID string, qty int) (View, error) {
	if qty < 1 {
		return View{}, apperr.New(apperr.KindValidation, "quantity must be at least 1")
	}

	p, err := s.Products.Get(ctx, productID)
	if err != nil {
		return View{}, err
	}
	if !p.IsActive {
		return View{}, apperr.New(apperr.KindNotFound, "product %s not available", productID)
	}

	if err := s.Store.EnsureCart(ctx, userID); err != nil {
		return View{}, err
	}

	current := 0
	items, err := s.Store.Items(ctx, userID)
	if err != nil {
		return View{}, err
	}
	for _, it := range items {
		if it.ProductID == productID {
			current = it.Qty
			break
		}
	}
	requested := current + qty
	if requested > MaxQtyPerItem {
		requested = MaxQtyPerItem
	}
	if p.Stock < requested {
		return View{}, apperr.New(apperr.KindOutOfStock,
			"insufficient stock for %s: only %d available", p.Name, p.Stock)
	}

	if err := s.Store.MergeItem(ctx, userID, productID, qty); err != nil {
		return View{}, err
	}
	return s.resolve(ctx, userID)
}

// UpdateQty sets an entry's quantity. Zero or negative removes the entry,
// values above MaxQtyPerItem clamp, and increases are checked against
// stock first.
func (s *Service) UpdateQty(ctx context.Context, userID, productID string, qty int) (View, error) {
	items, err := s.Store.Items(ctx, userID)
	if err != nil {
		return View{}, err
	}
	current := -1
	for _, it := range items {
		if it.ProductID == productID {
			current = it.Qty
			break
		}
	}
	if current < 0 {
		return View{}, apperr.New(apperr.KindNotFound, "product %s not in cart", productID)
	}

	if qty <= 0 {
		if err := s.Store.RemoveItem(ctx, userID, productID); err != nil {
			return View{}, err
		}
		return s.resolve(ctx, userID)
	}
	if qty > MaxQtyPerItem {
		qty = MaxQtyPerItem
	}

	if qty > current {
		p, err := s.Products.Get(ctx, productID)
		if err != nil {
			return View{}, err
		}
		if p.Stock < qty {
			return View{}, apperr.New(apperr.KindOutOfStock,
				"insufficient stock for %s: only %d available", p.Name, p.Stock)
		}
	}

	if _, err := s.Store.SetQty(ctx, userID, productID, qty); err != nil {
		return View{}, err
	}
	return s.resolve(ctx, userID)
}

// Remove deletes a single entry.
func (s *Service) Remove(ctx context.Context, userID, productID string) (View, error) {
	items, err := s.Store.Items(ctx, userID)
	if err != nil {
		return View{}, err
	}
	found := false
	for _, it := range items {
		if it.ProductID == productID {
			found = true
			break
		}
	}
	if !found {
		return View{}, apperr.New(apperr.KindNotFound, "product %s not in cart", productID)
	}
	if err := s.Store.RemoveItem(ctx, userID, productID); err != nil {
		return View{}, err
	}
	return s.resolve(ctx, userID)
}

// Clear empties the cart. The cart row itself survives.
func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.Store.Clear(ctx, userID)
}
