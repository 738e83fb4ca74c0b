package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/floracart/storefront/internal/cart"
)

type CartHandler struct {
	Carts       *cart.Service
	ExposeError bool
}

type cartItemReq struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

func (h *CartHandler) Register(r chi.Router) {
	r.Route("/cart", func(r chi.Router) {
		r.Use(RequireUser)
		r.Get("/", h.get)
		r.Get("/count", h.count)
		r.Post("/items", h.add)
		r.Put("/items/{productID}", h.updateQty)
		r.Delete("/items/{productID}", h.remove)
		r.Delete("/", h.clear)
	})
}

func (h *CartHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	view, err := h.Carts.Get(ctx, IdentityFrom(r.Context()).UserID)
	if err != nil {
		writeError(w, r, err, h.ExposeError)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CartHandler) count(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	n, err := h.Carts.Count(ctx, IdentityFrom(r.Context()).UserID)
	if err != nil {
		writeError(w, r, err, h.ExposeError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request) {
	var req cartItemReq
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	view, err := h.Carts.Add(ctx, IdentityFrom(r.Context()).UserID, req.ProductID, req.Qty)
	if err != nil {
		writeError(w, r, err, h.ExposeError)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CartHandler) updateQty(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Qty int `json:"qty"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	view, err := h.Carts.UpdateQty(ctx, IdentityFrom(r.Context()).UserID, chi.URLParam(r, "productID"), req.Qty)
	if err != nil {
		writeError(w, r, err, h.ExposeError)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	view, err := h.Carts.Remove(ctx, IdentityFrom(r.Context()).UserID, chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, r, err, h.ExposeError)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Carts.Clear(ctx, IdentityFrom(r.Context()).UserID); err != nil {
		writeError(w, r, err, h.ExposeError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "cart cleared"})
}
