package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/floracart/storefront/internal/orders"
	"github.com/floracart/storefront/internal/redisx"
)

type OrdersHandler struct {
	Orders      *orders.Service
	Redis       *redis.Client // nil disables the status cache
	ExposeError bool
}

type createOrderReq struct {
	Address       orders.Address       `json:"shipping_address"`
	PaymentMethod orders.PaymentMethod `json:"payment_method"`
	Notes         string               `json:"notes"`
}

type listOrdersResp struct {
	Orders     []orders.Summary `json:"orders"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	Total      int              `json:"total"`
	TotalPages int              `json:"total_pages"`
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Use(RequireUser)
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/stats", h.stats)
		r.Get("/{id}", h.get)
		r.Get("/{id}/status", h.status)
		r.Put("/{id}/cancel", h.cancel)
		r.With(RequireAdmin).Put("/{id}/status", h.updateStatus)
	})
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createOrderReq
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	o, err := h.Orders.Create(ctx, IdentityFrom(r.Context()).UserID, req.Address, req.PaymentMethod, req.Notes)
	if err != nil {
		writeError(w, r, err, h.ExposeError)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := orders.ListFilter{Status: orders.Status(q.Get("status"))}
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 10
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, total, err := h.Orders.List(ctx, IdentityFrom(r.Context()).UserID, f)
	if err != nil {
		writeError(w, r, err, h.ExposeError)
		return
	}

	summaries := make([]orders.Summary, 0, len(list))
	for i := range list {
		summaries = append(summaries, list[i].Summary())
	}
	writeJSON(w, http.StatusOK, listOrdersResp{
		Orders:     summaries,
		Page:       f.Page,
		Limit:      f.Limit,
		Total:      total,
		TotalPages: (total + f.Limit - 1) / f.Limit,
	})
}

func (h *OrdersHandler) stats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	st, err := h.Orders.Stats(ctx, IdentityFrom(r.Context()).UserID)
	if err != nil {
		writeError(w, r, err, h.ExposeError)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	id := IdentityFrom(r.Context())
	o, err := h.Orders.Get(ctx, id.UserID, id.Role, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, h.ExposeError)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// status serves the fulfillment-maintained cache first and falls back to
// the database, re-warming the cache on a miss. A cached entry is served
// only to the order's owner (or an admin); everyone else goes through
// the database path, which enforces ownership.
func (h *OrdersHandler) status(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	id := IdentityFrom(r.Context())
	orderID := chi.URLParam(r, "id")
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			var entry redisx.OrderStatusEntry
			if err := json.Unmarshal([]byte(s), &entry); err == nil &&
				entry.UserID != "" && (entry.UserID == id.UserID || id.Role == "admin") {
				writeJSON(w, http.StatusOK, map[string]string{"status": entry.Status})
				return
			}
		}
	}

	o, err := h.Orders.Get(ctx, id.UserID, id.Role, orderID)
	if err != nil {
		writeError(w, r, err, h.ExposeError)
		return
	}
	if h.Redis != nil {
		entry, _ := json.Marshal(redisx.OrderStatusEntry{Status: string(o.Status), UserID: o.UserID})
		_ = h.Redis.Set(ctx, key, entry, redisx.TTLStatusCache).Err()
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(o.Status)})
}

func (h *OrdersHandler) cancel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	// body is optional for a cancel
	_ = decodeBestEffort(r, &req)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	o, err := h.Orders.Cancel(ctx, IdentityFrom(r.Context()).UserID, chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		writeError(w, r, err, h.ExposeError)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status         orders.Status `json:"status"`
		Notes          string        `json:"notes"`
		TrackingNumber string        `json:"tracking_number"`
		Courier        string        `json:"courier"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	o, err := h.Orders.UpdateStatus(ctx, chi.URLParam(r, "id"), orders.StatusUpdate{
		Status:         req.Status,
		Notes:          req.Notes,
		TrackingNumber: req.TrackingNumber,
		Courier:        req.Courier,
	})
	if err != nil {
		writeError(w, r, err, h.ExposeError)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
