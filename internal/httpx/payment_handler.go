package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/floracart/storefront/internal/orders"
	"github.com/floracart/storefront/internal/payment"
)

type PaymentHandler struct {
	Payments    *payment.Service
	Currency    string
	ExposeError bool
}

type intentResp struct {
	IntentID    string `json:"intent_id"`
	AmountCents int    `json:"amount_cents"`
	Currency    string `json:"currency"`
	KeyID       string `json:"key_id"`
}

type confirmReq struct {
	IntentID  string         `json:"intent_id"`
	PaymentID string         `json:"payment_id"`
	Signature string         `json:"signature"`
	Address   orders.Address `json:"shipping_address"`
}

func (h *PaymentHandler) Register(r chi.Router) {
	r.Route("/payments", func(r chi.Router) {
		r.Use(RequireUser)
		r.Post("/intent", h.initiate)
		r.Post("/confirm", h.confirm)
		r.Get("/key", h.key)
	})
}

func (h *PaymentHandler) initiate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	in, err := h.Payments.InitiateCharge(ctx, IdentityFrom(r.Context()).UserID)
	if err != nil {
		writeError(w, r, err, h.ExposeError)
		return
	}
	writeJSON(w, http.StatusOK, intentResp{
		IntentID:    in.ID,
		AmountCents: in.AmountCents,
		Currency:    h.Currency,
		KeyID:       h.Payments.Gateway.KeyID(),
	})
}

func (h *PaymentHandler) confirm(w http.ResponseWriter, r *http.Request) {
	var req confirmReq
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	o, err := h.Payments.ConfirmCharge(ctx, IdentityFrom(r.Context()).UserID,
		req.IntentID, req.PaymentID, req.Signature, req.Address)
	if err != nil {
		writeError(w, r, err, h.ExposeError)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *PaymentHandler) key(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"key_id": h.Payments.Gateway.KeyID()})
}
