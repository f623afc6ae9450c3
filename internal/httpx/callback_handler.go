package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/ariefcatur/farm-market-core.git/internal/metrics"
	"github.com/ariefcatur/farm-market-core.git/internal/payment"
	"github.com/ariefcatur/farm-market-core.git/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

// CallbackHandler is the gateway webhook entrypoint. Whatever the reconciler
// thinks of the payload, a parseable request is acknowledged 200 so the
// gateway stops redelivering; the PENDING gate downstream keeps redeliveries
// harmless anyway.
type CallbackHandler struct {
	Reconciler *payment.Reconciler
	Redis      *redis.Client
	Metrics    *metrics.Metrics
}

type callbackReq struct {
	OrderCode   string `json:"order_code"`
	TxCode      string `json:"transaction_code"`
	Success     bool   `json:"success"`
	AmountCents int    `json:"amount_cents"`
	Message     string `json:"error_message"`
}

func (h *CallbackHandler) Register(r *chi.Mux) {
	r.Post("/payments/callback/{gateway}", h.handle)
}

func (h *CallbackHandler) handle(w http.ResponseWriter, r *http.Request) {
	gateway := chi.URLParam(r, "gateway")

	var req callbackReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// Redis fast path for redelivered webhooks; best effort, the payment
	// row's PENDING gate is the real guard.
	dkey := fmt.Sprintf(redisx.KeyDedupCallback, gateway, req.TxCode)
	if h.Redis != nil && req.TxCode != "" {
		if seen, _ := redisx.Exists(ctx, h.Redis, dkey); seen {
			h.count("duplicate")
			h.ack(w)
			return
		}
	}

	ord, err := h.Reconciler.HandleCallback(ctx, payment.Callback{
		Gateway:     gateway,
		OrderCode:   req.OrderCode,
		TxCode:      req.TxCode,
		Success:     req.Success,
		AmountCents: req.AmountCents,
		Message:     req.Message,
	})
	if err != nil {
		// acknowledged regardless; an order we cannot match will not
		// match on redelivery either
		log.Printf("payment callback gateway=%s tx=%s order=%s: %v", gateway, req.TxCode, req.OrderCode, err)
		h.count("error")
		h.ack(w)
		return
	}

	if h.Redis != nil {
		if req.TxCode != "" {
			_ = h.Redis.Set(ctx, dkey, "1", redisx.TTLDedupCallback).Err()
		}
		// reconciliation may have moved status/payment_status; a cached
		// PENDING must not outlive it
		_ = h.Redis.Del(ctx, fmt.Sprintf(redisx.KeyOrderStatus, ord.ID)).Err()
	}
	h.count("ok")
	h.ack(w)
}

func (h *CallbackHandler) ack(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func (h *CallbackHandler) count(result string) {
	if h.Metrics != nil {
		h.Metrics.Callbacks.WithLabelValues(result).Inc()
	}
}
