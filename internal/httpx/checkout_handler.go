package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ariefcatur/farm-market-core.git/internal/checkout"
	"github.com/ariefcatur/farm-market-core.git/internal/metrics"
	"github.com/ariefcatur/farm-market-core.git/internal/orders"
	"github.com/ariefcatur/farm-market-core.git/internal/stock"
	"github.com/go-chi/chi/v5"
)

type CheckoutHandler struct {
	Checkout *checkout.Service
	Metrics  *metrics.Metrics
}

type checkoutReq struct {
	AddressID          string `json:"address_id"`
	Class              string `json:"class"`
	PaymentMethod      string `json:"payment_method"`
	Notes              string `json:"notes"`
	PONumber           string `json:"po_number"`
	ExpectedTotalCents int    `json:"expected_total_cents"`
}

type groupFailureResp struct {
	SellerID string `json:"seller_id"`
	Error    string `json:"error"`
}

type checkoutResp struct {
	Orders   []orderResp        `json:"orders"`
	Failures []groupFailureResp `json:"failures,omitempty"`
}

func (h *CheckoutHandler) Register(r *chi.Mux) {
	r.Post("/checkout", h.placeOrders)
}

func (h *CheckoutHandler) placeOrders(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	if actor.UserID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing X-User-Id"})
		return
	}

	var req checkoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.AddressID == "" || req.PaymentMethod == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}
	class := orders.Class(req.Class)
	if class == "" {
		class = orders.ClassRetail
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := h.Checkout.PlaceOrders(ctx, checkout.Input{
		BuyerID:            actor.UserID,
		AddressID:          req.AddressID,
		Class:              class,
		PaymentMethod:      orders.PaymentMethod(req.PaymentMethod),
		Notes:              req.Notes,
		PONumber:           req.PONumber,
		ExpectedTotalCents: req.ExpectedTotalCents,
	})
	if err != nil {
		h.count("failed")
		h.countConflict(err)
		writeErr(w, err)
		return
	}

	resp := checkoutResp{Orders: make([]orderResp, 0, len(res.Orders))}
	for i := range res.Orders {
		resp.Orders = append(resp.Orders, toOrderResp(&res.Orders[i]))
	}
	for _, f := range res.Failures {
		h.countConflict(f.Err)
		resp.Failures = append(resp.Failures, groupFailureResp{SellerID: f.SellerID, Error: f.Err.Error()})
	}

	if len(res.Failures) > 0 {
		h.count("partial")
	} else {
		h.count("ok")
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *CheckoutHandler) count(result string) {
	if h.Metrics != nil {
		h.Metrics.Checkouts.WithLabelValues(result).Inc()
	}
}

func (h *CheckoutHandler) countConflict(err error) {
	if h.Metrics != nil && errors.Is(err, stock.ErrConflict) {
		h.Metrics.StockConflicts.Inc()
	}
}
