package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ariefcatur/farm-market-core.git/internal/catalog"
	"github.com/ariefcatur/farm-market-core.git/internal/lifecycle"
	"github.com/ariefcatur/farm-market-core.git/internal/orders"
	"github.com/ariefcatur/farm-market-core.git/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

type OrdersHandler struct {
	Orders    orders.Store
	Catalog   catalog.Store
	Lifecycle *lifecycle.Service
	Redis     *redis.Client
}

type orderLineResp struct {
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	Unit           string `json:"unit"`
	UnitPriceCents int    `json:"unit_price_cents"`
	Qty            int    `json:"qty"`
	LineTotalCents int    `json:"line_total_cents"`
}

type paymentResp struct {
	ID          string     `json:"id"`
	AmountCents int        `json:"amount_cents"`
	Gateway     string     `json:"gateway,omitempty"`
	TxCode      string     `json:"tx_code,omitempty"`
	Status      string     `json:"status"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
}

type orderResp struct {
	ID               string          `json:"id"`
	Code             string          `json:"code"`
	BuyerID          string          `json:"buyer_id"`
	SellerID         string          `json:"seller_id"`
	Class            string          `json:"class"`
	Status           string          `json:"status"`
	PaymentMethod    string          `json:"payment_method"`
	PaymentStatus    string          `json:"payment_status"`
	SubtotalCents    int             `json:"subtotal_cents"`
	ShippingFeeCents int             `json:"shipping_fee_cents"`
	DiscountCents    int             `json:"discount_cents"`
	TotalCents       int             `json:"total_cents"`
	Lines            []orderLineResp `json:"lines"`
	Payments         []paymentResp   `json:"payments"`
	CreatedAt        time.Time       `json:"created_at"`
}

func toOrderResp(d *orders.Detail) orderResp {
	out := orderResp{
		ID:               d.Order.ID,
		Code:             d.Order.Code,
		BuyerID:          d.Order.BuyerID,
		SellerID:         d.Order.SellerID,
		Class:            string(d.Order.Class),
		Status:           string(d.Order.Status),
		PaymentMethod:    string(d.Order.PaymentMethod),
		PaymentStatus:    string(d.Order.PaymentStatus),
		SubtotalCents:    d.Order.SubtotalCents,
		ShippingFeeCents: d.Order.ShippingFeeCents,
		DiscountCents:    d.Order.DiscountCents,
		TotalCents:       d.Order.TotalCents,
		CreatedAt:        d.Order.CreatedAt,
	}
	for _, ln := range d.Lines {
		out.Lines = append(out.Lines, orderLineResp{
			ProductID:      ln.ProductID,
			ProductName:    ln.ProductName,
			Unit:           ln.Unit,
			UnitPriceCents: ln.UnitPriceCents,
			Qty:            ln.Qty,
			LineTotalCents: ln.LineTotalCents,
		})
	}
	for _, p := range d.Payments {
		out.Payments = append(out.Payments, paymentResp{
			ID:          p.ID,
			AmountCents: p.AmountCents,
			Gateway:     p.Gateway,
			TxCode:      p.TxCode,
			Status:      string(p.Status),
			PaidAt:      p.PaidAt,
		})
	}
	return out
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Get("/orders/{id}", h.getStatus)
	r.Get("/orders/{id}/detail", h.getDetail)
	r.Post("/orders/{id}/status", h.updateStatus)
	r.Post("/orders/{id}/cancel", h.cancel)
	r.Get("/products", h.listProducts)
}

type statusBody struct {
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
}

// getStatus serves from the Redis cache first, DB on miss.
func (h *OrdersHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	o, err := h.Orders.GetOrder(ctx, orderID)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.cacheStatus(ctx, o)
	writeJSON(w, http.StatusOK, statusBody{Status: string(o.Status), PaymentStatus: string(o.PaymentStatus)})
}

func (h *OrdersHandler) cacheStatus(ctx context.Context, o *orders.Order) {
	if h.Redis == nil {
		return
	}
	b, _ := json.Marshal(statusBody{Status: string(o.Status), PaymentStatus: string(o.PaymentStatus)})
	key := fmt.Sprintf(redisx.KeyOrderStatus, o.ID)
	_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
}

func (h *OrdersHandler) getDetail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	d, err := h.Orders.GetDetail(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResp(d))
}

type updateStatusReq struct {
	To string `json:"to"`
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.To == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing target status"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Lifecycle.Transition(ctx, actorFrom(r), chi.URLParam(r, "id"), orders.Status(req.To))
	if err != nil {
		writeErr(w, err)
		return
	}
	h.cacheStatus(ctx, o)
	writeJSON(w, http.StatusOK, statusBody{Status: string(o.Status), PaymentStatus: string(o.PaymentStatus)})
}

func (h *OrdersHandler) cancel(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Lifecycle.Cancel(ctx, actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	h.cacheStatus(ctx, o)
	writeJSON(w, http.StatusOK, statusBody{Status: string(o.Status), PaymentStatus: string(o.PaymentStatus)})
}

func (h *OrdersHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Catalog.ListProducts(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}
