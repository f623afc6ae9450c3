package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ariefcatur/farm-market-core.git/internal/buyer"
	"github.com/ariefcatur/farm-market-core.git/internal/catalog"
	"github.com/ariefcatur/farm-market-core.git/internal/checkout"
	"github.com/ariefcatur/farm-market-core.git/internal/orders"
	"github.com/ariefcatur/farm-market-core.git/internal/pricing"
	"github.com/ariefcatur/farm-market-core.git/internal/stock"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps the domain error taxonomy onto HTTP once, here.
func writeErr(w http.ResponseWriter, err error) {
	var oos *stock.OutOfStockError
	var it *orders.InvalidTransitionError

	switch {
	case errors.As(err, &oos):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":      "out of stock",
			"product_id": oos.ProductID,
			"requested":  oos.Requested,
			"available":  oos.Available,
		})
	case errors.As(err, &it):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": it.Error(),
			"from":  it.From,
			"to":    it.To,
		})
	case errors.Is(err, orders.ErrNotFound),
		errors.Is(err, buyer.ErrAddressNotFound),
		errors.Is(err, catalog.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, orders.ErrAccessDenied):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "access denied"})
	case errors.Is(err, stock.ErrConflict), errors.Is(err, orders.ErrConflict),
		errors.Is(err, orders.ErrCodeTaken):
		writeJSON(w, http.StatusConflict, map[string]any{"error": err.Error(), "retryable": true})
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrUnsellable),
		errors.Is(err, pricing.ErrCrossRegionWholesale),
		errors.Is(err, orders.ErrTotalMismatch),
		errors.Is(err, orders.ErrCodeMissing),
		errors.Is(err, orders.ErrCodeUnknown):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func actorFrom(r *http.Request) orders.Actor {
	return orders.Actor{
		UserID: r.Header.Get("X-User-Id"),
		Role:   orders.Role(r.Header.Get("X-User-Role")),
	}
}
