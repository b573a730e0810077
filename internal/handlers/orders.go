package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pcforge/storefront-client/internal/models"
)

// orderView augments an order with the derived prep countdown so the view
// layer never has to know the prep-duration rule.
type orderView struct {
	models.Order
	Number    int       `json:"number"`
	ReadyAt   time.Time `json:"ready_at"`
	Remaining string    `json:"remaining,omitempty"`
}

// GetOrders handles GET /api/orders. With ?reload=1 the history is refetched
// from the server first.
func (a *API) GetOrders(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("reload") == "1" {
		if err := a.Session.LoadOrders(r.Context()); err != nil {
			writeStoreError(w, err)
			return
		}
	}

	now := time.Now()
	orders := a.Session.Orders()
	views := make([]orderView, 0, len(orders))
	for i, order := range orders {
		// Orders are newest first, so the user-facing number counts down
		// from the total; it is derived, never stored.
		view := orderView{Order: order, Number: len(orders) - i, ReadyAt: order.ReadyAt()}
		if order.Status == models.OrderPreparing {
			view.Remaining = models.FormatCountdown(models.RemainingPrep(now, view.ReadyAt))
		}
		views = append(views, view)
	}
	writeJSON(w, http.StatusOK, views)
}

// CollectOrder handles PUT /api/orders/{orderID}/collect: the user picked the
// order up.
func (a *API) CollectOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid order id")
		return
	}
	if err := a.Session.MarkOrderCollected(r.Context(), orderID); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Order collected"})
}
