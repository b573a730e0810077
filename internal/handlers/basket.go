package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pcforge/storefront-client/internal/models"
)

type basketResponse struct {
	Items []models.BasketItem `json:"items"`
	Count int                 `json:"count"`
	Total float64             `json:"total"`
}

// GetBasket handles GET /api/basket.
func (a *API) GetBasket(w http.ResponseWriter, r *http.Request) {
	a.writeBasket(w)
}

// AddBasketItem handles POST /api/basket/items.
func (a *API) AddBasketItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BuildID    int64   `json:"build_id"`
		Name       string  `json:"name"`
		Image      string  `json:"img"`
		TotalPrice float64 `json:"total_price"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.BuildID == 0 {
		writeError(w, http.StatusBadRequest, "build_id is required")
		return
	}

	a.Basket.AddItem(r.Context(), req.BuildID, req.Name, req.Image, req.TotalPrice)
	a.writeBasket(w)
}

// UpdateBasketQuantity handles PUT /api/basket/items/{buildID}.
func (a *API) UpdateBasketQuantity(w http.ResponseWriter, r *http.Request) {
	buildID, ok := buildIDParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Change int `json:"change"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	a.Basket.UpdateQuantity(r.Context(), buildID, req.Change)
	a.writeBasket(w)
}

// RemoveBasketItem handles DELETE /api/basket/items/{buildID}.
func (a *API) RemoveBasketItem(w http.ResponseWriter, r *http.Request) {
	buildID, ok := buildIDParam(w, r)
	if !ok {
		return
	}
	a.Basket.RemoveItem(r.Context(), buildID)
	a.writeBasket(w)
}

// ClearBasket handles DELETE /api/basket.
func (a *API) ClearBasket(w http.ResponseWriter, r *http.Request) {
	a.Basket.Clear(r.Context())
	a.writeBasket(w)
}

// SyncBasket handles POST /api/basket/sync: the explicit reconciliation with
// the server-authoritative basket.
func (a *API) SyncBasket(w http.ResponseWriter, r *http.Request) {
	if err := a.Basket.SyncWithServer(r.Context()); err != nil {
		writeStoreError(w, err)
		return
	}
	a.writeBasket(w)
}

// Checkout handles POST /api/basket/checkout: places an order for the
// current basket and clears it on success.
func (a *API) Checkout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	items := a.Basket.Items()
	orderItems := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		orderItems = append(orderItems, models.OrderItem{
			BuildID:   item.BuildID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	order, err := a.Session.PlaceOrder(r.Context(), req.Phone, orderItems)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	a.Basket.Clear(r.Context())
	writeJSON(w, http.StatusCreated, order)
}

func (a *API) writeBasket(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, basketResponse{
		Items: a.Basket.Items(),
		Count: a.Basket.Count(),
		Total: a.Basket.Total(),
	})
}

func buildIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	buildID, err := strconv.ParseInt(chi.URLParam(r, "buildID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid build id")
		return 0, false
	}
	return buildID, true
}
