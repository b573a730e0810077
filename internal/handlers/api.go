// Package handlers is the thin HTTP surface the view layer consumes. Every
// handler maps a request onto a single store operation and reports errors as
// a JSON {message} body; no business logic lives here.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pcforge/storefront-client/internal/basket"
	"github.com/pcforge/storefront-client/internal/catalog"
	"github.com/pcforge/storefront-client/internal/events"
	"github.com/pcforge/storefront-client/internal/gateway"
	"github.com/pcforge/storefront-client/internal/session"
	"github.com/pcforge/storefront-client/pkg/utils"
)

// API bundles the stores the handlers dispatch into.
type API struct {
	Session *session.Store
	Basket  *basket.Store
	Catalog *catalog.Store
	Hub     *events.Hub
}

func NewAPI(s *session.Store, b *basket.Store, c *catalog.Store, hub *events.Hub) *API {
	return &API{Session: s, Basket: b, Catalog: c, Hub: hub}
}

type errorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

// writeStoreError maps a store error onto an HTTP status for the view layer.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gateway.ErrSessionExpired),
		errors.Is(err, session.ErrInvalidPassword),
		errors.Is(err, session.ErrUserNotFound),
		errors.Is(err, session.ErrUnauthorized),
		errors.Is(err, session.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, utils.ErrInvalidPhone):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		var apiErr *gateway.APIError
		if errors.As(err, &apiErr) {
			message := apiErr.Message
			if message == "" {
				message = http.StatusText(apiErr.Status)
			}
			writeError(w, apiErr.Status, message)
			return
		}
		// Transport failures and everything else: the backend could not be
		// reached or answered garbage.
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
