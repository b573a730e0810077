package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pcforge/storefront-client/internal/catalog"
	"github.com/pcforge/storefront-client/internal/models"
)

// GetFavorites handles GET /api/favorites. With ?reload=1 the list is
// refetched from the server first.
func (a *API) GetFavorites(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("reload") == "1" {
		if err := a.Session.ReloadFavorites(r.Context()); err != nil {
			writeStoreError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, a.Session.Favorites())
}

// AddFavorite handles POST /api/favorites.
func (a *API) AddFavorite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BuildID int64 `json:"build_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.BuildID == 0 {
		writeError(w, http.StatusBadRequest, "build_id is required")
		return
	}

	saved, err := a.Session.AddFavorite(r.Context(), req.BuildID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// RemoveFavorite handles DELETE /api/favorites/{favoriteID}.
func (a *API) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	favoriteID, err := strconv.ParseInt(chi.URLParam(r, "favoriteID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid favorite id")
		return
	}
	if err := a.Session.RemoveFavorite(r.Context(), favoriteID); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Favorite removed"})
}

// UpdateFavorite handles PUT /api/favorites/{buildID}: replaces a saved
// build's definition.
func (a *API) UpdateFavorite(w http.ResponseWriter, r *http.Request) {
	buildID, err := strconv.ParseInt(chi.URLParam(r, "buildID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid build id")
		return
	}
	var updated models.Build
	if !decodeBody(w, r, &updated) {
		return
	}

	saved, err := a.Session.UpdateFavorite(r.Context(), buildID, updated)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// MatchFavorite handles GET /api/favorites/match: which favorite, if any,
// matches the current configurator selection.
func (a *API) MatchFavorite(w http.ResponseWriter, r *http.Request) {
	match := a.Catalog.MatchFavorite(a.Session.Favorites())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"match": match,
		"key":   catalog.SelectionKey(a.Catalog.Selection()),
	})
}
