package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pcforge/storefront-client/internal/models"
)

// GetCatalog handles GET /api/components. The catalog is fetched lazily on
// first request and refetched on demand with ?refresh=1.
func (a *API) GetCatalog(w http.ResponseWriter, r *http.Request) {
	data := a.Catalog.Catalog()
	if len(data) == 0 || r.URL.Query().Get("refresh") == "1" {
		if err := a.Catalog.FetchCatalog(r.Context()); err != nil {
			writeStoreError(w, err)
			return
		}
		data = a.Catalog.Catalog()
	}
	writeJSON(w, http.StatusOK, data)
}

// GetCategoryComponents handles GET /api/components/{category}: the
// selectable list with compatibility filtering applied.
func (a *API) GetCategoryComponents(w http.ResponseWriter, r *http.Request) {
	category := models.Category(chi.URLParam(r, "category"))
	writeJSON(w, http.StatusOK, a.Catalog.ComponentsFor(category))
}

type selectionResponse struct {
	Selection models.Selection `json:"selection"`
	Complete  bool             `json:"complete"`
	Total     float64          `json:"total"`
}

// GetSelection handles GET /api/selection.
func (a *API) GetSelection(w http.ResponseWriter, r *http.Request) {
	a.writeSelection(w)
}

// SetSelection handles PUT /api/selection: wholesale replacement, used for
// both single picks and loading a build into the configurator.
func (a *API) SetSelection(w http.ResponseWriter, r *http.Request) {
	var selection models.Selection
	if !decodeBody(w, r, &selection) {
		return
	}
	a.Catalog.SetSelection(selection)
	a.writeSelection(w)
}

// ClearSelection handles DELETE /api/selection.
func (a *API) ClearSelection(w http.ResponseWriter, r *http.Request) {
	a.Catalog.ClearSelection()
	a.writeSelection(w)
}

// GetPredefinedBuilds handles GET /api/builds.
func (a *API) GetPredefinedBuilds(w http.ResponseWriter, r *http.Request) {
	builds, err := a.Catalog.FetchPredefinedBuilds(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, builds)
}

// GetBuildComponents handles GET /api/builds/{buildID}/components.
func (a *API) GetBuildComponents(w http.ResponseWriter, r *http.Request) {
	buildID, err := strconv.ParseInt(chi.URLParam(r, "buildID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid build id")
		return
	}
	components, err := a.Catalog.BuildComponents(r.Context(), buildID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, components)
}

// CreateBuild handles POST /api/builds: saves the current complete selection
// as a user-created build.
func (a *API) CreateBuild(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Build name is required")
		return
	}
	if !a.Catalog.IsComplete() {
		writeError(w, http.StatusBadRequest, "Selection is incomplete")
		return
	}

	build, err := a.Catalog.CreateBuild(r.Context(), req.Name)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, build)
}

func (a *API) writeSelection(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, selectionResponse{
		Selection: a.Catalog.Selection(),
		Complete:  a.Catalog.IsComplete(),
		Total:     a.Catalog.TotalPrice(),
	})
}
