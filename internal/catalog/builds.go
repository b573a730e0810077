package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pcforge/storefront-client/internal/gateway"
	"github.com/pcforge/storefront-client/internal/models"
)

// FetchPredefinedBuilds lists the shop's ready-made builds for the home page.
func (s *Store) FetchPredefinedBuilds(ctx context.Context) ([]models.Build, error) {
	res, err := s.gw.Once(ctx, http.MethodGet, "/builds?predefined=true", nil, "")
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, gateway.DecodeError(res)
	}

	var builds []models.Build
	if err := decodeJSON(res.Body, &builds); err != nil {
		return nil, fmt.Errorf("malformed builds payload: %w", err)
	}
	for i := range builds {
		builds[i].TotalPrice = models.RoundPrice(builds[i].TotalPrice)
	}
	return builds, nil
}

// BuildComponents fetches the component list of a single build (shown on
// basket lines).
func (s *Store) BuildComponents(ctx context.Context, buildID int64) ([]models.Component, error) {
	path := fmt.Sprintf("/builds/%d/components", buildID)
	res, err := s.gw.Once(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, gateway.DecodeError(res)
	}

	var components []models.Component
	if err := decodeJSON(res.Body, &components); err != nil {
		return nil, fmt.Errorf("malformed components payload: %w", err)
	}
	for i := range components {
		components[i].Price = models.RoundPrice(components[i].Price)
	}
	return components, nil
}

// CreateBuild saves the current custom configuration as a user-created build
// on the server. The returned build is what basket lines and favorites
// reference.
func (s *Store) CreateBuild(ctx context.Context, name string) (models.Build, error) {
	selection := s.Selection()
	if !s.IsComplete() {
		return models.Build{}, fmt.Errorf("selection is incomplete")
	}

	ids := make([]int64, 0, len(models.Categories))
	for _, category := range models.Categories {
		ids = append(ids, selection[category].ID)
	}

	body := struct {
		Name         string  `json:"name"`
		TotalPrice   float64 `json:"total_price"`
		Components   []int64 `json:"components"`
		IsPredefined bool    `json:"is_predefined"`
	}{
		Name:         name,
		TotalPrice:   models.RoundPrice(s.TotalPrice()),
		Components:   ids,
		IsPredefined: false,
	}

	var build models.Build
	if err := s.gw.JSON(ctx, http.MethodPost, "/builds", body, &build); err != nil {
		return models.Build{}, err
	}
	build.TotalPrice = models.RoundPrice(build.TotalPrice)
	return build, nil
}

func decodeJSON(r io.Reader, dest interface{}) error {
	return json.NewDecoder(r).Decode(dest)
}
