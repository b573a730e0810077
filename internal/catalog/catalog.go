// Package catalog holds the component catalog and the user's in-progress
// configuration: one selected component per category. The catalog fetch is
// the only retried call in the client, and the last good payload is kept as a
// stale fallback so an outage degrades to yesterday's catalog instead of an
// empty page.
package catalog

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pcforge/storefront-client/internal/cache"
	"github.com/pcforge/storefront-client/internal/events"
	"github.com/pcforge/storefront-client/internal/gateway"
	"github.com/pcforge/storefront-client/internal/models"
)

const (
	fetchAttempts = 3
	// Between attempts the delay grows linearly: attempt x retryUnit.
	defaultRetryUnit = time.Second
)

// Store is the catalog/config store.
type Store struct {
	mu        sync.Mutex
	data      models.Catalog
	selection models.Selection

	cache     cache.Store
	gw        *gateway.Gateway
	hub       *events.Hub
	retryUnit time.Duration
}

// New builds the catalog store. gw is shared with the session store so build
// creation rides the authenticated path.
func New(c cache.Store, gw *gateway.Gateway, hub *events.Hub) *Store {
	return &Store{
		cache:     c,
		gw:        gw,
		hub:       hub,
		selection: models.Selection{},
		retryUnit: defaultRetryUnit,
	}
}

// FetchCatalog loads the component catalog, retrying up to three times with
// linearly increasing backoff. Prices are rounded to whole currency units on
// receipt. After the final failure a cached snapshot is served if one exists.
func (s *Store) FetchCatalog(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= fetchAttempts; attempt++ {
		catalog, err := s.fetchOnce(ctx)
		if err == nil {
			s.mu.Lock()
			s.data = catalog
			s.mu.Unlock()

			if err := s.cache.Set(ctx, cache.KeyCatalog, catalog); err != nil {
				log.Printf("catalog: failed to mirror catalog: %v", err)
			}
			s.hub.Publish(events.TypeCatalogChanged, nil)
			return nil
		}
		lastErr = err

		if attempt < fetchAttempts {
			select {
			case <-time.After(time.Duration(attempt) * s.retryUnit):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	// Stale fallback beats an empty catalog.
	var cached models.Catalog
	if ok, _ := s.cache.Get(ctx, cache.KeyCatalog, &cached); ok {
		log.Printf("catalog: serving cached snapshot after fetch failure: %v", lastErr)
		s.mu.Lock()
		s.data = cached
		s.mu.Unlock()
		s.hub.Publish(events.TypeCatalogChanged, nil)
		return nil
	}
	return fmt.Errorf("catalog fetch failed after %d attempts: %w", fetchAttempts, lastErr)
}

func (s *Store) fetchOnce(ctx context.Context) (models.Catalog, error) {
	res, err := s.gw.Once(ctx, http.MethodGet, "/components", nil, "")
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, gateway.DecodeError(res)
	}

	var catalog models.Catalog
	if err := decodeJSON(res.Body, &catalog); err != nil {
		return nil, fmt.Errorf("malformed catalog payload: %w", err)
	}
	for category := range catalog {
		for i := range catalog[category] {
			catalog[category][i].Price = models.RoundPrice(catalog[category][i].Price)
		}
	}
	return catalog, nil
}

// Catalog returns the current (possibly stale) catalog.
func (s *Store) Catalog() models.Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(models.Catalog, len(s.data))
	for category, items := range s.data {
		list := make([]models.Component, len(items))
		copy(list, items)
		out[category] = list
	}
	return out
}

// ComponentsFor lists the selectable components of a category. Motherboards
// are filtered to the selected processor's socket when a processor is chosen;
// every other category (and motherboards without a processor) is unfiltered.
func (s *Store) ComponentsFor(category models.Category) []models.Component {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.data[category]
	if category != models.CategoryMotherboard {
		return copyComponents(items)
	}
	cpu, ok := s.selection[models.CategoryProcessor]
	if !ok || cpu.Socket == "" {
		return copyComponents(items)
	}

	filtered := make([]models.Component, 0, len(items))
	for _, mb := range items {
		if mb.Socket == cpu.Socket {
			filtered = append(filtered, mb)
		}
	}
	return filtered
}

// Selection returns a copy of the current category -> component mapping.
func (s *Store) Selection() models.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(models.Selection, len(s.selection))
	for category, comp := range s.selection {
		out[category] = comp
	}
	return out
}

// SetSelection replaces the selection wholesale. Used both for single picks
// (the caller sends the amended mapping) and for loading an existing build
// into the configurator.
func (s *Store) SetSelection(selection models.Selection) {
	s.mu.Lock()
	s.selection = make(models.Selection, len(selection))
	for category, comp := range selection {
		comp.Price = models.RoundPrice(comp.Price)
		s.selection[category] = comp
	}
	s.mu.Unlock()
}

// Select amends the selection with a single category pick.
func (s *Store) Select(category models.Category, comp models.Component) {
	sel := s.Selection()
	sel[category] = comp
	s.SetSelection(sel)
}

// ClearSelection resets the configurator.
func (s *Store) ClearSelection() {
	s.SetSelection(models.Selection{})
}

// LoadBuildSelection loads an existing build's components into the selection
// (the "edit this build" flow).
func (s *Store) LoadBuildSelection(build models.Build) {
	sel := make(models.Selection, len(build.Components))
	for _, comp := range build.Components {
		sel[comp.Category] = comp
	}
	s.SetSelection(sel)
}

// IsComplete reports whether every category has a chosen component.
func (s *Store) IsComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, category := range models.Categories {
		if _, ok := s.selection[category]; !ok {
			return false
		}
	}
	return true
}

// TotalPrice sums the selected components' prices; unselected categories
// contribute zero.
func (s *Store) TotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum float64
	for _, comp := range s.selection {
		sum += comp.Price
	}
	return sum
}

// SelectionKey builds the order-insensitive identity key for a selection:
// the sorted component ids joined with commas. Known limitation carried from
// the original behavior: repeated ids collapse, so the key is not a true
// multiset fingerprint.
func SelectionKey(selection models.Selection) string {
	ids := make([]int64, 0, len(selection))
	for _, comp := range selection {
		ids = append(ids, comp.ID)
	}
	return joinSortedIDs(ids)
}

// BuildKey is SelectionKey over a build's component list.
func BuildKey(build models.Build) string {
	ids := make([]int64, 0, len(build.Components))
	for _, comp := range build.Components {
		ids = append(ids, comp.ID)
	}
	return joinSortedIDs(ids)
}

// MatchFavorite finds the favorite whose component set matches the current
// selection, if any.
func (s *Store) MatchFavorite(favorites []models.Build) *models.Build {
	key := SelectionKey(s.Selection())
	if key == "" {
		return nil
	}
	for i := range favorites {
		if BuildKey(favorites[i]) == key {
			return &favorites[i]
		}
	}
	return nil
}

func joinSortedIDs(ids []int64) string {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func copyComponents(items []models.Component) []models.Component {
	out := make([]models.Component, len(items))
	copy(out, items)
	return out
}
