package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pcforge/storefront-client/internal/cache"
	"github.com/pcforge/storefront-client/internal/events"
	"github.com/pcforge/storefront-client/internal/gateway"
	"github.com/pcforge/storefront-client/internal/models"
)

func newTestStore(backend string) (*Store, *cache.MemoryStore) {
	c := cache.NewMemoryStore()
	s := New(c, gateway.New(backend, nil), events.NewHub())
	s.retryUnit = time.Millisecond
	return s, c
}

func catalogPayload() models.Catalog {
	return models.Catalog{
		models.CategoryProcessor: {
			{ID: 1, Category: models.CategoryProcessor, Name: "Ryzen 5", Price: 249.99, Socket: "AM5"},
			{ID: 2, Category: models.CategoryProcessor, Name: "Core i5", Price: 230.01, Socket: "LGA1700"},
		},
		models.CategoryMotherboard: {
			{ID: 10, Category: models.CategoryMotherboard, Name: "B650", Price: 180, Socket: "AM5"},
			{ID: 11, Category: models.CategoryMotherboard, Name: "Z790", Price: 260, Socket: "LGA1700"},
		},
	}
}

func TestFetchCatalogRoundsPrices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/components" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(catalogPayload())
	}))
	defer srv.Close()

	s, _ := newTestStore(srv.URL)
	if err := s.FetchCatalog(context.Background()); err != nil {
		t.Fatalf("FetchCatalog: %v", err)
	}

	cpus := s.Catalog()[models.CategoryProcessor]
	if len(cpus) != 2 {
		t.Fatalf("got %d processors, want 2", len(cpus))
	}
	if cpus[0].Price != 250 || cpus[1].Price != 230 {
		t.Errorf("prices = %v/%v, want 250/230 (rounded on receipt)", cpus[0].Price, cpus[1].Price)
	}
}

func TestFetchCatalogRetriesThenFails(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s, _ := newTestStore(srv.URL)
	if err := s.FetchCatalog(context.Background()); err == nil {
		t.Fatal("FetchCatalog returned nil with no cache to fall back on")
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("backend saw %d attempts, want 3", got)
	}
}

func TestFetchCatalogServesStaleSnapshotAfterFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s, c := newTestStore(srv.URL)
	ctx := context.Background()
	if err := c.Set(ctx, cache.KeyCatalog, catalogPayload()); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	if err := s.FetchCatalog(ctx); err != nil {
		t.Fatalf("FetchCatalog: %v (stale fallback should absorb the outage)", err)
	}
	if got := s.Catalog(); len(got[models.CategoryProcessor]) != 2 {
		t.Errorf("Catalog = %+v, want cached snapshot", got)
	}
}

func TestComponentsForFiltersMotherboardsBySocket(t *testing.T) {
	s, _ := newTestStore("http://unused")
	s.mu.Lock()
	s.data = catalogPayload()
	s.mu.Unlock()

	// No processor chosen: every board is selectable.
	if got := s.ComponentsFor(models.CategoryMotherboard); len(got) != 2 {
		t.Errorf("unfiltered boards = %d, want 2", len(got))
	}

	s.Select(models.CategoryProcessor, models.Component{ID: 1, Category: models.CategoryProcessor, Socket: "AM5"})

	boards := s.ComponentsFor(models.CategoryMotherboard)
	if len(boards) != 1 || boards[0].Socket != "AM5" {
		t.Errorf("filtered boards = %+v, want only AM5", boards)
	}

	// Other categories never filter.
	if got := s.ComponentsFor(models.CategoryProcessor); len(got) != 2 {
		t.Errorf("processors = %d, want 2", len(got))
	}
}

func TestIsCompleteAndTotalPrice(t *testing.T) {
	s, _ := newTestStore("http://unused")

	if s.IsComplete() {
		t.Error("IsComplete = true for empty selection")
	}

	sel := models.Selection{}
	for i, category := range models.Categories {
		sel[category] = models.Component{ID: int64(i + 1), Category: category, Price: 100}
	}
	s.SetSelection(sel)

	if !s.IsComplete() {
		t.Error("IsComplete = false with every category chosen")
	}
	if got := s.TotalPrice(); got != float64(100*len(models.Categories)) {
		t.Errorf("TotalPrice = %v, want %v", got, 100*len(models.Categories))
	}

	s.ClearSelection()
	if s.IsComplete() || s.TotalPrice() != 0 {
		t.Error("ClearSelection did not reset the configurator")
	}
}

func TestSetSelectionRoundsPrices(t *testing.T) {
	s, _ := newTestStore("http://unused")
	s.Select(models.CategoryProcessor, models.Component{ID: 1, Price: 249.5})

	if got := s.Selection()[models.CategoryProcessor].Price; got != 250 {
		t.Errorf("selected price = %v, want 250", got)
	}
}

func TestSelectionKeyIsOrderInsensitive(t *testing.T) {
	a := models.Selection{
		models.CategoryProcessor:   {ID: 30},
		models.CategoryMotherboard: {ID: 4},
		models.CategoryMemory:      {ID: 12},
	}
	if got, want := SelectionKey(a), "4,12,30"; got != want {
		t.Errorf("SelectionKey = %q, want %q", got, want)
	}
	if SelectionKey(models.Selection{}) != "" {
		t.Error("empty selection should produce an empty key")
	}
}

func TestMatchFavorite(t *testing.T) {
	s, _ := newTestStore("http://unused")

	favorites := []models.Build{
		{ID: 1, Name: "Other", Components: []models.Component{{ID: 99}}},
		{ID: 2, Name: "Mine", Components: []models.Component{{ID: 4}, {ID: 30}}},
	}

	if got := s.MatchFavorite(favorites); got != nil {
		t.Errorf("empty selection matched %+v", got)
	}

	s.SetSelection(models.Selection{
		models.CategoryProcessor:   {ID: 30},
		models.CategoryMotherboard: {ID: 4},
	})

	got := s.MatchFavorite(favorites)
	if got == nil || got.ID != 2 {
		t.Errorf("MatchFavorite = %+v, want build 2", got)
	}
}

func TestLoadBuildSelection(t *testing.T) {
	s, _ := newTestStore("http://unused")

	build := models.Build{
		ID: 7,
		Components: []models.Component{
			{ID: 1, Category: models.CategoryProcessor, Price: 250},
			{ID: 10, Category: models.CategoryMotherboard, Price: 180},
		},
	}
	s.LoadBuildSelection(build)

	sel := s.Selection()
	if len(sel) != 2 {
		t.Fatalf("selection has %d entries, want 2", len(sel))
	}
	if sel[models.CategoryProcessor].ID != 1 || sel[models.CategoryMotherboard].ID != 10 {
		t.Errorf("selection = %+v", sel)
	}
}
