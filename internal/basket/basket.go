// Package basket holds the basket line items keyed by build id. Every
// mutation commits locally first: the in-memory list and the per-user cache
// mirror change together, then a best-effort server push is scheduled. The
// server copy only overwrites local state through an explicit sync.
package basket

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/pcforge/storefront-client/internal/cache"
	"github.com/pcforge/storefront-client/internal/events"
	"github.com/pcforge/storefront-client/internal/gateway"
	"github.com/pcforge/storefront-client/internal/models"
)

// Identity resolves the namespace for the per-user basket mirror and whether
// a server push is worth attempting. Implemented by the session store.
type Identity interface {
	CurrentUserID(ctx context.Context) string
	Authenticated() bool
}

// Store is the basket store. Invariants after every operation: at most one
// line per build id, and every stored quantity is >= 1.
type Store struct {
	mu    sync.Mutex
	items []models.BasketItem

	cache  cache.Store
	id     Identity
	gw     *gateway.Gateway
	hub    *events.Hub
	pusher *pusher
}

// New builds the basket store. gw is the authenticated gateway shared with
// the session store.
func New(c cache.Store, id Identity, gw *gateway.Gateway, hub *events.Hub) *Store {
	s := &Store{cache: c, id: id, gw: gw, hub: hub}
	s.pusher = newPusher(s.pushToServer)
	return s
}

// AddItem adds one unit of a build. An existing line wins: its quantity is
// incremented and the supplied name/image/price are ignored.
func (s *Store) AddItem(ctx context.Context, buildID int64, name, image string, unitPrice float64) {
	s.mu.Lock()
	found := false
	for i := range s.items {
		if s.items[i].BuildID == buildID {
			s.items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		s.items = append(s.items, models.BasketItem{
			BuildID:   buildID,
			Name:      name,
			Image:     image,
			UnitPrice: unitPrice,
			Quantity:  1,
		})
	}
	s.mu.Unlock()

	s.persist(ctx)
}

// UpdateQuantity adds delta to a line's quantity. A quantity driven to zero
// or below removes the line; a missing build id is a no-op (the cache is
// still rewritten, matching mutation semantics).
func (s *Store) UpdateQuantity(ctx context.Context, buildID int64, delta int) {
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].BuildID == buildID {
			s.items[i].Quantity += delta
			if s.items[i].Quantity <= 0 {
				s.items = append(s.items[:i], s.items[i+1:]...)
			}
			break
		}
	}
	s.mu.Unlock()

	s.persist(ctx)
}

// RemoveItem drops a line entirely regardless of quantity.
func (s *Store) RemoveItem(ctx context.Context, buildID int64) {
	s.mu.Lock()
	kept := s.items[:0]
	for _, item := range s.items {
		if item.BuildID != buildID {
			kept = append(kept, item)
		}
	}
	s.items = kept
	s.mu.Unlock()

	s.persist(ctx)
}

// Clear empties the basket.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()

	s.persist(ctx)
}

// SetItems replaces the basket wholesale (server snapshot during session
// hydration) and persists like any other mutation.
func (s *Store) SetItems(ctx context.Context, items []models.BasketItem) {
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()

	s.persist(ctx)
}

// LoadForUser replaces the in-memory list with the active user's cached
// basket (or empty). Used at startup and on user switch; never pushes.
func (s *Store) LoadForUser(ctx context.Context) error {
	userID := s.id.CurrentUserID(ctx)

	var items []models.BasketItem
	if _, err := s.cache.Get(ctx, cache.KeyBasket(userID), &items); err != nil {
		return err
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()

	s.hub.Publish(events.TypeBasketChanged, map[string]int{"count": s.Count()})
	return nil
}

// SyncWithServer posts the local list to the sync endpoint and, on success,
// replaces it with the server's canonical lines. On failure the local list
// stays untouched and remains the source of truth until the next sync.
func (s *Store) SyncWithServer(ctx context.Context) error {
	snapshot := s.Items()

	body := struct {
		Items []models.BasketItem `json:"items"`
	}{Items: snapshot}

	var lines []serverLine
	if err := s.gw.JSON(ctx, http.MethodPost, "/basket/sync", body, &lines); err != nil {
		return err
	}

	canonical := mapServerLines(lines)

	s.mu.Lock()
	s.items = canonical
	s.mu.Unlock()

	s.persistCacheOnly(ctx)
	return nil
}

// Items returns a copy of the basket lines.
func (s *Store) Items() []models.BasketItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.BasketItem, len(s.items))
	copy(out, s.items)
	return out
}

// Count is the total quantity across all lines.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, item := range s.items {
		n += item.Quantity
	}
	return n
}

// Total is the basket's price total (unit price x quantity per line).
func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum float64
	for _, item := range s.items {
		sum += item.UnitPrice * float64(item.Quantity)
	}
	return sum
}

// persist runs after every mutation: the cache mirror is rewritten
// synchronously, then a coalesced background push is scheduled when a token
// is present. Push failures never roll back the local mutation.
func (s *Store) persist(ctx context.Context) {
	s.persistCacheOnly(ctx)

	if s.id.Authenticated() {
		s.pusher.schedule(s.Items())
	}
}

func (s *Store) persistCacheOnly(ctx context.Context) {
	userID := s.id.CurrentUserID(ctx)
	items := s.Items()

	if err := s.cache.Set(ctx, cache.KeyBasket(userID), items); err != nil {
		log.Printf("basket: failed to mirror basket for %s: %v", userID, err)
	}
	s.hub.Publish(events.TypeBasketChanged, map[string]int{"count": s.Count()})
}

// pushToServer is the pusher's work function: a plain sync call whose
// canonical response is discarded. Only an explicit SyncWithServer
// reconciles local state from the server.
func (s *Store) pushToServer(ctx context.Context, items []models.BasketItem) error {
	body := struct {
		Items []models.BasketItem `json:"items"`
	}{Items: items}
	return s.gw.JSON(ctx, http.MethodPost, "/basket/sync", body, nil)
}

type serverLine struct {
	ID         int64   `json:"id"`
	BuildID    int64   `json:"build_id"`
	Name       string  `json:"name"`
	ImageURL   string  `json:"image_url"`
	TotalPrice float64 `json:"total_price"`
	Quantity   int     `json:"quantity"`
}

func mapServerLines(lines []serverLine) []models.BasketItem {
	items := make([]models.BasketItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, models.BasketItem{
			BuildID:   l.BuildID,
			CartID:    l.ID,
			Name:      l.Name,
			Image:     l.ImageURL,
			UnitPrice: l.TotalPrice,
			Quantity:  l.Quantity,
		})
	}
	return items
}
