package session

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"sort"

	"github.com/pcforge/storefront-client/internal/cache"
	"github.com/pcforge/storefront-client/internal/models"
)

// serverBasketLine is the wire shape of GET /basket and POST /basket/sync
// responses. The server's cart-line id becomes the local cart reference.
type serverBasketLine struct {
	ID         int64   `json:"id"`
	BuildID    int64   `json:"build_id"`
	Name       string  `json:"name"`
	ImageURL   string  `json:"image_url"`
	TotalPrice float64 `json:"total_price"`
	Quantity   int     `json:"quantity"`
}

// MapServerBasket converts server basket lines into local basket items.
func MapServerBasket(lines []serverBasketLine) []models.BasketItem {
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

// fetchFavorites loads the favorites list during hydration. Failure degrades
// to an empty list; the cached mirror is only rewritten on success.
func (s *Store) fetchFavorites(ctx context.Context, token, userID string) []models.Build {
	var favorites []models.Build
	if err := s.hydrateGet(ctx, "/favorites", token, &favorites); err != nil {
		log.Printf("session: failed to load favorites: %v", err)
		return nil
	}
	if err := s.cache.Set(ctx, cache.KeyFavorites(userID), favorites); err != nil {
		log.Printf("session: failed to mirror favorites: %v", err)
	}
	return favorites
}

// fetchOrders loads the order history during hydration, newest first.
func (s *Store) fetchOrders(ctx context.Context, token, userID string) []models.Order {
	var orders []models.Order
	if err := s.hydrateGet(ctx, "/orders", token, &orders); err != nil {
		log.Printf("session: failed to load orders: %v", err)
		return nil
	}
	sortOrders(orders)
	if err := s.cache.Set(ctx, cache.KeyOrders(userID), orders); err != nil {
		log.Printf("session: failed to mirror orders: %v", err)
	}
	return orders
}

// fetchServerBasket replaces the basket store with the server snapshot. On
// any failure the basket keeps its locally hydrated contents.
func (s *Store) fetchServerBasket(ctx context.Context, token string) {
	if s.basket == nil {
		return
	}
	var lines []serverBasketLine
	if err := s.hydrateGet(ctx, "/basket", token, &lines); err != nil {
		log.Printf("session: failed to load server basket: %v", err)
		return
	}
	s.basket.SetItems(ctx, MapServerBasket(lines))
}

// hydrateGet is a bearer GET outside the refresh wrapper: hydration runs
// before the session commits, so a 401 here must not trigger refresh logic.
func (s *Store) hydrateGet(ctx context.Context, path, token string, dest interface{}) error {
	res, err := s.gw.Once(ctx, http.MethodGet, path, nil, token)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		io.Copy(io.Discard, res.Body)
		return &hydrationError{status: res.StatusCode, path: path}
	}
	return decodeJSON(res.Body, dest)
}

type hydrationError struct {
	status int
	path   string
}

func (e *hydrationError) Error() string {
	return "GET " + e.path + " returned status " + http.StatusText(e.status)
}

func sortOrders(orders []models.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

func decodeJSON(r io.Reader, dest interface{}) error {
	return json.NewDecoder(r).Decode(dest)
}
