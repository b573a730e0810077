package session

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/pcforge/storefront-client/internal/cache"
	"github.com/pcforge/storefront-client/internal/events"
	"github.com/pcforge/storefront-client/internal/models"
	"github.com/pcforge/storefront-client/pkg/utils"
)

// Orders returns a copy of the order history, newest first.
func (s *Store) Orders() []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// LoadOrders refetches the order history from the server. The server copy is
// authoritative; the per-user cache is rewritten as an offline fallback.
func (s *Store) LoadOrders(ctx context.Context) error {
	var orders []models.Order
	if err := s.gw.JSON(ctx, http.MethodGet, "/orders", nil, &orders); err != nil {
		return err
	}
	sortOrders(orders)

	s.mu.Lock()
	s.orders = orders
	s.mu.Unlock()

	s.persistOrders(ctx)
	return nil
}

// PlaceOrder submits a new order for the given basket lines. The phone number
// must carry exactly 11 digits. On success the order is appended locally and
// mirrored; the caller is expected to clear the basket.
func (s *Store) PlaceOrder(ctx context.Context, phone string, items []models.OrderItem) (models.Order, error) {
	if _, err := utils.NormalizePhone(phone); err != nil {
		return models.Order{}, err
	}
	if len(items) == 0 {
		return models.Order{}, fmt.Errorf("cannot place an empty order")
	}

	body := struct {
		Phone string             `json:"phone"`
		Items []models.OrderItem `json:"items"`
	}{Phone: phone, Items: items}

	var order models.Order
	if err := s.gw.JSON(ctx, http.MethodPost, "/orders", body, &order); err != nil {
		return models.Order{}, err
	}

	s.mu.Lock()
	s.orders = append([]models.Order{order}, s.orders...)
	s.mu.Unlock()

	s.persistOrders(ctx)
	return order, nil
}

// MarkOrderCollected performs the one client-initiated status transition:
// ready -> completed, after the user picks the order up.
func (s *Store) MarkOrderCollected(ctx context.Context, orderID int64) error {
	path := fmt.Sprintf("/orders/%d/complete", orderID)
	if err := s.gw.JSON(ctx, http.MethodPut, path, nil, nil); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.orders {
		if s.orders[i].ID == orderID {
			s.orders[i].Status = models.OrderCompleted
		}
	}
	s.mu.Unlock()

	s.persistOrders(ctx)
	return nil
}

func (s *Store) persistOrders(ctx context.Context) {
	s.mu.Lock()
	user := s.user
	orders := make([]models.Order, len(s.orders))
	copy(orders, s.orders)
	s.mu.Unlock()

	if user != nil {
		if err := s.cache.Set(ctx, cache.KeyOrders(user.ID), orders); err != nil {
			log.Printf("session: failed to mirror orders: %v", err)
		}
	}
	s.hub.Publish(events.TypeOrdersChanged, map[string]int{"count": len(orders)})
}
