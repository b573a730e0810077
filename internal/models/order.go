package models

import (
	"fmt"
	"time"
)

// OrderStatus is the server-driven order lifecycle state. The only
// client-initiated transition is ready -> completed when the user marks an
// order as collected.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// PrepDuration is how long an order stays in "preparing" before it is
// expected to be ready for pickup.
const PrepDuration = 30 * time.Minute

// OrderItem is one line of a placed order.
type OrderItem struct {
	BuildID   int64   `json:"build_id"`
	Name      string  `json:"name,omitempty"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// Order is a placed order. The server is authoritative; the per-user cached
// copy is an offline fallback only.
type Order struct {
	ID        int64       `json:"id"`
	Phone     string      `json:"phone"`
	Items     []OrderItem `json:"items"`
	Total     float64     `json:"total"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

// ReadyAt is when a preparing order is expected to be ready.
func (o Order) ReadyAt() time.Time {
	return o.CreatedAt.Add(PrepDuration)
}

// RemainingPrep returns the time left until readyAt, clamped at zero. The
// store holds only readyAt; callers derive the countdown on demand instead of
// ticking stored state.
func RemainingPrep(now, readyAt time.Time) time.Duration {
	d := readyAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// FormatCountdown renders a remaining duration as MM:SS for display.
func FormatCountdown(d time.Duration) string {
	if d <= 0 {
		return "00:00"
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", (total/60)%60, total%60)
}
