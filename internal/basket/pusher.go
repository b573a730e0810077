package basket

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/pcforge/storefront-client/internal/models"
)

// pusher serializes background basket pushes through a single slot holding
// only the latest snapshot. A new mutation supersedes any queued push, so a
// burst of edits produces at most one in-flight request plus one pending
// snapshot instead of a race of concurrent pushes.
type pusher struct {
	mu      sync.Mutex
	pending []models.BasketItem
	queued  bool
	running bool

	push    func(ctx context.Context, items []models.BasketItem) error
	timeout time.Duration
}

func newPusher(push func(ctx context.Context, items []models.BasketItem) error) *pusher {
	return &pusher{push: push, timeout: 15 * time.Second}
}

// schedule replaces the pending snapshot and starts the worker if idle.
func (p *pusher) schedule(items []models.BasketItem) {
	p.mu.Lock()
	p.pending = items
	p.queued = true
	start := !p.running
	if start {
		p.running = true
	}
	p.mu.Unlock()

	if start {
		go p.run()
	}
}

func (p *pusher) run() {
	for {
		p.mu.Lock()
		if !p.queued {
			p.running = false
			p.mu.Unlock()
			return
		}
		items := p.pending
		p.pending = nil
		p.queued = false
		p.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		if err := p.push(ctx, items); err != nil {
			// Best effort only: the local mutation already committed.
			log.Printf("basket: background sync failed: %v", err)
		}
		cancel()
	}
}
