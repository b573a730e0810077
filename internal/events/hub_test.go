package events

import (
	"testing"
	"time"
)

func TestPublishReachesEverySubscriber(t *testing.T) {
	h := NewHub()

	a, cancelA := h.Subscribe()
	b, cancelB := h.Subscribe()
	defer cancelA()
	defer cancelB()

	h.Publish(TypeBasketChanged, map[string]int{"count": 3})

	for name, ch := range map[string]<-chan Event{"a": a, "b": b} {
		select {
		case evt := <-ch:
			if evt.Type != TypeBasketChanged {
				t.Errorf("subscriber %s got type %q", name, evt.Type)
			}
			if evt.Timestamp.IsZero() {
				t.Errorf("subscriber %s got zero timestamp", name)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %s never received the event", name)
		}
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe()

	cancel()
	cancel() // safe to call twice

	if _, open := <-ch; open {
		t.Error("channel still open after unsubscribe")
	}

	// Publishing after unsubscribe must not panic on the closed channel.
	h.Publish(TypeSessionChanged, nil)
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	h := NewHub()
	_, cancel := h.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		// More events than the subscriber buffer holds.
		for i := 0; i < 100; i++ {
			h.Publish(TypeOrdersChanged, nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}

func TestPublishOnNilHub(t *testing.T) {
	var h *Hub
	h.Publish(TypeCatalogChanged, nil) // must not panic
}
