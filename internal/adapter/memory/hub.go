package memory

import (
	"context"
	"sync"

	"github.com/couchcryptid/weatherwise-service/internal/domain"
)

const subscriptionBuffer = 16

// Hub fans theme signals out to every open subscription in the process.
type Hub struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{})}
}

// Subscribe opens a subscription that receives every signal published after it.
func (h *Hub) Subscribe() *Subscription {
	s := &Subscription{hub: h, ch: make(chan domain.ThemeSignal, subscriptionBuffer)}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	return s
}

// PublishTheme delivers sig to all subscriptions. A subscriber whose buffer is
// full misses the signal rather than blocking the publisher.
func (h *Hub) PublishTheme(_ context.Context, sig domain.ThemeSignal) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs {
		select {
		case s.ch <- sig:
		default:
		}
	}
	return nil
}

// Subscription is one consumer of a Hub.
type Subscription struct {
	hub *Hub
	ch  chan domain.ThemeSignal
}

// NextTheme blocks until a signal is available or ctx is done.
func (s *Subscription) NextTheme(ctx context.Context) (domain.ThemeSignal, error) {
	select {
	case sig := <-s.ch:
		return sig, nil
	case <-ctx.Done():
		return domain.ThemeSignal{}, ctx.Err()
	}
}

// Close detaches the subscription from its hub.
func (s *Subscription) Close() error {
	s.hub.mu.Lock()
	delete(s.hub.subs, s)
	s.hub.mu.Unlock()
	return nil
}
