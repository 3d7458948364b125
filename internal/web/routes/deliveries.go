package routes

import (
	"sync"
	"time"
)

// DeliveryLog remembers recent X-GitHub-Delivery ids so redelivered
// webhooks are not applied twice.
type DeliveryLog struct {
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	seen map[string]time.Time
}

func NewDeliveryLog(window time.Duration) *DeliveryLog {
	return &DeliveryLog{
		window: window,
		now:    time.Now,
		seen:   make(map[string]time.Time),
	}
}

// Seen records id and reports whether it was already recorded within the
// window. Empty ids are never considered seen.
func (l *DeliveryLog) Seen(id string) bool {
	if id == "" {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for delivery, at := range l.seen {
		if now.Sub(at) > l.window {
			delete(l.seen, delivery)
		}
	}

	if _, ok := l.seen[id]; ok {
		return true
	}
	l.seen[id] = now
	return false
}

// Forget drops id so a later redelivery is applied again.
func (l *DeliveryLog) Forget(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.seen, id)
}
