package coordinator

import (
	"log/slog"
	"sync"

	"github.com/jpelkonen/roam/pkg/api"
)

// subscription gives each listener a stable identity so unsubscribe
// closures stay valid after the slice is reshuffled by evictions.
type subscription struct {
	listener api.Listener
}

// bus broadcasts state snapshots to subscribed listeners. The listener
// list is bounded: subscribing past the cap evicts the oldest listener,
// so callers that forget to unsubscribe cannot grow memory without
// bound.
type bus struct {
	mu        sync.Mutex
	listeners []*subscription
	max       int
	log       *slog.Logger
}

func newBus(max int, log *slog.Logger) *bus {
	return &bus{max: max, log: log}
}

// subscribe appends l and returns its unsubscribe function. Unsubscribe
// is a no-op for evicted or already-removed subscriptions.
func (b *bus) subscribe(l api.Listener) func() {
	sub := &subscription{listener: l}

	b.mu.Lock()
	b.listeners = append(b.listeners, sub)
	if len(b.listeners) > b.max {
		b.listeners = b.listeners[1:]
		if b.log != nil {
			b.log.Warn("listener_evicted", slog.Int("max_listeners", b.max))
		}
	}
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.listeners {
			if s == sub {
				b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
				return
			}
		}
	}
}

// publish synchronously delivers state to every current listener. A
// panicking listener is recovered and logged; it never breaks the
// broadcast loop for the others.
func (b *bus) publish(state api.State) {
	b.mu.Lock()
	subs := append([]*subscription(nil), b.listeners...)
	b.mu.Unlock()

	for _, s := range subs {
		b.deliver(s.listener, state)
	}
}

func (b *bus) deliver(l api.Listener, state api.State) {
	defer func() {
		if r := recover(); r != nil && b.log != nil {
			b.log.Error("listener_panic", slog.Any("panic", r))
		}
	}()
	l(state)
}
