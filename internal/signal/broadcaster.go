package signal

import (
	"github.com/google/uuid"
)

// Handler is invoked when the observed value changes.
type Handler func()

// Notifier is implemented by anything that announces value changes.
type Notifier interface {
	// Subscribe registers h and returns an identifier for Unsubscribe.
	Subscribe(h Handler) string
	// Unsubscribe removes a subscription. It reports whether the id was known.
	Unsubscribe(id string) bool
}

type subscription struct {
	id      string
	handler Handler
}

// Broadcaster keeps an ordered list of subscribers and notifies them
// synchronously. The zero value is ready to use.
type Broadcaster struct {
	subs []subscription
}

// Subscribe registers h. Handlers fire in registration order.
func (b *Broadcaster) Subscribe(h Handler) string {
	if h == nil {
		panic("signal: nil handler")
	}
	id := uuid.NewString()
	b.subs = append(b.subs, subscription{id: id, handler: h})
	return id
}

// Unsubscribe removes the subscription with the given id.
func (b *Broadcaster) Unsubscribe(id string) bool {
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of active subscriptions.
func (b *Broadcaster) Len() int {
	return len(b.subs)
}

// Notify calls every handler subscribed at the moment Notify was entered.
// Subscriptions added or removed by a handler take effect on the next Notify.
func (b *Broadcaster) Notify() {
	if len(b.subs) == 0 {
		return
	}
	snapshot := make([]subscription, len(b.subs))
	copy(snapshot, b.subs)
	for _, s := range snapshot {
		s.handler()
	}
}
