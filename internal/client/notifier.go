package client

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const DefaultNotificationTTL = 3 * time.Second

type Notification struct {
	ID          string
	Title       string
	Description string
	Destructive bool
	CreatedAt   time.Time
}

// Notifier keeps transient notifications. Each one disappears after the TTL
// or when dismissed, whichever comes first.
type Notifier struct {
	ttl time.Duration

	mu     sync.Mutex
	active []Notification
	timers map[string]*time.Timer
}

func NewNotifier(ttl time.Duration) *Notifier {
	if ttl <= 0 {
		ttl = DefaultNotificationTTL
	}
	return &Notifier{
		ttl:    ttl,
		timers: make(map[string]*time.Timer),
	}
}

func (n *Notifier) Notify(title, description string, destructive bool) string {
	id := uuid.NewString()

	n.mu.Lock()
	defer n.mu.Unlock()
	n.active = append(n.active, Notification{
		ID:          id,
		Title:       title,
		Description: description,
		Destructive: destructive,
		CreatedAt:   time.Now(),
	})
	n.timers[id] = time.AfterFunc(n.ttl, func() { n.Dismiss(id) })
	return id
}

// Dismiss removes a notification. It reports false when the id is unknown or
// already gone.
func (n *Notifier) Dismiss(id string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if t, ok := n.timers[id]; ok {
		t.Stop()
		delete(n.timers, id)
	}
	for i, item := range n.active {
		if item.ID == id {
			n.active = append(n.active[:i], n.active[i+1:]...)
			return true
		}
	}
	return false
}

// Active lists visible notifications, oldest first.
func (n *Notifier) Active() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notification, len(n.active))
	copy(out, n.active)
	return out
}

// Close stops pending timers and clears everything.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for id, t := range n.timers {
		t.Stop()
		delete(n.timers, id)
	}
	n.active = nil
}
