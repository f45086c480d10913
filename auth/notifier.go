package auth

import (
	"sync"
	"time"
)

// SessionEvent describes one identity change: a sign-in or a sign-out.
type SessionEvent struct {
	UserID   string
	SignedIn bool
	At       time.Time
}

// Notifier delivers session changes to subscribers over plain channels.
// Delivery is at-most-once per change and latest-state-wins: a slow
// subscriber sees the newest event, never a backlog.
type Notifier struct {
	mu   sync.Mutex
	subs []chan SessionEvent
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

// Subscribe returns a channel carrying future session events. The channel
// holds at most one pending event.
func (n *Notifier) Subscribe() <-chan SessionEvent {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(chan SessionEvent, 1)
	n.subs = append(n.subs, ch)
	return ch
}

// Publish fans the event out without blocking. A subscriber that has not
// drained its previous event loses it in favor of the new one.
func (n *Notifier) Publish(ev SessionEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, ch := range n.subs {
		select {
		case ch <- ev:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}
