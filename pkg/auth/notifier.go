package auth

import (
	"sync"

	"github.com/containercalc/containercalc/pkg/session"
)

// Auth change events delivered to subscribers.
const (
	EventSignedIn       = "signed_in"
	EventSignedOut      = "signed_out"
	EventTokenRefreshed = "token_refreshed"
)

// Change describes an authentication state transition. Session is nil for
// sign-out events.
type Change struct {
	Event   string
	Session *session.Session
	User    *User
}

// Subscription receives auth changes until Unsubscribe is called.
type Subscription struct {
	ch       chan Change
	notifier *Notifier
	once     sync.Once
}

// C returns the receive channel. It is closed by Unsubscribe.
func (s *Subscription) C() <-chan Change {
	return s.ch
}

// Unsubscribe detaches from the notifier and closes the channel.
// Safe to call multiple times and from any goroutine.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.notifier.remove(s)
		close(s.ch)
	})
}

// Notifier broadcasts auth changes to subscribers. Slow subscribers have
// events dropped rather than blocking the publisher. Safe for concurrent use.
type Notifier struct {
	mu          sync.RWMutex
	subscribers map[*Subscription]struct{}
	bufferSize  int
}

// NewNotifier creates a change notifier. bufferSize is the per-subscriber
// channel buffer; a minimum of 1 is enforced so sends never block.
func NewNotifier(bufferSize int) *Notifier {
	return &Notifier{
		subscribers: make(map[*Subscription]struct{}),
		bufferSize:  max(bufferSize, 1),
	}
}

// Subscribe registers a new subscriber.
func (n *Notifier) Subscribe() *Subscription {
	sub := &Subscription{
		ch:       make(chan Change, n.bufferSize),
		notifier: n,
	}

	n.mu.Lock()
	n.subscribers[sub] = struct{}{}
	n.mu.Unlock()

	return sub
}

// Publish delivers a change to all current subscribers, in arrival order per
// subscriber. Events are dropped for subscribers whose buffers are full.
func (n *Notifier) Publish(change Change) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for sub := range n.subscribers {
		select {
		case sub.ch <- change:
		default:
		}
	}
}

func (n *Notifier) remove(sub *Subscription) {
	n.mu.Lock()
	delete(n.subscribers, sub)
	n.mu.Unlock()
}
