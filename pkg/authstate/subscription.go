package authstate

import "sync"

// Subscription is a registered observer of a Manager. Snapshots are received
// on C until Unsubscribe is called or the manager stops, after which the
// channel is closed.
type Subscription struct {
	ch      chan AuthState
	manager *Manager
	once    sync.Once
}

// C returns the channel snapshots are delivered on.
func (s *Subscription) C() <-chan AuthState {
	return s.ch
}

// Unsubscribe removes the observer and closes its channel. It is safe to
// call multiple times.
func (s *Subscription) Unsubscribe() {
	s.manager.unsubscribe(s)
}

func (s *Subscription) close() {
	s.once.Do(func() { close(s.ch) })
}
