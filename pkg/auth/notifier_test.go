package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/containercalc/containercalc/pkg/auth"
)

func TestNotifier_PublishSubscribe(t *testing.T) {
	t.Parallel()

	t.Run("delivers to all subscribers", func(t *testing.T) {
		t.Parallel()

		n := auth.NewNotifier(4)
		sub1 := n.Subscribe()
		sub2 := n.Subscribe()
		defer sub1.Unsubscribe()
		defer sub2.Unsubscribe()

		n.Publish(auth.Change{Event: auth.EventSignedIn})

		for _, sub := range []*auth.Subscription{sub1, sub2} {
			select {
			case change := <-sub.C():
				assert.Equal(t, auth.EventSignedIn, change.Event)
			case <-time.After(time.Second):
				t.Fatal("timed out waiting for change")
			}
		}
	})

	t.Run("unsubscribed channel is closed", func(t *testing.T) {
		t.Parallel()

		n := auth.NewNotifier(1)
		sub := n.Subscribe()
		sub.Unsubscribe()

		_, ok := <-sub.C()
		assert.False(t, ok)

		// No delivery after unsubscribe, and double unsubscribe is a no-op.
		n.Publish(auth.Change{Event: auth.EventSignedOut})
		assert.NotPanics(t, sub.Unsubscribe)
	})

	t.Run("drops events when buffer is full", func(t *testing.T) {
		t.Parallel()

		n := auth.NewNotifier(1)
		sub := n.Subscribe()
		defer sub.Unsubscribe()

		n.Publish(auth.Change{Event: auth.EventSignedIn})
		n.Publish(auth.Change{Event: auth.EventSignedOut}) // dropped, buffer full

		change := <-sub.C()
		require.Equal(t, auth.EventSignedIn, change.Event)

		select {
		case <-sub.C():
			t.Fatal("expected second event to be dropped")
		default:
		}
	})

	t.Run("publish without subscribers does not block", func(t *testing.T) {
		t.Parallel()

		n := auth.NewNotifier(1)
		done := make(chan struct{})
		go func() {
			n.Publish(auth.Change{Event: auth.EventTokenRefreshed})
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("publish blocked")
		}
	})
}
