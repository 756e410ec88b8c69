// Package authstate tracks the signed-in user for a single client of the
// application and fans state transitions out to interested observers.
//
// A Manager wraps a Client (the operations a signed-in or anonymous caller
// can perform against the auth backend) and maintains an AuthState snapshot:
// the current user plus a Loading flag that is true only while the initial
// session fetch is in flight. Observers subscribe with Subscribe and receive
// every snapshot on a buffered channel until they call Unsubscribe.
//
// Usage:
//
//	manager := authstate.NewManager(client,
//		authstate.WithChanges(notifier),
//		authstate.WithLogger(log),
//	)
//	if err := manager.Start(ctx); err != nil { ... }
//	defer manager.Stop()
//
//	sub := manager.Subscribe()
//	defer sub.Unsubscribe()
//	for state := range sub.C() {
//		render(state)
//	}
//
// The initial fetch never fails the caller: a backend error is logged and
// the manager settles into an unauthenticated, non-loading state.
package authstate
