package authstate

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/containercalc/containercalc/pkg/auth"
	"github.com/containercalc/containercalc/pkg/logger"
)

// Client is the set of auth operations a Manager performs on behalf of the
// client it tracks. Session returns the currently signed-in user, or
// auth.ErrUnauthorized when nobody is; the remaining methods mirror the auth
// backend's sign-in, sign-up, sign-out, password-reset and session-refresh
// operations.
type Client interface {
	Session(ctx context.Context) (*auth.User, error)
	SignIn(ctx context.Context, email, password string) (*auth.User, error)
	SignUp(ctx context.Context, email, password string, profile auth.Profile) (*auth.User, error)
	SignOut(ctx context.Context) error
	ResetPassword(ctx context.Context, email string) error
	RefreshSession(ctx context.Context) (*auth.User, error)
}

// Manager maintains the AuthState for a single client and notifies
// subscribers on every transition. All methods are safe for concurrent use.
type Manager struct {
	client  Client
	changes *auth.Notifier
	log     *slog.Logger
	buffer  int

	mu    sync.RWMutex
	state AuthState
	subs  map[*Subscription]struct{}

	started     bool
	loadingDone sync.Once
	changeSub   *auth.Subscription
	stop        context.CancelFunc
	done        chan struct{}
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for non-fatal fetch failures.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithChanges wires a server-side change feed into the manager. Changes
// published on the notifier (sign-ins, sign-outs, refreshes from other
// handlers) are folded into the tracked state.
func WithChanges(n *auth.Notifier) Option {
	return func(m *Manager) { m.changes = n }
}

// WithBuffer sets the per-subscriber channel buffer. Values below 1 are
// clamped to 1.
func WithBuffer(size int) Option {
	return func(m *Manager) {
		if size > 0 {
			m.buffer = size
		}
	}
}

// NewManager creates a Manager over the given client. It panics if client is
// nil. The manager starts in the loading state; call Start to settle it.
func NewManager(client Client, opts ...Option) *Manager {
	if client == nil {
		panic("authstate: client must not be nil")
	}
	m := &Manager{
		client: client,
		log:    slog.Default(),
		buffer: 8,
		state:  AuthState{Loading: true},
		subs:   make(map[*Subscription]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start performs the initial session fetch and, when a change feed is wired,
// launches the goroutine that consumes it. The Loading flag is cleared
// exactly once, whether the fetch succeeds, fails, or panics partway. A
// failed fetch is logged and leaves the manager unauthenticated; Start only
// returns an error when called twice.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return ErrAlreadyStarted
	}
	m.started = true
	m.mu.Unlock()

	defer m.finishLoading()

	user, err := m.client.Session(ctx)
	if err != nil {
		if !isUnauthenticated(err) {
			m.log.WarnContext(ctx, "initial session fetch failed", logger.Error(err))
		}
		user = nil
	}
	m.setUser(user)

	if m.changes != nil {
		runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		m.stop = cancel
		m.done = make(chan struct{})
		m.changeSub = m.changes.Subscribe()
		go m.consume(runCtx)
	}
	return nil
}

// Stop tears down the change-feed consumer and closes all subscriber
// channels. It is safe to call multiple times and before Start.
func (m *Manager) Stop() {
	if m.stop != nil {
		m.stop()
		<-m.done
	}
	if m.changeSub != nil {
		m.changeSub.Unsubscribe()
		m.changeSub = nil
	}

	m.mu.Lock()
	subs := m.subs
	m.subs = make(map[*Subscription]struct{})
	m.mu.Unlock()
	for sub := range subs {
		sub.close()
	}
}

// State returns the current snapshot.
func (m *Manager) State() AuthState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// SignIn authenticates the client and updates the tracked state on success.
// Local operations apply their result directly instead of waiting for the
// change feed; the feed's echo of the same transition is an idempotent
// re-delivery of an identical snapshot.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*auth.User, error) {
	user, err := m.client.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	m.setUser(user)
	return user, nil
}

// SignUp registers a new account and signs it in.
func (m *Manager) SignUp(ctx context.Context, email, password string, profile auth.Profile) (*auth.User, error) {
	user, err := m.client.SignUp(ctx, email, password, profile)
	if err != nil {
		return nil, err
	}
	m.setUser(user)
	return user, nil
}

// SignOut ends the session. The tracked user is cleared even when the
// backend call fails, so the client never keeps rendering a stale identity.
func (m *Manager) SignOut(ctx context.Context) error {
	err := m.client.SignOut(ctx)
	m.setUser(nil)
	return err
}

// ResetPassword requests a password-reset email. It does not change the
// tracked state.
func (m *Manager) ResetPassword(ctx context.Context, email string) error {
	return m.client.ResetPassword(ctx, email)
}

// RefreshSession re-validates the session with the backend. A rejected
// session clears the tracked user; any other failure is logged and leaves
// the prior state untouched, so a transient backend error never signs the
// client out.
func (m *Manager) RefreshSession(ctx context.Context) (*auth.User, error) {
	user, err := m.client.RefreshSession(ctx)
	if err != nil {
		if isUnauthenticated(err) {
			m.setUser(nil)
		} else {
			m.log.WarnContext(ctx, "session refresh failed", logger.Error(err))
		}
		return nil, err
	}
	m.setUser(user)
	return user, nil
}

// Subscribe registers an observer. Every state transition is sent on the
// returned subscription's channel; transitions that arrive while the buffer
// is full are dropped for that subscriber. The current snapshot is delivered
// immediately so observers never start blind.
func (m *Manager) Subscribe() *Subscription {
	sub := &Subscription{
		ch:      make(chan AuthState, m.buffer),
		manager: m,
	}
	m.mu.Lock()
	m.subs[sub] = struct{}{}
	current := m.state
	m.mu.Unlock()

	sub.ch <- current
	return sub
}

func (m *Manager) consume(ctx context.Context) {
	defer close(m.done)
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-m.changeSub.C():
			if !ok {
				return
			}
			switch change.Event {
			case auth.EventSignedIn, auth.EventTokenRefreshed:
				m.setUser(change.User)
			case auth.EventSignedOut:
				m.setUser(nil)
			}
		}
	}
}

func (m *Manager) finishLoading() {
	m.loadingDone.Do(func() {
		m.mu.Lock()
		m.state.Loading = false
		state := m.state
		m.mu.Unlock()
		m.notify(state)
	})
}

func (m *Manager) setUser(user *auth.User) {
	m.mu.Lock()
	m.state.User = user
	state := m.state
	m.mu.Unlock()
	m.notify(state)
}

func (m *Manager) notify(state AuthState) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for sub := range m.subs {
		select {
		case sub.ch <- state:
		default:
		}
	}
}

func (m *Manager) unsubscribe(sub *Subscription) {
	m.mu.Lock()
	delete(m.subs, sub)
	m.mu.Unlock()
	sub.close()
}

func isUnauthenticated(err error) bool {
	return errors.Is(err, auth.ErrUnauthorized)
}
