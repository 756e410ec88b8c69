package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/containercalc/containercalc/pkg/session"
)

func newManager(t *testing.T, ttl time.Duration) *session.Manager {
	t.Helper()
	return session.NewManager(
		session.WithStore(session.NewMemoryStore(0)),
		session.WithConfig(session.Config{
			CookieName: "test-sid",
			TTL:        ttl,
		}),
	)
}

func TestManager_IssueResolve(t *testing.T) {
	t.Parallel()

	manager := newManager(t, time.Hour)
	ctx := context.Background()
	userID := uuid.New()

	issued, err := manager.Issue(ctx, userID, "user@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, issued.Token)
	assert.Equal(t, userID, issued.UserID)
	assert.Equal(t, "user@example.com", issued.Email)

	resolved, err := manager.Resolve(ctx, issued.Token)
	require.NoError(t, err)
	assert.Equal(t, issued.ID, resolved.ID)
	assert.Equal(t, userID, resolved.UserID)
}

func TestManager_Resolve_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("empty token", func(t *testing.T) {
		t.Parallel()
		manager := newManager(t, time.Hour)
		_, err := manager.Resolve(ctx, "")
		assert.ErrorIs(t, err, session.ErrNoToken)
	})

	t.Run("unknown token", func(t *testing.T) {
		t.Parallel()
		manager := newManager(t, time.Hour)
		_, err := manager.Resolve(ctx, "no-such-token")
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})

	t.Run("expired session treated as absent", func(t *testing.T) {
		t.Parallel()
		manager := newManager(t, time.Millisecond)
		issued, err := manager.Issue(ctx, uuid.New(), "user@example.com")
		require.NoError(t, err)

		time.Sleep(5 * time.Millisecond)

		_, err = manager.Resolve(ctx, issued.Token)
		assert.ErrorIs(t, err, session.ErrSessionExpired)

		// The expired session is gone from the store afterwards.
		_, err = manager.Resolve(ctx, issued.Token)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})
}

func TestManager_Revoke(t *testing.T) {
	t.Parallel()

	manager := newManager(t, time.Hour)
	ctx := context.Background()

	issued, err := manager.Issue(ctx, uuid.New(), "user@example.com")
	require.NoError(t, err)

	require.NoError(t, manager.Revoke(ctx, issued.Token))
	_, err = manager.Resolve(ctx, issued.Token)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	// Revoking again or revoking nothing is a no-op.
	assert.NoError(t, manager.Revoke(ctx, issued.Token))
	assert.NoError(t, manager.Revoke(ctx, ""))
}

func TestManager_RevokeUser(t *testing.T) {
	t.Parallel()

	manager := newManager(t, time.Hour)
	ctx := context.Background()
	userID := uuid.New()

	first, err := manager.Issue(ctx, userID, "user@example.com")
	require.NoError(t, err)
	second, err := manager.Issue(ctx, userID, "user@example.com")
	require.NoError(t, err)
	other, err := manager.Issue(ctx, uuid.New(), "other@example.com")
	require.NoError(t, err)

	require.NoError(t, manager.RevokeUser(ctx, userID))

	_, err = manager.Resolve(ctx, first.Token)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
	_, err = manager.Resolve(ctx, second.Token)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	_, err = manager.Resolve(ctx, other.Token)
	assert.NoError(t, err)
}
