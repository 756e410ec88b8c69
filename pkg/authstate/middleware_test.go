package authstate_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/containercalc/containercalc/pkg/authstate"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("handlers see the manager", func(t *testing.T) {
		t.Parallel()

		m := authstate.NewManager(&fakeClient{}, authstate.WithLogger(testLogger()))
		defer m.Stop()

		var got *authstate.Manager
		h := authstate.Middleware(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = authstate.MustFromContext(r.Context())
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.NotNil(t, got)
		assert.Same(t, m, got)
	})

	t.Run("nil manager panics at construction", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() { authstate.Middleware(nil) })
	})
}
