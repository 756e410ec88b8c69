package token_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/containercalc/containercalc/pkg/token"
)

type resetClaims struct {
	UserID   string `json:"id"`
	Email    string `json:"email"`
	ExpireAt int64  `json:"exp"`
}

func TestGenerateParse(t *testing.T) {
	t.Parallel()

	claims := resetClaims{
		UserID:   "9b8f1c2a",
		Email:    "user@example.com",
		ExpireAt: time.Now().Add(time.Hour).Unix(),
	}

	tok, err := token.Generate(claims, "secret-key")
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	assert.Equal(t, 2, len(strings.Split(tok, ".")))

	parsed, err := token.Parse[resetClaims](tok, "secret-key")
	require.NoError(t, err)
	assert.Equal(t, claims, parsed)
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	claims := resetClaims{UserID: "u1", Email: "a@b.c"}
	tok, err := token.Generate(claims, "secret-key")
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		t.Parallel()
		_, err := token.Parse[resetClaims](tok, "other-secret")
		assert.ErrorIs(t, err, token.ErrSignatureInvalid)
	})

	t.Run("tampered payload", func(t *testing.T) {
		t.Parallel()
		parts := strings.Split(tok, ".")
		tampered := parts[0][:len(parts[0])-2] + "xx." + parts[1]
		_, err := token.Parse[resetClaims](tampered, "secret-key")
		assert.Error(t, err)
	})

	t.Run("malformed token", func(t *testing.T) {
		t.Parallel()
		_, err := token.Parse[resetClaims]("not-a-token", "secret-key")
		assert.ErrorIs(t, err, token.ErrInvalidToken)
	})

	t.Run("bad base64", func(t *testing.T) {
		t.Parallel()
		_, err := token.Parse[resetClaims]("%%%.%%%", "secret-key")
		assert.ErrorIs(t, err, token.ErrInvalidToken)
	})
}
