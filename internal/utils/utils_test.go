package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/audire/casting-portal/internal/auth"
	"github.com/audire/casting-portal/internal/model"
)

func TestAccessToken_RoundTrip(t *testing.T) {
	p := auth.Principal{UserID: 42, Role: model.RoleCastingDirector, Name: "Anna Bianchi", Email: "anna@example.com"}
	tok, err := NewAccessToken("secret", p, 15)
	require.NoError(t, err)

	got, err := ParseAccessToken("secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestAccessToken_Rejects(t *testing.T) {
	p := auth.Principal{UserID: 1, Role: model.RolePerformer}

	tok, err := NewAccessToken("secret", p, 15)
	require.NoError(t, err)
	_, err = ParseAccessToken("other", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := NewAccessToken("secret", p, -1)
	require.NoError(t, err)
	_, err = ParseAccessToken("secret", expired.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "1", "role": "Performer"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseAccessToken("secret", none)
	assert.ErrorIs(t, err, ErrInvalidToken)

	badRole, err := NewAccessToken("secret", auth.Principal{UserID: 1}, 15)
	require.NoError(t, err)
	_, err = ParseAccessToken("secret", badRole.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshToken(t *testing.T) {
	r, err := NewRefreshToken(7)
	require.NoError(t, err)
	assert.Len(t, r.Raw, 96)
	assert.Len(t, HashRefreshRaw(r.Raw), 64)
	assert.Equal(t, HashRefreshRaw("abc"), HashRefreshRaw("abc"))
}

func TestPassword(t *testing.T) {
	h, err := HashPassword("Segreta#2024", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(h, "Segreta#2024"))
	assert.False(t, VerifyPassword(h, "segreta#2024"))
}
