package auth

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()
	secret := []byte("super-secret")

	tok, exp, err := GenerateToken("user-123", "alice", secret, t0, time.Hour)
	require.NoError(t, err)
	assert.True(t, exp.Equal(t0.Add(time.Hour)))

	claims, err := ParseToken(tok, secret, t0.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID())
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, TokenTypeAccess, claims.Type)
}

func TestParseToken_ExpiryBoundary(t *testing.T) {
	t.Parallel()
	secret := []byte("secret")

	tok, exp, err := GenerateToken("u1", "", secret, t0, 30*time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(tok, secret, exp.Add(-time.Second))
	require.NoError(t, err)

	_, err = ParseToken(tok, secret, exp)
	require.ErrorIs(t, err, common.ErrTokenExpired, "exp == now is expired")

	_, err = ParseToken(tok, secret, exp.Add(time.Hour))
	require.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestParseToken_Rejections(t *testing.T) {
	t.Parallel()
	secret := []byte("secret")

	good, _, err := GenerateToken("u1", "", secret, t0, time.Hour)
	require.NoError(t, err)

	wrongType, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", ExpiresAt: jwt.NewNumericDate(t0.Add(time.Hour))},
		Type:             "refresh",
	}).SignedString(secret)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
		Type:             TokenTypeAccess,
	}).SignedString(secret)
	require.NoError(t, err)

	otherAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", ExpiresAt: jwt.NewNumericDate(t0.Add(time.Hour))},
		Type:             TokenTypeAccess,
	}).SignedString(secret)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		key   []byte
	}{
		{"wrong secret", good, []byte("other")},
		{"garbage", "not-a-jwt", secret},
		{"tampered", good + "x", secret},
		{"wrong type", wrongType, secret},
		{"missing exp", noExp, secret},
		{"unexpected alg", otherAlg, secret},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(tt.token, tt.key, t0)
			require.ErrorIs(t, err, common.ErrInvalidToken)
		})
	}
}
