package middleware_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/quizmint/qm-engine/internal/api/middleware"
	"github.com/quizmint/qm-engine/internal/domain"
)

const testSecret = "test-secret"

func signToken(t *testing.T, subject string, expiresAt time.Time) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString([]byte(testSecret))
	assert.NoError(t, err)
	return signed
}

func TestResolveIdentity_WalletToken(t *testing.T) {
	token := signToken(t, "0xABCDEF0000000000000000000000000000000001", time.Now().Add(time.Hour))

	identity, claims, err := middleware.ResolveIdentity("Bearer "+token, "", middleware.IdentityConfig{JWTSecret: testSecret})
	assert.NoError(t, err)
	assert.Equal(t, domain.ClassConnected, identity.Class)
	// Wallet keys are normalized to lower case.
	assert.Equal(t, "0xabcdef0000000000000000000000000000000001", identity.Key)
	assert.NotNil(t, claims)
}

func TestResolveIdentity_WalletTokenWinsOverGuestKey(t *testing.T) {
	token := signToken(t, "0xwallet", time.Now().Add(time.Hour))

	identity, _, err := middleware.ResolveIdentity("Bearer "+token, "guest-1", middleware.IdentityConfig{JWTSecret: testSecret})
	assert.NoError(t, err)
	assert.Equal(t, domain.ClassConnected, identity.Class)
	assert.Equal(t, "0xwallet", identity.Key)
}

func TestResolveIdentity_GuestKey(t *testing.T) {
	identity, claims, err := middleware.ResolveIdentity("", "guest-device-1", middleware.IdentityConfig{JWTSecret: testSecret})
	assert.NoError(t, err)
	assert.Equal(t, domain.ClassGuest, identity.Class)
	assert.Equal(t, "guest-device-1", identity.Key)
	assert.Nil(t, claims)
}

func TestResolveIdentity_ExpiredToken(t *testing.T) {
	token := signToken(t, "0xwallet", time.Now().Add(-time.Hour))

	_, _, err := middleware.ResolveIdentity("Bearer "+token, "", middleware.IdentityConfig{JWTSecret: testSecret})
	assert.Error(t, err)
}

func TestResolveIdentity_WrongSecret(t *testing.T) {
	token := signToken(t, "0xwallet", time.Now().Add(time.Hour))

	_, _, err := middleware.ResolveIdentity("Bearer "+token, "", middleware.IdentityConfig{JWTSecret: "other-secret"})
	assert.Error(t, err)
}

func TestResolveIdentity_MalformedHeader(t *testing.T) {
	_, _, err := middleware.ResolveIdentity("Token abc", "", middleware.IdentityConfig{JWTSecret: testSecret})
	assert.Error(t, err)
}

func TestResolveIdentity_NoCredentials(t *testing.T) {
	_, _, err := middleware.ResolveIdentity("", "", middleware.IdentityConfig{JWTSecret: testSecret})
	assert.Error(t, err)
}

func TestResolveIdentity_MissingSubject(t *testing.T) {
	token := signToken(t, "", time.Now().Add(time.Hour))

	_, _, err := middleware.ResolveIdentity("Bearer "+token, "", middleware.IdentityConfig{JWTSecret: testSecret})
	assert.Error(t, err)
}
