package auth

import (
	"testing"
	"time"

	"coinboard/internal/config"
	"github.com/stretchr/testify/assert"
)

func testProvider() *TokenProvider {
	return NewTokenProvider(config.Auth{
		Secret:                "test-secret",
		AccessTokenTTLMinutes: 30,
		RefreshTokenTTLHours:  336,
	})
}

func TestTokenProvider_RoundTrip(t *testing.T) {
	p := testProvider()

	token, err := p.GenerateAccessToken(42, "USER")
	assert.NoError(t, err)

	claims, err := p.Parse(token)
	assert.NoError(t, err)
	assert.Equal(t, uint(42), claims.MemberID)
	assert.Equal(t, "USER", claims.Role)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), claims.Expires, time.Minute)
}

func TestTokenProvider_RefreshTokenHasNoRole(t *testing.T) {
	p := testProvider()

	token, err := p.GenerateRefreshToken(42)
	assert.NoError(t, err)

	claims, err := p.Parse(token)
	assert.NoError(t, err)
	assert.Empty(t, claims.Role)
}

func TestTokenProvider_TokensAreUnique(t *testing.T) {
	p := testProvider()

	first, err := p.GenerateRefreshToken(42)
	assert.NoError(t, err)
	second, err := p.GenerateRefreshToken(42)
	assert.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestTokenProvider_RejectsExpiredToken(t *testing.T) {
	p := testProvider()
	p.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := p.GenerateAccessToken(42, "USER")
	assert.NoError(t, err)

	p.now = time.Now
	_, err = p.Parse(token)
	assert.Error(t, err)
}

func TestTokenProvider_RejectsForeignSignature(t *testing.T) {
	p := testProvider()
	token, err := p.GenerateAccessToken(42, "USER")
	assert.NoError(t, err)

	other := NewTokenProvider(config.Auth{Secret: "different-secret", AccessTokenTTLMinutes: 30, RefreshTokenTTLHours: 1})
	_, err = other.Parse(token)
	assert.Error(t, err)
}

func TestTokenProvider_RejectsGarbage(t *testing.T) {
	p := testProvider()
	_, err := p.Parse("not.a.token")
	assert.Error(t, err)
}
