package auth

import (
	"fmt"
	"strconv"
	"time"

	"coinboard/internal/apperr"
	"coinboard/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the parsed contents of an access or refresh token.
type Claims struct {
	MemberID uint
	Role     string
	Expires  time.Time
}

type tokenClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenProvider issues and parses HS256 JWTs.
type TokenProvider struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenProvider creates a token provider from the auth configuration.
func NewTokenProvider(cfg config.Auth) *TokenProvider {
	return &TokenProvider{
		secret:     []byte(cfg.Secret),
		accessTTL:  time.Duration(cfg.AccessTokenTTLMinutes) * time.Minute,
		refreshTTL: time.Duration(cfg.RefreshTokenTTLHours) * time.Hour,
		now:        time.Now,
	}
}

// AccessTokenTTL returns the configured access token lifetime.
func (p *TokenProvider) AccessTokenTTL() time.Duration { return p.accessTTL }

// GenerateAccessToken issues a short-lived token carrying the member's role.
func (p *TokenProvider) GenerateAccessToken(memberID uint, role string) (string, error) {
	return p.generate(memberID, role, p.accessTTL)
}

// GenerateRefreshToken issues a long-lived token without a role claim.
func (p *TokenProvider) GenerateRefreshToken(memberID uint) (string, error) {
	return p.generate(memberID, "", p.refreshTTL)
}

func (p *TokenProvider) generate(memberID uint, role string, ttl time.Duration) (string, error) {
	now := p.now()
	claims := tokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			// The jti keeps two tokens for one member issued within the same
			// second distinct; refresh tokens are stored under a unique index.
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(memberID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse validates a token's signature and expiry and returns its claims.
func (p *TokenProvider) Parse(tokenString string) (Claims, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, apperr.Unauthorized("invalid token")
	}
	memberID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return Claims{}, apperr.Unauthorized("invalid token subject")
	}
	var expires time.Time
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	return Claims{MemberID: uint(memberID), Role: claims.Role, Expires: expires}, nil
}
