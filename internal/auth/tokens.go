package auth

import (
	"bytes"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lifeup-app/lifeup-api/internal/rbac"
	"github.com/lifeup-app/lifeup-api/internal/shared"
)

const (
	// DefaultAccessTTL bounds the exposure window of a leaked access token.
	DefaultAccessTTL = 15 * time.Minute
	// DefaultRefreshTTL bounds how long a session can renew itself.
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// Claims are the identity fields embedded in both token kinds.
type Claims struct {
	Email     string `json:"email"`
	RoleID    string `json:"roleId"`
	RoleTier  string `json:"roleType"`
	IsPremium bool   `json:"isPremium,omitempty"`
	jwt.RegisteredClaims
}

// Principal reconstructs the request identity from verified claims. The
// tier inside a token is advisory until the role resolver confirms the
// role row still exists.
func (c *Claims) Principal(tier rbac.RoleTier) *rbac.Principal {
	return &rbac.Principal{
		ID:        c.Subject,
		Email:     c.Email,
		RoleID:    c.RoleID,
		RoleTier:  tier,
		IsPremium: c.IsPremium,
	}
}

// TokenConfig holds the signing material and lifetimes for a token issuer.
type TokenConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// TokenIssuer mints and verifies HS256-signed access/refresh pairs. Access
// and refresh tokens use independent secrets, so a compromised refresh token
// cannot be replayed through the access verification path or vice versa.
type TokenIssuer struct {
	config TokenConfig
	now    func() time.Time
}

// NewTokenIssuer validates the signing configuration. Missing or shared
// secrets are a startup fault: the process must refuse traffic rather than
// fall back to a default key.
func NewTokenIssuer(cfg TokenConfig) (*TokenIssuer, error) {
	if len(cfg.AccessSecret) == 0 {
		return nil, errors.New("auth: access signing secret is not set")
	}
	if len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("auth: refresh signing secret is not set")
	}
	if bytes.Equal(cfg.AccessSecret, cfg.RefreshSecret) {
		return nil, errors.New("auth: access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	return &TokenIssuer{config: cfg, now: time.Now}, nil
}

// SetNow overrides the clock. Intended for tests.
func (t *TokenIssuer) SetNow(now func() time.Time) {
	t.now = now
}

// PairInput is the identity embedded into a freshly minted pair.
type PairInput struct {
	SubjectID string
	Email     string
	RoleID    string
	RoleTier  rbac.RoleTier
	IsPremium bool
}

// IssuePair mints an access/refresh pair with independent expiries.
func (t *TokenIssuer) IssuePair(in PairInput) (TokenPair, error) {
	access, err := t.sign(in, t.config.AccessSecret, t.config.AccessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := t.sign(in, t.config.RefreshSecret, t.config.RefreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (t *TokenIssuer) sign(in PairInput, secret []byte, ttl time.Duration) (string, error) {
	now := t.now()
	claims := Claims{
		Email:     in.Email,
		RoleID:    in.RoleID,
		RoleTier:  string(in.RoleTier),
		IsPremium: in.IsPremium,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   in.SubjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// VerifyAccess checks the token against the access secret.
func (t *TokenIssuer) VerifyAccess(token string) (*Claims, error) {
	return t.verify(token, t.config.AccessSecret)
}

// VerifyRefresh checks the token against the refresh secret.
func (t *TokenIssuer) VerifyRefresh(token string) (*Claims, error) {
	return t.verify(token, t.config.RefreshSecret)
}

// verify collapses signature failure, malformed payloads, and expiry into
// shared.ErrInvalidToken so the boundary leaks nothing about which check
// failed.
func (t *TokenIssuer) verify(token string, secret []byte) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	parsed, err := parser.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		return nil, shared.ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" || claims.Email == "" {
		return nil, shared.ErrInvalidToken
	}
	return claims, nil
}

// Decode parses the claims without verifying the signature. Diagnostics
// only, never an authorization input.
func (t *TokenIssuer) Decode(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, shared.ErrInvalidToken
	}
	return claims, nil
}
