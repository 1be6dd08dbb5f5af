package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/warp/attendance-engine/records"
)

// DefaultTokenTTL is how long issued tokens stay valid.
const DefaultTokenTTL = 7 * 24 * time.Hour

// Role distinguishes employee tokens from admin tokens.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

// Identity is what a verified token resolves to.
type Identity struct {
	Subject string `json:"id"`
	Email   string `json:"email"`
	Role    Role   `json:"role"`
}

// IsAdmin reports whether the identity belongs to an admin.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// CanAccessEmployee reports whether the caller may act on employeeID:
// admins always, employees only on themselves.
func (i Identity) CanAccessEmployee(employeeID string) bool {
	return i.IsAdmin() || (i.Role == RoleEmployee && i.Subject == employeeID)
}

// Claims is the JWT payload.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// TokenIssuer issues and verifies HS256 tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration

	// now is replaceable in tests.
	now func() time.Time
}

// NewTokenIssuer creates an issuer. ttl <= 0 uses DefaultTokenTTL.
func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("token secret is empty")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for id.
func (t *TokenIssuer) Issue(id Identity) (string, error) {
	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		Email: id.Email,
		Role:  id.Role,
	})

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and returns its identity. Any failure (bad
// signature, expiry, wrong algorithm, unknown role) is ErrUnauthorized.
func (t *TokenIssuer) Verify(tokenString string) (Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) {
			return t.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", records.ErrUnauthorized, err)
	}
	if !token.Valid {
		return Identity{}, fmt.Errorf("%w: invalid token", records.ErrUnauthorized)
	}
	if claims.Subject == "" || (claims.Role != RoleEmployee && claims.Role != RoleAdmin) {
		return Identity{}, fmt.Errorf("%w: malformed claims", records.ErrUnauthorized)
	}

	return Identity{Subject: claims.Subject, Email: claims.Email, Role: claims.Role}, nil
}
