// Package token encodes and decodes signed, expiring session tokens.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/legaldraft/legaldraft/internal/auth/policy"
	"github.com/legaldraft/legaldraft/internal/clock"
)

// ErrInvalidToken covers bad signature, malformed structure and expired
// tokens alike. Callers must not distinguish between those cases.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the decoded payload of a session token. Decode verifies the
// signature and expiry but NOT the type: checking Type against the expected
// token type is the caller's access-control boundary.
type Claims struct {
	Subject   string
	Type      policy.TokenType
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type jwtClaims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// Codec issues and validates HS256-signed session tokens. It holds no
// mutable state and is safe for unsynchronized concurrent use.
type Codec struct {
	policy policy.SessionPolicy
	clock  clock.Clock
}

func NewCodec(p policy.SessionPolicy, clk clock.Clock) *Codec {
	return &Codec{policy: p, clock: clk}
}

// Issue signs a token of the given type for the subject. The lifetime comes
// from the session policy unless a positive override is supplied.
func (c *Codec) Issue(subject string, typ policy.TokenType, ttlOverride ...time.Duration) (string, error) {
	if subject == "" || !typ.Valid() {
		return "", ErrInvalidToken
	}

	ttl := c.policy.TTL(typ)
	if len(ttlOverride) > 0 && ttlOverride[0] > 0 {
		ttl = ttlOverride[0]
	}

	now := c.clock.Now()
	claims := jwtClaims{
		Type: string(typ),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.policy.Secret)
}

// Decode verifies signature and expiry in one step. Any failure, including
// an exp at or before now, yields ErrInvalidToken.
func (c *Codec) Decode(raw string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(c.policy.Leeway),
		jwt.WithTimeFunc(c.clock.Now),
	)

	var claims jwtClaims
	_, err := parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return c.policy.Secret, nil
	})
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	typ := policy.TokenType(claims.Type)
	if claims.Subject == "" || !typ.Valid() {
		return Claims{}, ErrInvalidToken
	}

	decoded := Claims{
		Subject: claims.Subject,
		Type:    typ,
	}
	if claims.IssuedAt != nil {
		decoded.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		decoded.ExpiresAt = claims.ExpiresAt.Time
	}
	return decoded, nil
}
