// Package policy centralizes session token lifetimes and type rules.
package policy

import (
	"errors"
	"time"

	"github.com/legaldraft/legaldraft/internal/config"
)

// TokenType discriminates what a session token may authorize. The type is
// carried inside the signed payload and must be checked by every consumer.
type TokenType string

const (
	TokenAccess        TokenType = "access"
	TokenRefresh       TokenType = "refresh"
	TokenPasswordReset TokenType = "password_reset"
)

func (t TokenType) Valid() bool {
	switch t {
	case TokenAccess, TokenRefresh, TokenPasswordReset:
		return true
	default:
		return false
	}
}

// SessionPolicy is an immutable table of signing and lifetime rules consumed
// by the token codec and the authentication service. It is constructed once
// from config and passed into constructors, never read from globals.
type SessionPolicy struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	ResetTTL   time.Duration

	// Leeway is the tolerated clock skew when validating expiry.
	// Zero by default: a token is rejected the instant exp passes.
	Leeway time.Duration
}

// TTL resolves the configured lifetime for a token type.
func (p SessionPolicy) TTL(t TokenType) time.Duration {
	switch t {
	case TokenRefresh:
		return p.RefreshTTL
	case TokenPasswordReset:
		return p.ResetTTL
	default:
		return p.AccessTTL
	}
}

var ErrMissingSecret = errors.New("session policy: signing secret is required")

// FromConfig builds the session policy from application configuration.
func FromConfig(cfg config.Config) (SessionPolicy, error) {
	if cfg.JWTSecret == "" {
		return SessionPolicy{}, ErrMissingSecret
	}
	return SessionPolicy{
		Secret:     []byte(cfg.JWTSecret),
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
		ResetTTL:   cfg.ResetTokenTTL,
		Leeway:     cfg.TokenLeeway,
	}, nil
}
