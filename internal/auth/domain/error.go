package domain

import "errors"

var (
	// ErrInvalidCredentials is returned for every authentication failure a
	// caller could probe: unknown email, wrong password, bad or expired
	// token, wrong token type. The single error prevents oracle attacks.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("account deactivated")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
)
