package oauth

import "errors"

var (
	ErrUnsupportedProvider = errors.New("unsupported provider")
	// ErrMissingField is returned when a provider-required part of the
	// callback payload is absent, e.g. Google without an ID token.
	ErrMissingField = errors.New("missing field")
	// ErrProviderUnavailable marks a downstream provider failure: outage,
	// unreachable host, malformed response. Retryable, never a credential
	// problem.
	ErrProviderUnavailable = errors.New("identity provider unavailable")
)
