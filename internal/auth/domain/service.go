package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// ResetRequestAck is the only acknowledgment a password-reset request ever
// produces, whether or not the account exists.
const ResetRequestAck = "If the email exists, a reset link has been sent"

type RegisterRequest struct {
	Email       string
	Password    string
	DisplayName *string
}

// Service orchestrates credential verification, token issuance and the
// account lifecycle.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	// Refresh re-issues an access token and echoes the same refresh token
	// back unchanged. There is no rotation and no revocation list: a leaked
	// refresh token stays usable for its full TTL.
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	CurrentUser(ctx context.Context, accessToken string) (*User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, resetToken, newPassword string) error
	ChangePassword(ctx context.Context, userID snowflake.ID, currentPassword, newPassword string) error
	// FederatedLogin links or creates the account for a provider-verified
	// identity and issues the same token pair as a password login.
	FederatedLogin(ctx context.Context, provider string, identity ExternalIdentity) (*TokenPair, error)
	// DeactivateAndAnonymize scrubs the account in place. Already-issued
	// tokens stay valid until natural expiry; tokens are stateless.
	DeactivateAndAnonymize(ctx context.Context, userID snowflake.ID) error
}

// Notifier delivers a password-reset token to the account holder out of band.
type Notifier interface {
	SendPasswordReset(ctx context.Context, email, displayName, resetToken string) error
}

// Anonymizer is the redaction capability invoked on account deletion.
type Anonymizer interface {
	Anonymize(ctx context.Context, userID snowflake.ID) error
}
