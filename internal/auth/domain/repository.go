package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// OAuthIdentity is the input to UpsertOAuthIdentity.
type OAuthIdentity struct {
	Email       string
	Provider    string
	ExternalID  string
	DisplayName *string
}

// Repository is the credential store boundary. Each call is atomic on its
// own; no multi-call transaction is exposed to the service layer.
type Repository interface {
	FindByID(ctx context.Context, id snowflake.ID) (*User, error)
	// FindByEmail matches case-insensitively.
	FindByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, user *User) error
	UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error
	// UpsertOAuthIdentity returns the account for a federated identity,
	// creating it or linking the federation fields onto an existing
	// account with the same email.
	UpsertOAuthIdentity(ctx context.Context, identity OAuthIdentity) (*User, error)
}
