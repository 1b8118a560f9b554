// Package domain contains core types for the identity service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// OAuth providers with a federation handler.
const (
	ProviderGoogle    = "google"
	ProviderMicrosoft = "microsoft"
)

// User represents a platform account. Rows are never hard-deleted: account
// deletion anonymizes the fields in place so documents keep a valid owner.
// A usable account has a password hash, a federation link, or both; the
// schema does not enforce that invariant.
type User struct {
	ID            snowflake.ID `gorm:"primaryKey"`
	Email         string       `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash  *string      `gorm:"column:password_hash;type:text"`
	DisplayName   *string      `gorm:"column:display_name;type:text"`
	Active        bool         `gorm:"not null;default:true"`
	OAuthProvider *string      `gorm:"column:oauth_provider;type:text;uniqueIndex:idx_users_oauth_identity"`
	OAuthID       *string      `gorm:"column:oauth_id;type:text;uniqueIndex:idx_users_oauth_identity"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	LastLogin     *time.Time   `gorm:"column:last_login"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// UserPublic is the client-facing view of an account. It never carries the
// password hash or federation identifiers.
type UserPublic struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	DisplayName *string    `json:"display_name,omitempty"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
}

// Public returns the sanitized view of the user.
func (u *User) Public() UserPublic {
	return UserPublic{
		ID:          u.ID.String(),
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Active:      u.Active,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
		LastLogin:   u.LastLogin,
	}
}

// TokenPair is the result of every successful authentication path.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// ExternalIdentity is a provider-verified identity handed back by the OAuth
// federation adapter.
type ExternalIdentity struct {
	Subject string
	Email   string
	Name    *string
}
