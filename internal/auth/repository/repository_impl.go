package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/legaldraft/legaldraft/internal/auth/domain"
	"github.com/legaldraft/legaldraft/pkg/db"
	"gorm.io/gorm"
)

type repo struct {
	conn  *gorm.DB
	genID *snowflake.Node
}

func New(conn *gorm.DB, genID *snowflake.Node) domain.Repository {
	return &repo{conn: conn, genID: genID}
}

func (r *repo) FindByID(ctx context.Context, id snowflake.ID) (*domain.User, error) {
	var user domain.User
	err := r.conn.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.conn.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repo) Create(ctx context.Context, user *domain.User) error {
	err := r.conn.WithContext(ctx).Create(user).Error
	if db.IsDuplicateKeyErr(err) {
		return domain.ErrUserExists
	}
	return err
}

func (r *repo) UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error {
	tx := r.conn.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// UpsertOAuthIdentity resolves a federated identity to an account: an
// existing federation link wins, then an email match gets linked, else a
// new OAuth-only account (no password hash) is created.
func (r *repo) UpsertOAuthIdentity(ctx context.Context, identity domain.OAuthIdentity) (*domain.User, error) {
	var user domain.User
	err := r.conn.WithContext(ctx).
		Where("oauth_provider = ? AND oauth_id = ?", identity.Provider, identity.ExternalID).
		First(&user).Error
	if err == nil {
		return r.touch(ctx, &user, identity)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	existing, err := r.FindByEmail(ctx, identity.Email)
	if err == nil {
		fields := map[string]any{
			"oauth_provider": identity.Provider,
			"oauth_id":       identity.ExternalID,
			"updated_at":     time.Now().UTC(),
		}
		if existing.DisplayName == nil && identity.DisplayName != nil {
			fields["display_name"] = identity.DisplayName
		}
		if err := r.UpdateFields(ctx, existing.ID, fields); err != nil {
			return nil, err
		}
		return r.FindByID(ctx, existing.ID)
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	provider := identity.Provider
	externalID := identity.ExternalID
	created := &domain.User{
		ID:            r.genID.Generate(),
		Email:         identity.Email,
		DisplayName:   identity.DisplayName,
		Active:        true,
		OAuthProvider: &provider,
		OAuthID:       &externalID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := r.Create(ctx, created); err != nil {
		return nil, err
	}
	return created, nil
}

func (r *repo) touch(ctx context.Context, user *domain.User, identity domain.OAuthIdentity) (*domain.User, error) {
	fields := map[string]any{"updated_at": time.Now().UTC()}
	if user.DisplayName == nil && identity.DisplayName != nil {
		fields["display_name"] = identity.DisplayName
	}
	if err := r.UpdateFields(ctx, user.ID, fields); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, user.ID)
}
