package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/legaldraft/legaldraft/internal/auth/domain"
	"github.com/legaldraft/legaldraft/internal/auth/password"
	"github.com/legaldraft/legaldraft/internal/auth/policy"
	"github.com/legaldraft/legaldraft/internal/auth/token"
	"github.com/legaldraft/legaldraft/internal/clock"
	"go.uber.org/zap"
)

const minPasswordLength = 8

type Service struct {
	log        *zap.Logger
	repo       domain.Repository
	codec      *token.Codec
	notifier   domain.Notifier
	anonymizer domain.Anonymizer
	genID      *snowflake.Node
	clock      clock.Clock
}

func New(
	log *zap.Logger,
	repo domain.Repository,
	codec *token.Codec,
	notifier domain.Notifier,
	anonymizer domain.Anonymizer,
	genID *snowflake.Node,
	clk clock.Clock,
) domain.Service {
	return &Service{
		log:        log.Named("auth.service"),
		repo:       repo,
		codec:      codec,
		notifier:   notifier,
		anonymizer: anonymizer,
		genID:      genID,
		clock:      clk,
	}
}

func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if len(strings.TrimSpace(req.Password)) < minPasswordLength {
		return nil, domain.ErrInvalidCredentials
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	user := &domain.User{
		ID:           s.genID.Generate(),
		Email:        email,
		PasswordHash: &hashed,
		DisplayName:  trimmedOrNil(req.DisplayName),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("account registered", zap.String("user_id", user.ID.String()))
	return user, nil
}

func (s *Service) Login(ctx context.Context, email, plaintext string) (*domain.TokenPair, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	// OAuth-only accounts have no hash and can never pass a password login.
	if user.PasswordHash == nil || !password.Verify(plaintext, *user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, domain.ErrAccountDeactivated
	}

	if err := s.touchLastLogin(ctx, user.ID); err != nil {
		return nil, err
	}

	return s.issuePair(user.ID)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.codec.Decode(refreshToken)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if claims.Type != policy.TokenRefresh {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.subjectUser(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, domain.ErrAccountDeactivated
	}

	access, err := s.codec.Issue(user.ID.String(), policy.TokenAccess)
	if err != nil {
		return nil, err
	}

	// The presented refresh token is echoed back unchanged; rotation is a
	// deliberate non-feature of this core.
	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}

func (s *Service) CurrentUser(ctx context.Context, accessToken string) (*domain.User, error) {
	claims, err := s.codec.Decode(accessToken)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if claims.Type != policy.TokenAccess {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.subjectUser(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, domain.ErrAccountDeactivated
	}
	return user, nil
}

func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil
	}

	user, err := s.repo.FindByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return err
	}
	if !user.Active {
		return nil
	}

	reset, err := s.codec.Issue(user.ID.String(), policy.TokenPasswordReset)
	if err != nil {
		return err
	}

	name := ""
	if user.DisplayName != nil {
		name = *user.DisplayName
	}
	// Delivery failures are logged, not surfaced: the response must not
	// depend on whether the account exists.
	if err := s.notifier.SendPasswordReset(ctx, user.Email, name, reset); err != nil {
		s.log.Warn("password reset delivery failed", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	return nil
}

func (s *Service) ConfirmPasswordReset(ctx context.Context, resetToken, newPassword string) error {
	claims, err := s.codec.Decode(resetToken)
	if err != nil {
		return domain.ErrInvalidCredentials
	}
	if claims.Type != policy.TokenPasswordReset {
		return domain.ErrInvalidCredentials
	}
	if len(strings.TrimSpace(newPassword)) < minPasswordLength {
		return domain.ErrInvalidCredentials
	}

	user, err := s.subjectUser(ctx, claims.Subject)
	if err != nil {
		return err
	}

	hashed, err := password.Hash(newPassword)
	if err != nil {
		return err
	}

	return s.repo.UpdateFields(ctx, user.ID, map[string]any{
		"password_hash": hashed,
		"updated_at":    s.clock.Now(),
	})
}

func (s *Service) ChangePassword(ctx context.Context, userID snowflake.ID, currentPassword, newPassword string) error {
	if len(strings.TrimSpace(newPassword)) < minPasswordLength {
		return domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrInvalidCredentials
		}
		return err
	}
	if user.PasswordHash == nil || !password.Verify(currentPassword, *user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}

	hashed, err := password.Hash(newPassword)
	if err != nil {
		return err
	}

	return s.repo.UpdateFields(ctx, user.ID, map[string]any{
		"password_hash": hashed,
		"updated_at":    s.clock.Now(),
	})
}

func (s *Service) FederatedLogin(ctx context.Context, provider string, identity domain.ExternalIdentity) (*domain.TokenPair, error) {
	email, err := normalizeEmail(identity.Email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.UpsertOAuthIdentity(ctx, domain.OAuthIdentity{
		Email:       email,
		Provider:    provider,
		ExternalID:  identity.Subject,
		DisplayName: trimmedOrNil(identity.Name),
	})
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, domain.ErrAccountDeactivated
	}

	if err := s.touchLastLogin(ctx, user.ID); err != nil {
		return nil, err
	}

	s.log.Info("federated login", zap.String("provider", provider), zap.String("user_id", user.ID.String()))
	return s.issuePair(user.ID)
}

func (s *Service) DeactivateAndAnonymize(ctx context.Context, userID snowflake.ID) error {
	if err := s.anonymizer.Anonymize(ctx, userID); err != nil {
		return err
	}
	// Stateless tokens already issued for this account stay valid until
	// they expire; CurrentUser rejects them via the active flag.
	s.log.Info("account anonymized", zap.String("user_id", userID.String()))
	return nil
}

func (s *Service) issuePair(userID snowflake.ID) (*domain.TokenPair, error) {
	subject := userID.String()
	access, err := s.codec.Issue(subject, policy.TokenAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := s.codec.Issue(subject, policy.TokenRefresh)
	if err != nil {
		return nil, err
	}
	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}

func (s *Service) subjectUser(ctx context.Context, subject string) (*domain.User, error) {
	id, err := snowflake.ParseString(subject)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) touchLastLogin(ctx context.Context, userID snowflake.ID) error {
	now := s.clock.Now()
	return s.repo.UpdateFields(ctx, userID, map[string]any{
		"last_login": now,
		"updated_at": now,
	})
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(addr.Address)), nil
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
