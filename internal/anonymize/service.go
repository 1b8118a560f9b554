// Package anonymize implements GDPR account redaction. Rows are scrubbed in
// place, never deleted, so owned documents keep a resolvable owner id.
package anonymize

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/legaldraft/legaldraft/internal/auth/domain"
	"github.com/legaldraft/legaldraft/internal/clock"
	"go.uber.org/zap"
)

type Service struct {
	log   *zap.Logger
	repo  domain.Repository
	clock clock.Clock
}

func New(log *zap.Logger, repo domain.Repository, clk clock.Clock) domain.Anonymizer {
	return &Service{
		log:   log.Named("anonymize"),
		repo:  repo,
		clock: clk,
	}
}

// Anonymize scrubs identifying fields, clears the credential and unlinks
// federation, and deactivates the account. The placeholder email stays
// unique so the column's constraint holds.
func (s *Service) Anonymize(ctx context.Context, userID snowflake.ID) error {
	fields := map[string]any{
		"email":          fmt.Sprintf("deleted-%s@anonymized.invalid", uuid.NewString()),
		"display_name":   nil,
		"password_hash":  nil,
		"oauth_provider": nil,
		"oauth_id":       nil,
		"active":         false,
		"updated_at":     s.clock.Now(),
	}
	if err := s.repo.UpdateFields(ctx, userID, fields); err != nil {
		return err
	}
	s.log.Info("user record anonymized", zap.String("user_id", userID.String()))
	return nil
}
