package email

import (
	"context"

	"github.com/legaldraft/legaldraft/internal/auth/domain"
	"go.uber.org/zap"
)

// NoOpProvider satisfies the notifier contract when SMTP is unconfigured;
// reset tokens are then only observable in debug logs.
type NoOpProvider struct {
	log *zap.Logger
}

func NewNoOp(log *zap.Logger) *NoOpProvider {
	return &NoOpProvider{log: log.Named("email.noop")}
}

func (p *NoOpProvider) SendPasswordReset(ctx context.Context, to, displayName, resetToken string) error {
	_ = ctx
	_ = displayName
	_ = resetToken
	p.log.Debug("password reset email suppressed", zap.String("to", to))
	return nil
}

var _ domain.Notifier = (*NoOpProvider)(nil)
