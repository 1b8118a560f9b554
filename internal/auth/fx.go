package auth

import (
	"github.com/legaldraft/legaldraft/internal/anonymize"
	"github.com/legaldraft/legaldraft/internal/auth/oauth"
	"github.com/legaldraft/legaldraft/internal/auth/policy"
	"github.com/legaldraft/legaldraft/internal/auth/repository"
	"github.com/legaldraft/legaldraft/internal/auth/service"
	"github.com/legaldraft/legaldraft/internal/auth/token"
	"go.uber.org/fx"
)

var Module = fx.Module("auth",
	fx.Provide(policy.FromConfig),
	fx.Provide(token.NewCodec),
	fx.Provide(repository.New),
	fx.Provide(anonymize.New),
	fx.Provide(service.New),
	fx.Provide(oauth.New),
)
