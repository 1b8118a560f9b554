// Package oauth federates login against external identity providers.
package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/legaldraft/legaldraft/internal/auth/domain"
	"github.com/legaldraft/legaldraft/internal/config"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/microsoft"
	"google.golang.org/api/idtoken"
)

const stateBytes = 16

// Exchange is the callback payload the client hands back after the provider
// redirect. It is validated structurally before any network call.
type Exchange struct {
	AccessToken string `json:"access_token"`
	IDToken     string `json:"id_token"`
}

// Provider describes one federation target.
type Provider struct {
	Name   string
	Config oauth2.Config
	// RequireIDToken marks providers whose identity is read from a signed
	// ID token instead of a userinfo call.
	RequireIDToken bool
	UserinfoURL    string
	AuthParams     []oauth2.AuthCodeOption
}

// IDTokenVerifier checks an ID token's signature against the provider's
// published keys and returns its claims. Injectable for tests.
type IDTokenVerifier func(ctx context.Context, raw, audience string) (map[string]any, error)

type Service struct {
	log        *zap.Logger
	providers  map[string]Provider
	verify     IDTokenVerifier
	httpClient *http.Client
}

func New(cfg config.Config, log *zap.Logger) *Service {
	return &Service{
		log:        log.Named("auth.oauth"),
		providers:  defaultProviders(cfg),
		verify:     verifyGoogleIDToken,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func defaultProviders(cfg config.Config) map[string]Provider {
	scopes := []string{"openid", "email", "profile"}
	return map[string]Provider{
		domain.ProviderGoogle: {
			Name: domain.ProviderGoogle,
			Config: oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				RedirectURL:  cfg.OAuthRedirectURI,
				Scopes:       scopes,
				Endpoint:     google.Endpoint,
			},
			RequireIDToken: true,
			AuthParams:     []oauth2.AuthCodeOption{oauth2.AccessTypeOffline},
		},
		domain.ProviderMicrosoft: {
			Name: domain.ProviderMicrosoft,
			Config: oauth2.Config{
				ClientID:     cfg.MicrosoftClientID,
				ClientSecret: cfg.MicrosoftClientSecret,
				RedirectURL:  cfg.OAuthRedirectURI,
				Scopes:       scopes,
				Endpoint:     microsoft.AzureADEndpoint("common"),
			},
			UserinfoURL: "https://graph.microsoft.com/oidc/userinfo",
			AuthParams:  []oauth2.AuthCodeOption{oauth2.SetAuthURLParam("response_mode", "query")},
		},
	}
}

// AuthorizationURL builds the provider's consent URL with a fresh random
// state parameter.
func (s *Service) AuthorizationURL(provider string) (string, error) {
	p, err := s.lookup(provider)
	if err != nil {
		return "", err
	}

	state, err := randomState()
	if err != nil {
		return "", err
	}
	return p.Config.AuthCodeURL(state, p.AuthParams...), nil
}

// ExchangeAndIdentify validates the callback payload and resolves it to a
// provider-verified identity. Structural checks run before any decoding.
func (s *Service) ExchangeAndIdentify(ctx context.Context, provider string, ex Exchange) (domain.ExternalIdentity, error) {
	p, err := s.lookup(provider)
	if err != nil {
		return domain.ExternalIdentity{}, err
	}
	if strings.TrimSpace(ex.AccessToken) == "" {
		return domain.ExternalIdentity{}, ErrMissingField
	}
	if p.RequireIDToken && strings.TrimSpace(ex.IDToken) == "" {
		return domain.ExternalIdentity{}, ErrMissingField
	}

	var claims map[string]any
	if p.RequireIDToken {
		claims, err = s.verify(ctx, ex.IDToken, p.Config.ClientID)
		if err != nil {
			s.log.Warn("id token rejected", zap.String("provider", p.Name), zap.Error(err))
			return domain.ExternalIdentity{}, domain.ErrInvalidCredentials
		}
	} else {
		claims, err = s.fetchUserinfo(ctx, p, ex.AccessToken)
		if err != nil {
			return domain.ExternalIdentity{}, err
		}
	}

	identity := domain.ExternalIdentity{
		Subject: claimString(claims, "sub"),
		Email:   claimString(claims, "email"),
	}
	if name := claimString(claims, "name"); name != "" {
		identity.Name = &name
	}
	if identity.Subject == "" || identity.Email == "" {
		return domain.ExternalIdentity{}, domain.ErrInvalidCredentials
	}
	return identity, nil
}

func (s *Service) lookup(provider string) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(provider))
	p, ok := s.providers[name]
	if !ok {
		return Provider{}, ErrUnsupportedProvider
	}
	return p, nil
}

func (s *Service) fetchUserinfo(ctx context.Context, p Provider, accessToken string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.UserinfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s userinfo: %v: %w", p.Name, err, ErrProviderUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s userinfo read: %v: %w", p.Name, err, ErrProviderUnavailable)
	}

	// Only an explicit provider rejection of the token is a credential
	// failure; anything else is a downstream outage.
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, domain.ErrInvalidCredentials
	case resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices:
		return nil, fmt.Errorf("%s userinfo status %d: %w", p.Name, resp.StatusCode, ErrProviderUnavailable)
	}

	var claims map[string]any
	if err := json.Unmarshal(body, &claims); err != nil {
		return nil, fmt.Errorf("%s userinfo body: %w", p.Name, ErrProviderUnavailable)
	}
	return claims, nil
}

// verifyGoogleIDToken checks signature, audience and expiry against
// Google's published JWKS. The signature check is mandatory: an unverified
// ID token is an attacker-supplied identity.
func verifyGoogleIDToken(ctx context.Context, raw, audience string) (map[string]any, error) {
	payload, err := idtoken.Validate(ctx, raw, audience)
	if err != nil {
		return nil, err
	}
	claims := payload.Claims
	if claims == nil {
		claims = map[string]any{}
	}
	claims["sub"] = payload.Subject
	return claims, nil
}

func claimString(claims map[string]any, key string) string {
	if value, ok := claims[key].(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

func randomState() (string, error) {
	buf := make([]byte, stateBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
