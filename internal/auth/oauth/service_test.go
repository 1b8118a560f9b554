package oauth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/legaldraft/legaldraft/internal/auth/domain"
	"github.com/legaldraft/legaldraft/internal/config"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return New(config.Config{
		GoogleClientID:        "google-client-id",
		GoogleClientSecret:    "google-client-secret",
		MicrosoftClientID:     "ms-client-id",
		MicrosoftClientSecret: "ms-client-secret",
		OAuthRedirectURI:      "http://localhost:3000/oauth/callback",
	}, zap.NewNop())
}

func TestAuthorizationURLUnknownProvider(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.AuthorizationURL("github"); !errors.Is(err, ErrUnsupportedProvider) {
		t.Fatalf("expected ErrUnsupportedProvider, got %v", err)
	}
}

func TestAuthorizationURLGoogle(t *testing.T) {
	svc := newTestService(t)

	raw, err := svc.AuthorizationURL("google")
	if err != nil {
		t.Fatalf("failed to build url: %v", err)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("authorization url does not parse: %v", err)
	}
	if parsed.Host != "accounts.google.com" {
		t.Fatalf("expected google consent host, got %s", parsed.Host)
	}
	query := parsed.Query()
	if query.Get("client_id") != "google-client-id" {
		t.Fatalf("expected client_id, got %s", query.Get("client_id"))
	}
	if query.Get("state") == "" {
		t.Fatal("expected a state parameter")
	}
	if !strings.Contains(query.Get("scope"), "openid") {
		t.Fatalf("expected openid scope, got %s", query.Get("scope"))
	}
}

func TestAuthorizationURLStateIsFresh(t *testing.T) {
	svc := newTestService(t)

	first, err := svc.AuthorizationURL("google")
	if err != nil {
		t.Fatalf("failed to build url: %v", err)
	}
	second, err := svc.AuthorizationURL("google")
	if err != nil {
		t.Fatalf("failed to build url: %v", err)
	}
	if first == second {
		t.Fatal("expected a fresh state per authorization url")
	}
}

func TestExchangeMissingAccessToken(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ExchangeAndIdentify(context.Background(), "google", Exchange{IDToken: "whatever"})
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
}

func TestGoogleRequiresIDToken(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ExchangeAndIdentify(context.Background(), "google", Exchange{AccessToken: "access"})
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
}

func TestGoogleRejectedIDToken(t *testing.T) {
	svc := newTestService(t)
	svc.verify = func(ctx context.Context, raw, audience string) (map[string]any, error) {
		return nil, errors.New("signature mismatch")
	}

	_, err := svc.ExchangeAndIdentify(context.Background(), "google", Exchange{AccessToken: "access", IDToken: "forged"})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestGoogleIdentity(t *testing.T) {
	svc := newTestService(t)
	svc.verify = func(ctx context.Context, raw, audience string) (map[string]any, error) {
		if audience != "google-client-id" {
			t.Fatalf("expected audience google-client-id, got %s", audience)
		}
		return map[string]any{
			"sub":   "google-sub-1",
			"email": "alice@example.com",
			"name":  "Alice Example",
		}, nil
	}

	identity, err := svc.ExchangeAndIdentify(context.Background(), "google", Exchange{AccessToken: "access", IDToken: "valid"})
	if err != nil {
		t.Fatalf("failed to identify: %v", err)
	}
	if identity.Subject != "google-sub-1" || identity.Email != "alice@example.com" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
	if identity.Name == nil || *identity.Name != "Alice Example" {
		t.Fatalf("expected name claim, got %+v", identity.Name)
	}
}

func TestGoogleIdentityMissingClaims(t *testing.T) {
	svc := newTestService(t)
	svc.verify = func(ctx context.Context, raw, audience string) (map[string]any, error) {
		return map[string]any{"sub": "google-sub-1"}, nil
	}

	_, err := svc.ExchangeAndIdentify(context.Background(), "google", Exchange{AccessToken: "access", IDToken: "valid"})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for missing email, got %v", err)
	}
}

func TestMicrosoftUserinfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer ms-access" {
			t.Fatalf("expected bearer header, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sub":"ms-sub-1","email":"bob@example.com","name":"Bob Example"}`))
	}))
	defer srv.Close()

	svc := newTestService(t)
	p := svc.providers[domain.ProviderMicrosoft]
	p.UserinfoURL = srv.URL
	svc.providers[domain.ProviderMicrosoft] = p

	identity, err := svc.ExchangeAndIdentify(context.Background(), "microsoft", Exchange{AccessToken: "ms-access"})
	if err != nil {
		t.Fatalf("failed to identify: %v", err)
	}
	if identity.Subject != "ms-sub-1" || identity.Email != "bob@example.com" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestMicrosoftUserinfoRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	svc := newTestService(t)
	p := svc.providers[domain.ProviderMicrosoft]
	p.UserinfoURL = srv.URL
	svc.providers[domain.ProviderMicrosoft] = p

	_, err := svc.ExchangeAndIdentify(context.Background(), "microsoft", Exchange{AccessToken: "expired"})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

// A provider outage must not look like a credential failure to the caller.
func TestMicrosoftUserinfoOutage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	svc := newTestService(t)
	p := svc.providers[domain.ProviderMicrosoft]
	p.UserinfoURL = srv.URL
	svc.providers[domain.ProviderMicrosoft] = p

	_, err := svc.ExchangeAndIdentify(context.Background(), "microsoft", Exchange{AccessToken: "ms-access"})
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
	if errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatal("outage must not be classified as a credential failure")
	}
}

func TestMicrosoftUserinfoMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>gateway error</html>"))
	}))
	defer srv.Close()

	svc := newTestService(t)
	p := svc.providers[domain.ProviderMicrosoft]
	p.UserinfoURL = srv.URL
	svc.providers[domain.ProviderMicrosoft] = p

	_, err := svc.ExchangeAndIdentify(context.Background(), "microsoft", Exchange{AccessToken: "ms-access"})
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestProviderNameIsNormalized(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.AuthorizationURL(" Google "); err != nil {
		t.Fatalf("expected provider lookup to normalize, got %v", err)
	}
}
