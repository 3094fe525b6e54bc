package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"control_center_echo/internal/services"
)

const (
	loginTransactionTTL       = 10 * time.Minute
	loginTransactionKeyPrefix = "signin:"
)

// Callback errors. Their text is shown to the user as is.
var (
	ErrNoState         = errors.New("No state in response")
	ErrNoMatchingState = errors.New("No matching state found in storage")
	ErrNoCode          = errors.New("No code in response")
	ErrNoIDToken       = errors.New("No id_token in token response")
	ErrNonceMismatch   = errors.New("Nonce in id_token does not match the sign-in request")
)

// ProviderError is an error the identity provider sent back on the redirect.
type ProviderError struct {
	Code        string
	Description string
}

func (e *ProviderError) Error() string {
	if e.Description != "" {
		return e.Description
	}
	return e.Code
}

// OIDCClient is the underlying OpenID Connect client.
type OIDCClient interface {
	// SigninRedirect starts a sign-in and returns the provider URL to send
	// the browser to.
	SigninRedirect(ctx context.Context) (string, error)
	// SigninCallback completes the code exchange for the callback request URL.
	SigninCallback(ctx context.Context, callbackURL *url.URL) (*Session, error)
	// SignoutRedirect returns the URL that ends the session at the provider.
	SignoutRedirect(ctx context.Context, sess *Session) (string, error)
}

// ProviderConfig configures BrowserClient.
type ProviderConfig struct {
	Authority              string
	ClientID               string
	ClientSecret           string
	RedirectURI            string
	PostSignoutRedirectURI string
	Scopes                 []string
	SessionTTL             time.Duration
}

// loginTransaction is the state kept between SigninRedirect and
// SigninCallback.
type loginTransaction struct {
	State        string    `json:"state"`
	CodeVerifier string    `json:"code_verifier"`
	Nonce        string    `json:"nonce"`
	CreatedAt    time.Time `json:"created_at"`
}

type discovery struct {
	oauth         *oauth2.Config
	verifier      *oidc.IDTokenVerifier
	endSessionURL string
}

// BrowserClient runs the authorization code flow with PKCE against the
// configured authority. Provider metadata is discovered on first use and
// cached; a failed discovery is retried on the next call.
type BrowserClient struct {
	cfg   ProviderConfig
	store services.Cache
	now   func() time.Time

	mu   sync.Mutex
	disc *discovery
}

var _ OIDCClient = (*BrowserClient)(nil)

// NewBrowserClient creates an OIDC client. Login transactions are kept in store.
func NewBrowserClient(cfg ProviderConfig, store services.Cache) *BrowserClient {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 8 * time.Hour
	}
	return &BrowserClient{cfg: cfg, store: store, now: time.Now}
}

func (b *BrowserClient) discover(ctx context.Context) (*discovery, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.disc != nil {
		return b.disc, nil
	}

	// the provider keeps this context for later JWKS fetches
	provider, err := oidc.NewProvider(context.WithoutCancel(ctx), b.cfg.Authority)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider %s: %w", b.cfg.Authority, err)
	}

	var meta struct {
		EndSessionEndpoint string `json:"end_session_endpoint"`
	}
	if err := provider.Claims(&meta); err != nil {
		return nil, fmt.Errorf("failed to read provider metadata: %w", err)
	}

	b.disc = &discovery{
		oauth: &oauth2.Config{
			ClientID:     b.cfg.ClientID,
			ClientSecret: b.cfg.ClientSecret,
			Endpoint:     provider.Endpoint(),
			RedirectURL:  b.cfg.RedirectURI,
			Scopes:       b.cfg.Scopes,
		},
		verifier:      provider.Verifier(&oidc.Config{ClientID: b.cfg.ClientID}),
		endSessionURL: meta.EndSessionEndpoint,
	}
	log.WithField("authority", b.cfg.Authority).Info("OIDC provider discovered")
	return b.disc, nil
}

func (b *BrowserClient) SigninRedirect(ctx context.Context) (string, error) {
	d, err := b.discover(ctx)
	if err != nil {
		return "", err
	}

	tx := loginTransaction{
		State:        uuid.NewString(),
		CodeVerifier: oauth2.GenerateVerifier(),
		Nonce:        uuid.NewString(),
		CreatedAt:    b.now(),
	}
	if err := b.store.Set(ctx, loginTransactionKeyPrefix+tx.State, tx, loginTransactionTTL); err != nil {
		return "", fmt.Errorf("failed to store sign-in state: %w", err)
	}

	return d.oauth.AuthCodeURL(tx.State,
		oauth2.S256ChallengeOption(tx.CodeVerifier),
		oidc.Nonce(tx.Nonce),
	), nil
}

func (b *BrowserClient) SigninCallback(ctx context.Context, callbackURL *url.URL) (*Session, error) {
	query := callbackURL.Query()
	state := query.Get("state")

	if code := query.Get("error"); code != "" {
		if state != "" {
			_ = b.store.Delete(ctx, loginTransactionKeyPrefix+state)
		}
		return nil, &ProviderError{Code: code, Description: query.Get("error_description")}
	}

	if state == "" {
		return nil, ErrNoState
	}

	var tx loginTransaction
	if err := b.store.Take(ctx, loginTransactionKeyPrefix+state, &tx); err != nil {
		if errors.Is(err, services.ErrCacheMiss) {
			return nil, ErrNoMatchingState
		}
		return nil, fmt.Errorf("failed to load sign-in state: %w", err)
	}

	code := query.Get("code")
	if code == "" {
		return nil, ErrNoCode
	}

	d, err := b.discover(ctx)
	if err != nil {
		return nil, err
	}

	token, err := d.oauth.Exchange(ctx, code, oauth2.VerifierOption(tx.CodeVerifier))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, ErrNoIDToken
	}

	idToken, err := d.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify id_token: %w", err)
	}
	if idToken.Nonce != tx.Nonce {
		return nil, ErrNonceMismatch
	}

	var claims struct {
		Email             string `json:"email"`
		Name              string `json:"name"`
		PreferredUsername string `json:"preferred_username"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to read id_token claims: %w", err)
	}

	name := claims.Name
	if name == "" {
		name = claims.PreferredUsername
	}

	return &Session{
		ID:        uuid.NewString(),
		Subject:   idToken.Subject,
		Email:     claims.Email,
		Name:      name,
		IDToken:   rawIDToken,
		ExpiresAt: b.now().Add(b.cfg.SessionTTL),
	}, nil
}

func (b *BrowserClient) SignoutRedirect(ctx context.Context, sess *Session) (string, error) {
	d, err := b.discover(ctx)
	if err != nil {
		return "", err
	}
	if d.endSessionURL == "" {
		return b.cfg.PostSignoutRedirectURI, nil
	}

	u, err := url.Parse(d.endSessionURL)
	if err != nil {
		return "", fmt.Errorf("invalid end_session_endpoint: %w", err)
	}

	query := u.Query()
	query.Set("client_id", b.cfg.ClientID)
	query.Set("post_logout_redirect_uri", b.cfg.PostSignoutRedirectURI)
	if sess != nil && sess.IDToken != "" {
		query.Set("id_token_hint", sess.IDToken)
	}
	u.RawQuery = query.Encode()
	return u.String(), nil
}
