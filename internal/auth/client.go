package auth

import (
	"context"
	"net/url"
)

// Client is the auth wrapper used by the handlers. Calls go straight to the
// underlying OIDC client and its errors are returned unchanged.
type Client struct {
	oidc OIDCClient
}

// NewClient wraps an OIDC client.
func NewClient(oidc OIDCClient) *Client {
	return &Client{oidc: oidc}
}

// SignIn returns the provider URL that starts the sign-in redirect.
func (c *Client) SignIn(ctx context.Context) (string, error) {
	return c.oidc.SigninRedirect(ctx)
}

// SignOut returns the provider URL that ends the session.
func (c *Client) SignOut(ctx context.Context, sess *Session) (string, error) {
	return c.oidc.SignoutRedirect(ctx, sess)
}

// HandleSigninCallback completes the code exchange for the callback URL.
func (c *Client) HandleSigninCallback(ctx context.Context, callbackURL *url.URL) (*Session, error) {
	return c.oidc.SigninCallback(ctx, callbackURL)
}
