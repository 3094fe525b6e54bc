package auth

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"control_center_echo/internal/services"
)

type recordingOIDC struct {
	calls   []string
	url     string
	session *Session
	err     error
}

func (r *recordingOIDC) SigninRedirect(context.Context) (string, error) {
	r.calls = append(r.calls, "signin")
	return r.url, r.err
}

func (r *recordingOIDC) SigninCallback(_ context.Context, _ *url.URL) (*Session, error) {
	r.calls = append(r.calls, "callback")
	return r.session, r.err
}

func (r *recordingOIDC) SignoutRedirect(context.Context, *Session) (string, error) {
	r.calls = append(r.calls, "signout")
	return r.url, r.err
}

func TestClientPassesThrough(t *testing.T) {
	ctx := context.Background()
	sess := &Session{ID: "s1"}
	underlying := &recordingOIDC{url: "https://idp/authorize", session: sess}
	client := NewClient(underlying)

	got, err := client.SignIn(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://idp/authorize", got)

	gotSess, err := client.HandleSigninCallback(ctx, &url.URL{})
	require.NoError(t, err)
	assert.Same(t, sess, gotSess)

	_, err = client.SignOut(ctx, sess)
	require.NoError(t, err)

	assert.Equal(t, []string{"signin", "callback", "signout"}, underlying.calls)
}

func TestClientReturnsUnderlyingErrorUnchanged(t *testing.T) {
	boom := errors.New("bad state")
	underlying := &recordingOIDC{err: boom}
	client := NewClient(underlying)

	_, err := client.HandleSigninCallback(context.Background(), &url.URL{})
	assert.Same(t, boom, err)
	assert.Len(t, underlying.calls, 1, "no retries")

	_, err = client.SignIn(context.Background())
	assert.Same(t, boom, err)
	_, err = client.SignOut(context.Background(), nil)
	assert.Same(t, boom, err)
}

func TestSessionStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(services.NewMemoryStore(time.Hour, time.Minute))
	sess := &Session{ID: "abc", Subject: "user-1", Email: "ada@example.com", ExpiresAt: time.Now().Add(time.Hour)}

	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.Subject)
	assert.Equal(t, "ada@example.com", got.DisplayName())

	require.NoError(t, store.Delete(ctx, "abc"))
	_, err = store.Load(ctx, "abc")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStoreRejectsExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := NewSessionStore(services.NewMemoryStore(time.Hour, time.Minute))
	store.now = func() time.Time { return now }

	assert.Error(t, store.Save(ctx, &Session{ID: "old", ExpiresAt: now.Add(-time.Second)}))

	require.NoError(t, store.Save(ctx, &Session{ID: "soon", ExpiresAt: now.Add(time.Minute)}))
	now = now.Add(2 * time.Minute)
	_, err := store.Load(ctx, "soon")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = store.Load(ctx, "")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
