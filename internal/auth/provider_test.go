package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const (
	testClientID = "spa-client"
	testKeyID    = "test-key"
)

// fakeProvider is a minimal OpenID provider: discovery, JWKS and a token
// endpoint that issues an RS256-signed ID token for one accepted code.
type fakeProvider struct {
	t      *testing.T
	server *httptest.Server
	key    *jose.JSONWebKey
	signer jose.Signer

	withEndSession bool

	mu        sync.Mutex
	code      string
	challenge string
	nonce     string
	subject   string
	email     string
	name      string
}

func newFakeProvider(t *testing.T, withEndSession bool) *fakeProvider {
	t.Helper()

	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	key := &jose.JSONWebKey{Key: rsaKey, KeyID: testKeyID, Algorithm: string(jose.RS256), Use: "sig"}
	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.RS256, Key: key},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	require.NoError(t, err)

	p := &fakeProvider{
		t:              t,
		key:            key,
		signer:         signer,
		withEndSession: withEndSession,
		code:           "good-code",
		subject:        "user-1",
		email:          "ada@example.com",
		name:           "Ada Lovelace",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", p.handleDiscovery)
	mux.HandleFunc("/jwks", p.handleJWKS)
	mux.HandleFunc("/token", p.handleToken)
	p.server = httptest.NewServer(mux)
	t.Cleanup(p.server.Close)
	return p
}

func (p *fakeProvider) issuer() string {
	return p.server.URL
}

// expect records the PKCE challenge and nonce of the authorization request
// the next token request must match.
func (p *fakeProvider) expect(challenge, nonce string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.challenge = challenge
	p.nonce = nonce
}

func (p *fakeProvider) handleDiscovery(w http.ResponseWriter, _ *http.Request) {
	doc := map[string]interface{}{
		"issuer":                                p.issuer(),
		"authorization_endpoint":                p.issuer() + "/authorize",
		"token_endpoint":                        p.issuer() + "/token",
		"jwks_uri":                              p.issuer() + "/jwks",
		"response_types_supported":              []string{"code"},
		"subject_types_supported":               []string{"public"},
		"id_token_signing_alg_values_supported": []string{"RS256"},
	}
	if p.withEndSession {
		doc["end_session_endpoint"] = p.issuer() + "/logout"
	}
	writeJSON(w, doc)
}

func (p *fakeProvider) handleJWKS(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, jose.JSONWebKeySet{Keys: []jose.JSONWebKey{p.key.Public()}})
}

func (p *fakeProvider) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if oauth2.S256ChallengeFromVerifier(r.PostForm.Get("code_verifier")) != p.challenge {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"PKCE verification failed"}`))
		return
	}
	if r.PostForm.Get("code") != p.code {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"unknown code"}`))
		return
	}

	now := time.Now()
	idToken, err := jwt.Signed(p.signer).
		Claims(jwt.Claims{
			Issuer:   p.issuer(),
			Subject:  p.subject,
			Audience: jwt.Audience{testClientID},
			IssuedAt: jwt.NewNumericDate(now),
			Expiry:   jwt.NewNumericDate(now.Add(time.Hour)),
		}).
		Claims(map[string]interface{}{
			"nonce": p.nonce,
			"email": p.email,
			"name":  p.name,
		}).
		Serialize()
	require.NoError(p.t, err)

	writeJSON(w, map[string]interface{}{
		"access_token": "access-token",
		"token_type":   "Bearer",
		"expires_in":   3600,
		"id_token":     idToken,
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
