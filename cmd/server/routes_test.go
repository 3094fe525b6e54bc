package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"control_center_echo/internal/auth"
	"control_center_echo/internal/config"
	"control_center_echo/internal/services"
)

type stubOIDC struct{}

func (stubOIDC) SigninRedirect(context.Context) (string, error) {
	return "https://idp.example.com/authorize", nil
}

func (stubOIDC) SigninCallback(context.Context, *url.URL) (*auth.Session, error) {
	return nil, auth.ErrNoState
}

func (stubOIDC) SignoutRedirect(context.Context, *auth.Session) (string, error) {
	return "https://idp.example.com/logout", nil
}

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	result := config.Load(map[string]string{
		"AUTH_CLIENT_ID":                 "spa-client",
		"AUTH_REDIRECT_URI":              "http://localhost:8080/signin-callback",
		"AUTH_POST_SIGNOUT_REDIRECT_URI": "http://localhost:8080/",
		"AUTH_CLIENT_SECRET":             "do-not-show",
	})
	require.True(t, result.OK(), "config: %v", result.Err())

	cache := services.NewMemoryStore(time.Hour, time.Minute)
	return newServer(app{
		cfg:      result.Config,
		auth:     auth.NewClient(stubOIDC{}),
		sessions: auth.NewSessionStore(cache),
		activity: services.NopActivityLog{},
	})
}

func TestRoutes(t *testing.T) {
	e := newTestServer(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantBody   []string
		location   string
	}{
		{name: "root redirects", method: http.MethodGet, path: "/", wantStatus: http.StatusTemporaryRedirect, location: "/app"},
		{name: "dashboard", method: http.MethodGet, path: "/app", wantStatus: http.StatusOK,
			wantBody: []string{`class="active" aria-current="page">Dashboard`, "Sign in"}},
		{name: "viewer", method: http.MethodGet, path: "/app/viewer", wantStatus: http.StatusOK,
			wantBody: []string{`class="active" aria-current="page">Viewer`}},
		{name: "activity", method: http.MethodGet, path: "/app/activity", wantStatus: http.StatusOK,
			wantBody: []string{"not available"}},
		{name: "settings", method: http.MethodGet, path: "/app/settings", wantStatus: http.StatusOK,
			wantBody: []string{"spa-client", "https://ims.bentley.com"}},
		{name: "unknown page", method: http.MethodGet, path: "/app/nowhere", wantStatus: http.StatusNotFound,
			wantBody: []string{"Page Not Found"}},
		{name: "sign-in redirects to the provider", method: http.MethodPost, path: "/auth/signin", wantStatus: http.StatusSeeOther,
			location: "https://idp.example.com/authorize"},
		{name: "callback failure", method: http.MethodGet, path: "/signin-callback", wantStatus: http.StatusOK,
			wantBody: []string{"Sign-in failed: No state in response"}},
		{name: "chat without assistant", method: http.MethodPost, path: "/chat", body: `{"message":"hi"}`,
			wantStatus: http.StatusServiceUnavailable, wantBody: []string{`"error"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.body != "" {
				req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			for _, want := range tt.wantBody {
				assert.Contains(t, rec.Body.String(), want)
			}
			if tt.location != "" {
				assert.Equal(t, tt.location, rec.Header().Get(echo.HeaderLocation))
			}
		})
	}
}

func TestSettingsHidesClientSecret(t *testing.T) {
	e := newTestServer(t)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app/settings", nil))

	assert.NotContains(t, rec.Body.String(), "do-not-show")
}

func TestChatRoutesLimitBodySize(t *testing.T) {
	e := newTestServer(t)
	long := strings.Repeat("a", 20*1024)

	tests := []struct {
		name        string
		path        string
		contentType string
		body        string
	}{
		{name: "json api", path: "/chat", contentType: echo.MIMEApplicationJSON, body: `{"message":"` + long + `"}`},
		{name: "widget", path: "/app/chat/messages", contentType: echo.MIMEApplicationForm, body: "message=" + long},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, tt.contentType)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		})
	}

	t.Run("json error body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"`+long+`"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.JSONEq(t, `{"error":"The message is too long."}`, rec.Body.String())
	})
}
