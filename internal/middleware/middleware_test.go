package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"control_center_echo/internal/auth"
	"control_center_echo/internal/services"
)

func TestLoadSession(t *testing.T) {
	store := auth.NewSessionStore(services.NewMemoryStore(time.Hour, time.Minute))
	sess := &auth.Session{ID: "abc", Subject: "user-1", Email: "ada@example.com", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, store.Save(context.Background(), sess))

	tests := []struct {
		name        string
		cookie      string
		wantSession bool
		wantCleared bool
	}{
		{name: "no cookie"},
		{name: "known session", cookie: "abc", wantSession: true},
		{name: "unknown session", cookie: "stale", wantCleared: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/app", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			var called bool
			handler := LoadSession(store)(func(c echo.Context) error {
				called = true
				return nil
			})
			require.NoError(t, handler(c))
			assert.True(t, called)

			got := SessionFromContext(c)
			if tt.wantSession {
				require.NotNil(t, got)
				assert.Equal(t, "user-1", got.Subject)
				assert.Equal(t, "ada@example.com", c.Get(ContextUserEmail))
			} else {
				assert.Nil(t, got)
			}

			cookies := rec.Result().Cookies()
			if tt.wantCleared {
				require.Len(t, cookies, 1)
				assert.Equal(t, -1, cookies[0].MaxAge)
			} else {
				assert.Empty(t, cookies)
			}
		})
	}
}

func TestCustomErrorHandler(t *testing.T) {
	t.Run("page not found", func(t *testing.T) {
		e := echo.New()
		e.HTTPErrorHandler = CustomErrorHandler
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Page Not Found")
		assert.Contains(t, rec.Body.String(), `<main class="shell-outlet">`)
	})

	t.Run("chat API errors are JSON", func(t *testing.T) {
		e := echo.New()
		e.HTTPErrorHandler = CustomErrorHandler
		e.POST("/chat", func(c echo.Context) error {
			return echo.NewHTTPError(http.StatusBadGateway, "upstream failed")
		})
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chat", nil))

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.JSONEq(t, `{"error":"upstream failed"}`, rec.Body.String())
	})
}
