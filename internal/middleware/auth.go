package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"control_center_echo/internal/auth"
)

// SessionCookieName is the cookie holding the session id.
const SessionCookieName = "session"

// Context keys set by LoadSession.
const (
	ContextSession   = "session"
	ContextUserUID   = "userUID"
	ContextUserEmail = "userEmail"
	ContextUserName  = "userName"
)

// LoadSession resolves the session cookie and puts the session and user
// info in the context. Pages are public, so a missing or stale session only
// clears the cookie; it never redirects.
func LoadSession(store *auth.SessionStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			sess, err := store.Load(c.Request().Context(), cookie.Value)
			if err != nil {
				if !errors.Is(err, auth.ErrSessionNotFound) {
					log.WithError(err).Warn("Failed to load session")
				}
				c.SetCookie(ClearSessionCookie())
				return next(c)
			}

			c.Set(ContextSession, sess)
			c.Set(ContextUserUID, sess.Subject)
			c.Set(ContextUserEmail, sess.Email)
			c.Set(ContextUserName, sess.DisplayName())

			return next(c)
		}
	}
}

// SessionFromContext returns the session loaded for this request, if any.
func SessionFromContext(c echo.Context) *auth.Session {
	sess, _ := c.Get(ContextSession).(*auth.Session)
	return sess
}

// NewSessionCookie builds the HTTP-only session cookie for sess.
func NewSessionCookie(sess *auth.Session, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    sess.ID,
		MaxAge:   int(time.Until(sess.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   secure,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Path:     "/",
	}
}
