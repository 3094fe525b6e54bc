package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"control_center_echo/internal/auth"
	"control_center_echo/internal/middleware"
	"control_center_echo/internal/models"
	"control_center_echo/internal/services"
	"control_center_echo/web/templates/pages"
)

// AuthHandler handles sign-in, sign-out and the sign-in callback.
type AuthHandler struct {
	client        *auth.Client
	sessions      *auth.SessionStore
	activity      services.ActivityLog
	secureCookies bool
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(client *auth.Client, sessions *auth.SessionStore, activity services.ActivityLog, secureCookies bool) *AuthHandler {
	if activity == nil {
		activity = services.NopActivityLog{}
	}
	return &AuthHandler{
		client:        client,
		sessions:      sessions,
		activity:      activity,
		secureCookies: secureCookies,
	}
}

// SignIn starts the redirect sign-in. On failure the browser goes back to
// the page it came from with the error in auth_error.
func (h *AuthHandler) SignIn(c echo.Context) error {
	ctx := c.Request().Context()

	target, err := h.client.SignIn(ctx)
	if err != nil {
		log.WithError(err).Error("Sign-in redirect failed")
		h.record(ctx, models.ActivityKindSigninFailed, "", err.Error())
		return c.Redirect(http.StatusSeeOther, withAuthError(returnTo(c), "Sign-in failed: "+err.Error()))
	}
	return c.Redirect(http.StatusSeeOther, target)
}

// SignOut ends the session at the provider. The local session is dropped
// only once the provider redirect is known, so a failed sign-out leaves the
// user signed in.
func (h *AuthHandler) SignOut(c echo.Context) error {
	ctx := c.Request().Context()
	sess := middleware.SessionFromContext(c)

	target, err := h.client.SignOut(ctx, sess)
	if err != nil {
		log.WithError(err).Error("Sign-out redirect failed")
		return c.Redirect(http.StatusSeeOther, withAuthError(returnTo(c), "Sign-out failed: "+err.Error()))
	}

	if sess != nil {
		if err := h.sessions.Delete(ctx, sess.ID); err != nil {
			log.WithError(err).Warn("Failed to delete session")
		}
		h.record(ctx, models.ActivityKindSignout, sess.Subject, sess.DisplayName())
	}
	c.SetCookie(middleware.ClearSessionCookie())
	return c.Redirect(http.StatusSeeOther, target)
}

// SigninCallback completes the sign-in. Success redirects to the viewer;
// failure renders the callback page with the error.
func (h *AuthHandler) SigninCallback(c echo.Context) error {
	ctx := c.Request().Context()

	outcome := CompleteSignin(ctx, h.client, c.Request().URL)
	if outcome.State == CallbackSignedIn {
		if err := h.sessions.Save(ctx, outcome.Session); err != nil {
			log.WithError(err).Error("Failed to save session")
			outcome = CallbackOutcome{State: CallbackPending}
			outcome.Resolve(nil, err)
		}
	}

	if outcome.State == CallbackFailed {
		log.WithError(outcome.Err).Warn("Sign-in callback failed")
		h.record(ctx, models.ActivityKindSigninFailed, "", outcome.Err.Error())
		return render(c, http.StatusOK, pages.SigninCallback(outcome.Page()))
	}

	sess := outcome.Session
	log.WithFields(log.Fields{"subject": sess.Subject}).Info("User signed in")
	h.record(ctx, models.ActivityKindSignin, sess.Subject, sess.DisplayName())

	c.SetCookie(middleware.NewSessionCookie(sess, h.secureCookies))
	return c.Redirect(http.StatusFound, ViewerPath)
}

func (h *AuthHandler) record(ctx context.Context, kind models.ActivityKind, subject, message string) {
	event := models.ActivityEvent{Kind: kind, Subject: subject, Message: message}
	if err := h.activity.Record(ctx, event); err != nil {
		log.WithError(err).Warn("Failed to record activity")
	}
}

// returnTo is the local page to come back to, taken from the form and
// limited to same-origin paths.
func returnTo(c echo.Context) string {
	path := c.FormValue("return_to")
	if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") || strings.HasPrefix(path, "/\\") {
		return "/app"
	}
	return path
}

func withAuthError(path, message string) string {
	u, err := url.Parse(path)
	if err != nil {
		u = &url.URL{Path: "/app"}
	}
	query := u.Query()
	query.Set(AuthErrorParam, message)
	u.RawQuery = query.Encode()
	return u.String()
}
