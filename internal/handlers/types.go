package handlers

import (
	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"control_center_echo/internal/middleware"
	"control_center_echo/web/templates/shared"
)

// AuthErrorParam carries a sign-in or sign-out failure back to the shell.
const AuthErrorParam = "auth_error"

// layoutProps builds the shell data common to every page.
func layoutProps(c echo.Context, title string) shared.LayoutProps {
	breadcrumbs := []shared.Breadcrumb{{Title: "Home", URL: "/app"}}
	if title != "Dashboard" {
		breadcrumbs = append(breadcrumbs, shared.Breadcrumb{Title: title, URL: ""})
	} else {
		breadcrumbs[0].URL = ""
	}

	return shared.LayoutProps{
		Title:       title,
		CurrentPath: c.Request().URL.Path,
		ReturnTo:    currentLocation(c),
		Breadcrumbs: breadcrumbs,
		UserEmail:   getStringFromContext(c, middleware.ContextUserEmail),
		UserName:    getStringFromContext(c, middleware.ContextUserName),
		SignedIn:    middleware.SessionFromContext(c) != nil,
		AuthError:   c.QueryParam(AuthErrorParam),
	}
}

// currentLocation is the request path and query without a stale auth error.
func currentLocation(c echo.Context) string {
	u := *c.Request().URL
	q := u.Query()
	q.Del(AuthErrorParam)
	u.RawQuery = q.Encode()
	return u.RequestURI()
}

// Helper to safely get string from context
func getStringFromContext(c echo.Context, key string) string {
	val := c.Get(key)
	if val == nil {
		return ""
	}
	strVal, ok := val.(string)
	if !ok {
		return ""
	}
	return strVal
}

// render writes an HTML component with the given status.
func render(c echo.Context, status int, component templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
	return component.Render(c.Request().Context(), c.Response())
}
