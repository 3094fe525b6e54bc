package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"control_center_echo/web/templates/pages"
	"control_center_echo/web/templates/shared"
)

// CustomErrorHandler creates a custom error handler for Echo
func CustomErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	errorTitle := "Internal Server Error"
	errorMessage := ""

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code

		if msg, ok := he.Message.(string); ok && msg != "" {
			errorMessage = msg
		}

		switch code {
		case http.StatusNotFound:
			errorTitle = "Page Not Found"
			if errorMessage == "" || errorMessage == http.StatusText(code) {
				errorMessage = "The page you're looking for doesn't exist."
			}
		case http.StatusMethodNotAllowed:
			errorTitle = "Method Not Allowed"
			if errorMessage == "" || errorMessage == http.StatusText(code) {
				errorMessage = "This page does not support that request."
			}
		case http.StatusBadRequest:
			errorTitle = "Bad Request"
			if errorMessage == "" {
				errorMessage = "The request could not be processed."
			}
		case http.StatusRequestEntityTooLarge:
			errorTitle = "Request Too Large"
			if errorMessage == "" || errorMessage == http.StatusText(code) {
				errorMessage = "The message is too long."
			}
		case http.StatusBadGateway:
			errorTitle = "Bad Gateway"
			if errorMessage == "" {
				errorMessage = "An upstream service failed. Please try again later."
			}
		case http.StatusServiceUnavailable:
			errorTitle = "Service Unavailable"
			if errorMessage == "" {
				errorMessage = "This feature is not configured."
			}
		default:
			if errorMessage == "" {
				errorMessage = "Something went wrong. Please try again later."
			}
		}
	} else {
		errorMessage = "Something went wrong. Please try again later."
	}

	entry := log.WithFields(log.Fields{"status": code, "path": c.Request().URL.Path})
	if code >= http.StatusInternalServerError {
		entry.WithError(err).Error("Request error")
	} else {
		entry.WithError(err).Debug("Request error")
	}

	// The chat API speaks JSON.
	if isJSONRoute(c) {
		if jerr := c.JSON(code, map[string]string{"error": errorMessage}); jerr != nil {
			log.WithError(jerr).Error("Failed to write JSON error")
		}
		return
	}

	email, _ := c.Get(ContextUserEmail).(string)
	name, _ := c.Get(ContextUserName).(string)

	props := pages.ErrorPageProps{
		LayoutProps: shared.LayoutProps{
			Title:       errorTitle,
			CurrentPath: c.Request().URL.Path,
			ReturnTo:    c.Request().URL.RequestURI(),
			Breadcrumbs: []shared.Breadcrumb{
				{Title: "Home", URL: "/app"},
				{Title: "Error", URL: ""},
			},
			UserEmail: email,
			UserName:  name,
			SignedIn:  SessionFromContext(c) != nil,
		},
		ErrorTitle:   errorTitle,
		ErrorMessage: errorMessage,
	}

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)

	if renderErr := pages.ErrorPage(props).Render(c.Request().Context(), c.Response()); renderErr != nil {
		log.WithError(fmt.Errorf("failed to render error page: %w", renderErr)).Error("Error page")
		_ = c.String(code, errorMessage)
	}
}

func isJSONRoute(c echo.Context) bool {
	path := c.Request().URL.Path
	if path == "/chat" || strings.HasPrefix(path, "/chat/") {
		return true
	}
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}
