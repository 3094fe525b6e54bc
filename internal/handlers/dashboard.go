package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"control_center_echo/web/templates/pages"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct{}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

// Dashboard renders the dashboard page
func (h *DashboardHandler) Dashboard(c echo.Context) error {
	props := pages.DashboardProps{
		LayoutProps: layoutProps(c, "Dashboard"),
	}
	return render(c, http.StatusOK, pages.Dashboard(props))
}
