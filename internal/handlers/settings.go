package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"control_center_echo/internal/config"
	"control_center_echo/web/templates/pages"
)

// SettingsHandler shows the non-secret runtime configuration.
type SettingsHandler struct {
	cfg *config.Config
}

func NewSettingsHandler(cfg *config.Config) *SettingsHandler {
	return &SettingsHandler{cfg: cfg}
}

func (h *SettingsHandler) Settings(c echo.Context) error {
	props := pages.SettingsProps{
		LayoutProps: layoutProps(c, "Settings"),
		Summary:     h.cfg.Summary(),
	}
	return render(c, http.StatusOK, pages.Settings(props))
}
