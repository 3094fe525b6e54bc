package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"control_center_echo/internal/models"
	"control_center_echo/web/templates/pages"
)

// ViewerHandler renders the model viewer and its hotspots.
type ViewerHandler struct {
	marketingBaseURL string
	iTwinID          string
	iModelID         string
}

// NewViewerHandler creates a new ViewerHandler. CTA links are resolved
// against marketingBaseURL.
func NewViewerHandler(marketingBaseURL, iTwinID, iModelID string) *ViewerHandler {
	return &ViewerHandler{
		marketingBaseURL: marketingBaseURL,
		iTwinID:          iTwinID,
		iModelID:         iModelID,
	}
}

// Viewer renders the viewer page. The hotspot query parameter selects a
// hotspot; unknown or missing ids select the first one.
func (h *ViewerHandler) Viewer(c echo.Context) error {
	selected := models.FindHotspot(c.QueryParam("hotspot"))

	props := pages.ViewerProps{
		LayoutProps: layoutProps(c, "Viewer"),
		Hotspots:    models.Hotspots,
		Selected:    selected,
		CTAHref:     selected.CTAHref(h.marketingBaseURL),
		ITwinID:     h.iTwinID,
		IModelID:    h.iModelID,
	}
	return render(c, http.StatusOK, pages.Viewer(props))
}
