package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"control_center_echo/internal/services"
	"control_center_echo/web/templates/pages"
)

const recentActivityLimit = 20

// ActivityHandler renders the activity feed.
type ActivityHandler struct {
	activity services.ActivityLog
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(activity services.ActivityLog) *ActivityHandler {
	if activity == nil {
		activity = services.NopActivityLog{}
	}
	return &ActivityHandler{activity: activity}
}

// Activity renders the most recent events. Without a database the page
// shows a placeholder.
func (h *ActivityHandler) Activity(c echo.Context) error {
	props := pages.ActivityProps{
		LayoutProps: layoutProps(c, "Activity"),
	}

	if _, ok := h.activity.(services.NopActivityLog); !ok {
		events, err := h.activity.Recent(c.Request().Context(), recentActivityLimit)
		if err != nil {
			log.WithError(err).Error("Failed to load activity")
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load activity")
		}
		props.Enabled = true
		props.Events = events
	}

	return render(c, http.StatusOK, pages.Activity(props))
}
