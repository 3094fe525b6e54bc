package pages

import (
	"net/url"

	"control_center_echo/internal/config"
	"control_center_echo/internal/models"
	"control_center_echo/web/templates/shared"
)

// DashboardProps is the data for the dashboard page.
type DashboardProps struct {
	shared.LayoutProps
}

// ViewerProps is the data for the viewer page.
type ViewerProps struct {
	shared.LayoutProps
	Hotspots []models.Hotspot
	Selected models.Hotspot
	CTAHref  string
	ITwinID  string
	IModelID string
}

// ActivityProps is the data for the activity page.
type ActivityProps struct {
	shared.LayoutProps
	Events []models.ActivityEvent
	// Enabled is false when no database is configured.
	Enabled bool
}

// SettingsProps is the data for the settings page.
type SettingsProps struct {
	shared.LayoutProps
	Summary []config.SummaryItem
}

// ErrorPageProps is the data for error pages.
type ErrorPageProps struct {
	shared.LayoutProps
	ErrorTitle   string
	ErrorMessage string
	BackLink     string
	BackText     string
}

// BackHref defaults to the dashboard.
func (p ErrorPageProps) BackHref() string {
	if p.BackLink == "" {
		return "/app"
	}
	return p.BackLink
}

func (p ErrorPageProps) BackLabel() string {
	if p.BackLink == "" {
		return "Go to dashboard"
	}
	return p.BackText
}

// SigninCallbackProps is the data for the failed sign-in page.
type SigninCallbackProps struct {
	Title   string
	Message string
}

func hotspotHref(id string) string {
	return "/app/viewer?hotspot=" + url.QueryEscape(id)
}
