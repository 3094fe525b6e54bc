package models

import "strings"

// Hotspot is a named point of interest shown on the viewer page, with an
// outbound call-to-action link.
type Hotspot struct {
	ID          string
	Title       string
	Description string
	CTALabel    string
	CTAPath     string
}

// Hotspots is the fixed list shown on the viewer page.
var Hotspots = []Hotspot{
	{
		ID:          "site-overview",
		Title:       "Site overview",
		Description: "A federated view of the whole site model. Pan across disciplines and inspect any element's properties in context.",
		CTALabel:    "Explore digital twins",
		CTAPath:     "/solutions/digital-twins",
	},
	{
		ID:          "clash-review",
		Title:       "Clash review",
		Description: "Structural and mechanical models overlap here. Review the clash, assign it, and track the fix through to the next design iteration.",
		CTALabel:    "See design review",
		CTAPath:     "/solutions/design-review",
	},
}

// FindHotspot returns the hotspot with the given id. An unknown or empty id
// selects the first hotspot.
func FindHotspot(id string) Hotspot {
	for _, h := range Hotspots {
		if h.ID == id {
			return h
		}
	}
	return Hotspots[0]
}

// CTAHref joins the marketing base URL and the hotspot's path. Trailing
// slashes on the base are stripped.
func (h Hotspot) CTAHref(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + h.CTAPath
}
