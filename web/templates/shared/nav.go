package shared

import "strings"

// Breadcrumb represents a navigation trail
type Breadcrumb struct {
	Title string
	URL   string
}

// NavItem is one link of the shell navigation.
type NavItem struct {
	Title string
	Path  string
	// Exact items are only active on their own path, not on children.
	Exact bool
}

// NavItems is the shell navigation, in display order.
var NavItems = []NavItem{
	{Title: "Dashboard", Path: "/app", Exact: true},
	{Title: "Viewer", Path: "/app/viewer"},
	{Title: "Activity", Path: "/app/activity"},
	{Title: "Settings", Path: "/app/settings"},
}

// IsActive reports whether item should be highlighted for the current path.
// Matching is by path-segment prefix: /app/viewer/x activates Viewer,
// /app/viewerx does not.
func IsActive(current string, item NavItem) bool {
	current = strings.TrimRight(current, "/")
	target := strings.TrimRight(item.Path, "/")
	if current == target {
		return true
	}
	if item.Exact {
		return false
	}
	return strings.HasPrefix(current, target+"/")
}
