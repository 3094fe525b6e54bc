package shared

// LayoutProps is the data every shell page needs.
type LayoutProps struct {
	Title       string
	CurrentPath string
	// ReturnTo is the path and query the auth forms send the user back to.
	ReturnTo    string
	Breadcrumbs []Breadcrumb
	UserEmail   string
	UserName    string
	SignedIn    bool
	// AuthError is shown as an alert after a failed sign-in or sign-out.
	AuthError string
}

// DisplayName prefers the user's name and falls back to the email.
func (p LayoutProps) DisplayName() string {
	if p.UserName != "" {
		return p.UserName
	}
	return p.UserEmail
}

// ReturnPath is where sign-in and sign-out come back to.
func (p LayoutProps) ReturnPath() string {
	if p.ReturnTo != "" {
		return p.ReturnTo
	}
	return p.CurrentPath
}
