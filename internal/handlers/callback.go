package handlers

import (
	"context"
	"net/url"

	"control_center_echo/internal/auth"
	"control_center_echo/web/templates/pages"
)

// ViewerPath is where a completed sign-in lands.
const ViewerPath = "/app/viewer"

// CallbackState is the state of the sign-in callback page.
type CallbackState string

const (
	CallbackPending  CallbackState = "pending"
	CallbackSignedIn CallbackState = "signed_in"
	CallbackFailed   CallbackState = "failed"
)

// CallbackOutcome is the result of completing a sign-in. It starts pending
// and is resolved exactly once.
type CallbackOutcome struct {
	State   CallbackState
	Session *auth.Session
	// Message is the user-facing failure text, set only when State is
	// CallbackFailed.
	Message string
	Err     error
}

// CompleteSignin hands the callback URL to the auth client once and maps the
// result to a page state. Success navigates to the viewer; failure carries
// "Sign-in failed: " followed by the error text.
func CompleteSignin(ctx context.Context, client *auth.Client, callbackURL *url.URL) CallbackOutcome {
	outcome := CallbackOutcome{State: CallbackPending}
	outcome.Resolve(client.HandleSigninCallback(ctx, callbackURL))
	return outcome
}

// Resolve moves a pending outcome to signed_in or failed. It reports false
// and leaves the outcome unchanged when it was already resolved.
func (o *CallbackOutcome) Resolve(sess *auth.Session, err error) bool {
	if o.State != CallbackPending {
		return false
	}
	if err != nil {
		o.State = CallbackFailed
		o.Message = "Sign-in failed: " + err.Error()
		o.Err = err
		return true
	}
	o.State = CallbackSignedIn
	o.Session = sess
	return true
}

// Page is the callback page for a failed outcome.
func (o CallbackOutcome) Page() pages.SigninCallbackProps {
	return pages.SigninCallbackProps{
		Title:   "Sign-in failed",
		Message: o.Message,
	}
}
