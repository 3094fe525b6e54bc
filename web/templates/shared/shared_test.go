package shared

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"control_center_echo/internal/chat"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestIsActive(t *testing.T) {
	dashboard, viewer := NavItems[0], NavItems[1]

	tests := []struct {
		name     string
		current  string
		item     NavItem
		expected bool
	}{
		{name: "dashboard exact", current: "/app", item: dashboard, expected: true},
		{name: "dashboard trailing slash", current: "/app/", item: dashboard, expected: true},
		{name: "dashboard not on children", current: "/app/viewer", item: dashboard, expected: false},
		{name: "viewer exact", current: "/app/viewer", item: viewer, expected: true},
		{name: "viewer child", current: "/app/viewer/site-overview", item: viewer, expected: true},
		{name: "viewer sibling prefix", current: "/app/viewerx", item: viewer, expected: false},
		{name: "other page", current: "/app/settings", item: viewer, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsActive(tt.current, tt.item))
		})
	}
}

// renderLayout renders the shell around body the way a page component does.
func renderLayout(t *testing.T, props LayoutProps, body string) string {
	t.Helper()
	var buf bytes.Buffer
	ctx := templ.WithChildren(context.Background(), templ.Raw(body))
	require.NoError(t, Layout(props).Render(ctx, &buf))
	return buf.String()
}

func TestLayoutHighlightsOneLink(t *testing.T) {
	html := renderLayout(t, LayoutProps{Title: "Viewer", CurrentPath: "/app/viewer"}, "<p>body</p>")

	assert.Equal(t, 1, strings.Count(html, `aria-current="page"`))
	assert.Contains(t, html, `<a href="/app/viewer" class="active" aria-current="page">Viewer</a>`)
	assert.Contains(t, html, `<main class="shell-outlet"><p>body</p></main>`)
	assert.True(t, strings.HasPrefix(html, "<!doctype html>"))
}

func TestLayoutWithoutChildren(t *testing.T) {
	html := render(t, Layout(LayoutProps{Title: "Empty"}))
	assert.Contains(t, html, `<main class="shell-outlet"></main>`)
	assert.Contains(t, html, "<title>Empty | Control Center</title>")
}

func TestLayoutAuthButtons(t *testing.T) {
	signedOut := render(t, Layout(LayoutProps{CurrentPath: "/app"}))
	assert.Contains(t, signedOut, `action="/auth/signin"`)
	assert.NotContains(t, signedOut, `action="/auth/signout"`)

	signedIn := render(t, Layout(LayoutProps{CurrentPath: "/app", SignedIn: true, UserEmail: "ada@example.com"}))
	assert.Contains(t, signedIn, `action="/auth/signout"`)
	assert.Contains(t, signedIn, `<span class="shell-user">ada@example.com</span>`)
}

func TestLayoutAuthFormsKeepQuery(t *testing.T) {
	tests := []struct {
		name     string
		props    LayoutProps
		expected string
	}{
		{
			name:     "path only",
			props:    LayoutProps{CurrentPath: "/app/settings"},
			expected: `value="/app/settings"`,
		},
		{
			name:     "path and query",
			props:    LayoutProps{CurrentPath: "/app/viewer", ReturnTo: "/app/viewer?hotspot=clash-review&x=1"},
			expected: `value="/app/viewer?hotspot=clash-review&amp;x=1"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, render(t, Layout(tt.props)), `name="return_to" `+tt.expected)
		})
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Ada", LayoutProps{UserName: "Ada", UserEmail: "ada@example.com"}.DisplayName())
	assert.Equal(t, "ada@example.com", LayoutProps{UserEmail: "ada@example.com"}.DisplayName())
}

func TestLayoutShowsAuthError(t *testing.T) {
	html := render(t, Layout(LayoutProps{AuthError: "Sign-in failed: <offline>"}))
	assert.Contains(t, html, `role="alert">Sign-in failed: &lt;offline&gt;</div>`)
}

func TestChatFragmentEscapesMessages(t *testing.T) {
	html := render(t, ChatFragment([]chat.Message{
		{Sender: chat.SenderUser, Text: "<script>"},
		{Sender: chat.SenderAssistant, Text: "hi"},
	}, true, chat.SendLabel))

	assert.Contains(t, html, "You: &lt;script&gt;")
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "AI: hi")
	assert.Contains(t, html, `hx-swap-oob="true">Send</button>`)
	assert.Less(t, strings.Index(html, "You:"), strings.Index(html, "AI:"))
	assert.Contains(t, html, `<div class="chat-message chat-message--user">`)
	assert.Contains(t, html, `<div class="chat-message chat-message--assistant">`)
}

func TestSendButtonDisabledWhileBusy(t *testing.T) {
	html := render(t, ChatFragment(nil, false, chat.SendingLabel))
	assert.Equal(t, `<button id="chat-send" type="submit" form="chat-form" hx-swap-oob="true" disabled>Sending...</button>`, html)

	widget := render(t, ChatWidget())
	assert.Contains(t, widget, `<button id="chat-send" type="submit" form="chat-form">Send</button>`)
	assert.NotContains(t, widget, "hx-swap-oob")
}
