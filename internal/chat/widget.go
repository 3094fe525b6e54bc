// Package chat implements the assistant chat widget: a transcript of user and
// assistant messages, a send control, and the transport that carries a
// message to the chat API. The widget owns no globals; the view and the
// transport are injected.
package chat

import (
	"context"
	"strings"
)

const (
	SendLabel    = "Send"
	SendingLabel = "Sending..."

	// FallbackReply replaces the assistant answer when the request fails.
	FallbackReply = "Sorry, something went wrong while contacting the assistant."
)

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message is one line of the transcript.
type Message struct {
	Sender Sender
	Text   string
}

// Label is the text shown for the message, prefixed with its sender.
func (m Message) Label() string {
	if m.Sender == SenderUser {
		return "You: " + m.Text
	}
	return "AI: " + m.Text
}

// HTML is the label escaped for insertion into markup.
func (m Message) HTML() string {
	return Escape(m.Label())
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Escape replaces &, < and > with their HTML entities.
func Escape(s string) string {
	return htmlEscaper.Replace(s)
}

// Transport delivers a message to the assistant and returns its reply.
type Transport interface {
	Send(ctx context.Context, message string) (string, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, message string) (string, error)

func (f TransportFunc) Send(ctx context.Context, message string) (string, error) {
	return f(ctx, message)
}

// View is the surface the widget draws on.
type View interface {
	AppendMessage(msg Message)
	ClearInput()
	SetSendControl(enabled bool, label string)
}

// Widget wires a view to a transport.
type Widget struct {
	transport Transport
	view      View
}

// NewWidget creates a widget drawing on view and sending through transport.
func NewWidget(transport Transport, view View) *Widget {
	return &Widget{transport: transport, view: view}
}

// Send submits the input text. Blank input is ignored. The user message is
// appended before the request, the reply (or FallbackReply on any error)
// after it, and the send control is re-enabled in every case. It reports
// whether a request was made.
func (w *Widget) Send(ctx context.Context, input string) bool {
	text := strings.TrimSpace(input)
	if text == "" {
		return false
	}

	w.view.AppendMessage(Message{Sender: SenderUser, Text: text})
	w.view.ClearInput()
	w.view.SetSendControl(false, SendingLabel)
	defer w.view.SetSendControl(true, SendLabel)

	reply, err := w.transport.Send(ctx, text)
	if err != nil {
		reply = FallbackReply
	}
	w.view.AppendMessage(Message{Sender: SenderAssistant, Text: reply})
	return true
}
