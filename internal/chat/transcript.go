package chat

import "sync"

// Transcript is an in-memory View. The server renders it into the widget
// fragment; tests inspect it directly.
type Transcript struct {
	mu          sync.Mutex
	messages    []Message
	input       string
	sendEnabled bool
	sendLabel   string
}

var _ View = (*Transcript)(nil)

// NewTranscript returns an empty transcript with an enabled send control.
func NewTranscript() *Transcript {
	return &Transcript{sendEnabled: true, sendLabel: SendLabel}
}

func (t *Transcript) AppendMessage(msg Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, msg)
}

func (t *Transcript) ClearInput() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.input = ""
}

func (t *Transcript) SetSendControl(enabled bool, label string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sendEnabled = enabled
	t.sendLabel = label
}

// SetInput fills the input box.
func (t *Transcript) SetInput(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.input = s
}

// Input returns the input box content.
func (t *Transcript) Input() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.input
}

// Messages returns a copy of the messages in order.
func (t *Transcript) Messages() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Message(nil), t.messages...)
}

// SendControl reports the send control state.
func (t *Transcript) SendControl() (enabled bool, label string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sendEnabled, t.sendLabel
}
