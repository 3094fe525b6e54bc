package main

import (
	"fmt"
	"io"

	"control_center_echo/internal/chat"
)

// TerminalView prints the transcript as plain lines. The send control is
// shown as a status line while a request is in flight.
type TerminalView struct {
	out io.Writer
}

var _ chat.View = (*TerminalView)(nil)

func NewTerminalView(out io.Writer) *TerminalView {
	return &TerminalView{out: out}
}

func (v *TerminalView) AppendMessage(msg chat.Message) {
	if msg.Sender == chat.SenderUser {
		return // already on screen as typed input
	}
	fmt.Fprintln(v.out, msg.Label())
}

func (v *TerminalView) ClearInput() {}

func (v *TerminalView) SetSendControl(enabled bool, label string) {
	if !enabled {
		fmt.Fprintf(v.out, "(%s)\n", label)
	}
}
