package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"control_center_echo/internal/chat"
)

func TestRun(t *testing.T) {
	var sent []string
	transport := chat.TransportFunc(func(ctx context.Context, message string) (string, error) {
		sent = append(sent, message)
		if message == "break" {
			return "", errors.New("boom")
		}
		return "echo " + message, nil
	})

	var out bytes.Buffer
	widget := chat.NewWidget(transport, NewTerminalView(&out))

	err := run(context.Background(), widget, strings.NewReader("hello\nbreak\n\nnever sent\n"), &out)
	require.NoError(t, err)

	assert.Equal(t, []string{"hello", "break"}, sent)
	assert.Contains(t, out.String(), "(Sending...)\n")
	assert.Contains(t, out.String(), "AI: echo hello\n")
	assert.Contains(t, out.String(), "AI: "+chat.FallbackReply+"\n")
	assert.NotContains(t, out.String(), "You: ")
}
