package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"control_center_echo/internal/chat"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "Base URL of the control center")
	msg := flag.String("msg", "", "Send one message and exit")
	timeout := flag.Duration("timeout", 60*time.Second, "Request timeout, 0 for none")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	transport := chat.NewHTTPTransport(*server, &http.Client{Timeout: *timeout})
	view := NewTerminalView(os.Stdout)
	widget := chat.NewWidget(transport, view)

	if *msg != "" {
		if !widget.Send(ctx, *msg) {
			log.Fatal("Message is blank")
		}
		return
	}

	fmt.Fprintf(os.Stdout, "Chatting with %s. Empty line or Ctrl-D to quit.\n", *server)
	if err := run(ctx, widget, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}
}

// run reads one message per line until EOF, an empty line or ctx ends.
func run(ctx context.Context, widget *chat.Widget, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if !widget.Send(ctx, scanner.Text()) {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}
