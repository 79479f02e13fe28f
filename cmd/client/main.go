package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/andy6609/niochat/internal/chat"
	"github.com/andy6609/niochat/internal/client"
)

func main() {
	addr := flag.String("addr", "localhost:5000", "chat server address")
	name := flag.String("name", "", "display name to join with")
	framing := flag.String("framing", "raw", "frame mode: raw or length")
	flag.Parse()

	mode, err := chat.ParseFraming(*framing)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := run(*addr, *name, mode); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run returns instead of exiting so the deferred closes restore the terminal.
func run(addr, name string, mode chat.Framing) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	c, err := client.Dial(ctx, addr, mode)
	cancel()
	if err != nil {
		return err
	}
	defer c.Close()

	if name != "" {
		if err := c.SetName(name); err != nil {
			return err
		}
	}

	ui, err := NewChatUI(c, addr)
	if err != nil {
		return err
	}
	defer ui.Close()

	return ui.Run()
}
