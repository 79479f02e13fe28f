package client

import (
	"errors"
	"strings"
)

type CommandKind int

const (
	CommandSay CommandKind = iota
	CommandNick
	CommandMsg
	CommandQuit
)

// Command is one parsed line of user input.
type Command struct {
	Kind CommandKind
	To   string
	Text string
}

var (
	ErrNickUsage = errors.New("usage: /nick <name>")
	ErrMsgUsage  = errors.New("usage: /msg <name> <text>")
)

// ParseCommand interprets terminal input. Lines not starting with a known
// slash command are room messages.
func ParseCommand(line string) (Command, error) {
	line = strings.TrimRight(line, "\r\n")
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{Kind: CommandSay, Text: line}, nil
	}

	switch fields[0] {
	case "/quit", "/exit":
		return Command{Kind: CommandQuit}, nil
	case "/nick":
		name := strings.TrimSpace(strings.TrimPrefix(line, "/nick"))
		if name == "" {
			return Command{}, ErrNickUsage
		}
		return Command{Kind: CommandNick, Text: name}, nil
	case "/msg", "/w":
		rest := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))
		to, text, ok := strings.Cut(rest, " ")
		text = strings.TrimSpace(text)
		if !ok || to == "" || text == "" {
			return Command{}, ErrMsgUsage
		}
		return Command{Kind: CommandMsg, To: to, Text: text}, nil
	default:
		return Command{Kind: CommandSay, Text: line}, nil
	}
}

// Apply sends cmd through c. Quit is not a wire operation and is ignored.
func (c *Client) Apply(cmd Command) error {
	switch cmd.Kind {
	case CommandNick:
		return c.SetName(cmd.Text)
	case CommandMsg:
		return c.SendPrivate(cmd.To, cmd.Text)
	case CommandSay:
		return c.SendGlobal(cmd.Text)
	default:
		return nil
	}
}
