package chat

import (
	"io"
	"net"
	"time"
)

// Conn is one accepted stream. Any net.Conn satisfies it.
type Conn interface {
	io.ReadWriteCloser
	RemoteAddr() net.Addr
}

// Listener hands accepted streams to the event loop.
type Listener interface {
	Accept() (Conn, error)
	Close() error
	Addr() net.Addr
}

type MessageType byte

const (
	MessageSetName MessageType = 0
	MessageGlobal  MessageType = 1
	MessagePrivate MessageType = 2
)

func (t MessageType) String() string {
	switch t {
	case MessageSetName:
		return "set_name"
	case MessageGlobal:
		return "global"
	case MessagePrivate:
		return "private"
	default:
		return "unknown"
	}
}

// Frame is one decoded inbound unit.
type Frame struct {
	Type    MessageType
	Payload string
}

// Connection is the per-client state owned by the Registry.
type Connection struct {
	ID      string // remote address
	Session string // log correlation only

	conn         Conn
	name         string
	joined       bool
	removed      bool
	writeTimeout time.Duration
}

// Name returns the display name and whether one has been set.
func (c *Connection) Name() (string, bool) {
	return c.name, c.joined
}

func (c *Connection) Joined() bool { return c.joined }

// Removed reports whether the registry has already torn this connection down.
func (c *Connection) Removed() bool { return c.removed }

func (c *Connection) setName(name string) {
	c.name = name
	c.joined = true
}

var (
	ErrUnknownMessageType = errorString("unknown_message_type")
	ErrEmptyFrame         = errorString("empty_frame")
	ErrMalformedPrivate   = errorString("malformed_private_payload")
	ErrFrameTooLarge      = errorString("frame_too_large")
	ErrMissingRecipient   = errorString("missing_recipient")
)

type errorString string

func (e errorString) Error() string { return string(e) }
