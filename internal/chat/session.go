package chat

import (
	"errors"
	"io"
	"net"
)

type eventKind int

const (
	eventAccepted eventKind = iota
	eventFrame
	eventReadFailed
	eventListenerClosed
)

func (k eventKind) String() string {
	switch k {
	case eventAccepted:
		return "accept"
	case eventFrame:
		return "frame"
	case eventReadFailed:
		return "read_failed"
	case eventListenerClosed:
		return "listener_closed"
	default:
		return "unknown"
	}
}

type event struct {
	kind eventKind
	raw  Conn
	conn *Connection
	data []byte
	err  error
}

// readLoop reads frames from c until the stream fails and posts each one to
// the event loop. It never touches registry state.
func (s *Server) readLoop(c *Connection) {
	fr, ok := c.conn.(FrameReader)
	if !ok {
		fr = NewFrameReader(c.conn, s.opts.Framing, s.opts.ReadBufferSize)
	}

	for {
		data, err := fr.ReadFrame()
		if err != nil {
			s.post(event{kind: eventReadFailed, conn: c, err: err})
			return
		}
		if !s.post(event{kind: eventFrame, conn: c, data: data}) {
			return
		}
	}
}

func readFailureReason(err error) string {
	switch {
	case errors.Is(err, ErrEmptyFrame), errors.Is(err, ErrFrameTooLarge):
		return "protocol_violation"
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return "closed"
	case errors.Is(err, net.ErrClosed):
		return "closed"
	default:
		return "read_error"
	}
}
