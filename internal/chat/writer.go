package chat

import (
	"io"
	"time"
)

type writeDeadliner interface {
	SetWriteDeadline(t time.Time) error
}

// writeFully blocks until p has been handed to the transport. With no write
// timeout a peer that never drains stalls the event loop; that is a known
// fairness limit of synchronous fan-out.
func (c *Connection) writeFully(p []byte) error {
	if c.writeTimeout > 0 {
		if d, ok := c.conn.(writeDeadliner); ok {
			if err := d.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
				return err
			}
		}
	}
	for len(p) > 0 {
		n, err := c.conn.Write(p)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		p = p[n:]
	}
	return nil
}
