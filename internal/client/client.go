// Package client speaks the relay's wire protocol from the client side.
package client

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/andy6609/niochat/internal/chat"
)

// Client sends typed frames and exposes the server's text lines.
type Client struct {
	conn    net.Conn
	framing chat.Framing

	writeMu sync.Mutex
	lines   chan string

	errMu sync.Mutex
	err   error
}

func Dial(ctx context.Context, addr string, framing chat.Framing) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return New(conn, framing), nil
}

// New wraps an established connection and starts reading lines from it.
func New(conn net.Conn, framing chat.Framing) *Client {
	if framing == "" {
		framing = chat.FramingRaw
	}
	c := &Client{
		conn:    conn,
		framing: framing,
		lines:   make(chan string, 64),
	}
	go c.readLines()
	return c
}

func (c *Client) SetName(name string) error {
	return c.send(chat.MessageSetName, name)
}

func (c *Client) SendGlobal(text string) error {
	return c.send(chat.MessageGlobal, text)
}

// SendPrivate escapes any colon in the recipient name before sending.
func (c *Client) SendPrivate(to, body string) error {
	return c.send(chat.MessagePrivate, chat.FormatPrivate(to, body))
}

// SendRaw writes b unmodified, bypassing framing.
func (c *Client) SendRaw(b []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, err := c.conn.Write(b)
	return err
}

func (c *Client) send(t chat.MessageType, payload string) error {
	b, err := chat.AppendFramed(nil, c.framing, chat.EncodeFrame(t, payload))
	if err != nil {
		return err
	}
	// One Write per frame: raw framing relies on it.
	return c.SendRaw(b)
}

// Lines delivers each server line without its trailing newline. The channel
// is closed when the connection ends; Err then reports why.
func (c *Client) Lines() <-chan string {
	return c.lines
}

func (c *Client) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) readLines() {
	defer close(c.lines)

	r := bufio.NewReader(c.conn)
	for {
		line, err := r.ReadString('\n')
		if line != "" {
			c.lines <- strings.TrimSuffix(line, "\n")
		}
		if err != nil {
			c.errMu.Lock()
			c.err = err
			c.errMu.Unlock()
			return
		}
	}
}
