package chat

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"
)

var errReset = errors.New("connection reset by peer")

// fakeConn records writes in memory and can be told to fail them.
type fakeConn struct {
	addr       net.Addr
	out        bytes.Buffer
	failWrites bool
	closed     bool
	writes     int
}

func (f *fakeConn) Read(p []byte) (int, error) { return 0, io.EOF }

func (f *fakeConn) Write(p []byte) (int, error) {
	f.writes++
	if f.failWrites || f.closed {
		return 0, errReset
	}
	return f.out.Write(p)
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

func (f *fakeConn) RemoteAddr() net.Addr { return f.addr }

func (f *fakeConn) lines() []string {
	s := strings.TrimSuffix(f.out.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type harness struct {
	queue  *Queue
	reg    *Registry
	router *Router
	port   int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	q := &Queue{}
	reg := NewRegistry(q, 0, discardLogger())
	return &harness{queue: q, reg: reg, router: NewRouter(reg, q, discardLogger()), port: 40000}
}

func (h *harness) connect(t *testing.T) (*Connection, *fakeConn) {
	t.Helper()
	h.port++
	fc := &fakeConn{addr: &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: h.port}}
	c, ok := h.reg.Register(fc)
	if !ok {
		t.Fatalf("register %v failed", fc.addr)
	}
	return c, fc
}

// join registers a connection, names it and drains the join broadcast.
func (h *harness) join(t *testing.T, name string) (*Connection, *fakeConn) {
	t.Helper()
	c, fc := h.connect(t)
	h.send(t, c, MessageSetName, name)
	return c, fc
}

// send routes one frame and drains, as the event loop does per event.
func (h *harness) send(t *testing.T, c *Connection, typ MessageType, payload string) {
	t.Helper()
	if err := h.router.Handle(c, Frame{Type: typ, Payload: payload}); err != nil {
		t.Fatalf("Handle(%v, %q): %v", typ, payload, err)
	}
	h.router.Drain()
}

func (f *fakeConn) reset() {
	f.out.Reset()
}
