package chat

import (
	"log/slog"
	"net"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketListener is an http.Handler that upgrades requests and hands the
// resulting connections to the event loop through Accept. Every WebSocket
// message is exactly one frame, so no stream framing applies.
type WebSocketListener struct {
	upgrader websocket.Upgrader
	addr     net.Addr
	readMax  int64
	logger   *slog.Logger

	conns     chan *wsConn
	done      chan struct{}
	closeOnce sync.Once
}

// NewWebSocketListener reports addr from Addr. An empty allowedOrigins keeps
// gorilla's same-origin check; "*" admits any origin.
func NewWebSocketListener(addr net.Addr, readMax int, allowedOrigins []string, logger *slog.Logger) *WebSocketListener {
	if logger == nil {
		logger = slog.Default()
	}
	if readMax <= 0 {
		readMax = DefaultReadBufferSize
	}
	l := &WebSocketListener{
		addr:    addr,
		readMax: int64(readMax),
		logger:  logger,
		conns:   make(chan *wsConn),
		done:    make(chan struct{}),
	}
	l.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return l
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	if slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		return slices.Contains(allowed, r.Header.Get("Origin"))
	}
}

func (l *WebSocketListener) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	select {
	case <-l.done:
		http.Error(w, "server closed", http.StatusServiceUnavailable)
		return
	default:
	}

	ws, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.logger.Debug("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	ws.SetReadLimit(l.readMax)

	select {
	case l.conns <- &wsConn{ws: ws}:
	case <-l.done:
		_ = ws.Close()
	}
}

func (l *WebSocketListener) Accept() (Conn, error) {
	select {
	case c := <-l.conns:
		return c, nil
	case <-l.done:
		return nil, net.ErrClosed
	}
}

func (l *WebSocketListener) Close() error {
	l.closeOnce.Do(func() { close(l.done) })
	return nil
}

func (l *WebSocketListener) Addr() net.Addr {
	return l.addr
}

// wsConn adapts a WebSocket to Conn. Reads are message-framed; each Write
// is sent as one text message.
type wsConn struct {
	ws      *websocket.Conn
	pending []byte
}

func (c *wsConn) ReadFrame() ([]byte, error) {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return nil, err
		}
		if len(data) > 0 {
			return data, nil
		}
	}
}

func (c *wsConn) Read(p []byte) (int, error) {
	if len(c.pending) == 0 {
		data, err := c.ReadFrame()
		if err != nil {
			return 0, err
		}
		c.pending = data
	}
	n := copy(p, c.pending)
	c.pending = c.pending[n:]
	return n, nil
}

func (c *wsConn) Write(p []byte) (int, error) {
	if err := c.ws.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *wsConn) SetWriteDeadline(t time.Time) error {
	return c.ws.SetWriteDeadline(t)
}

func (c *wsConn) Close() error {
	return c.ws.Close()
}

func (c *wsConn) RemoteAddr() net.Addr {
	return c.ws.RemoteAddr()
}
