package chat

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Registry maps connection identity to Connection state. It is owned by the
// event loop goroutine and is never touched concurrently.
type Registry struct {
	conns        map[string]*Connection
	names        map[string][]*Connection // holders in the order they took the name
	queue        *Queue
	writeTimeout time.Duration
	logger       *slog.Logger
}

func NewRegistry(queue *Queue, writeTimeout time.Duration, logger *slog.Logger) *Registry {
	if queue == nil {
		queue = &Queue{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		conns:        make(map[string]*Connection),
		names:        make(map[string][]*Connection),
		queue:        queue,
		writeTimeout: writeTimeout,
		logger:       logger,
	}
}

// Register inserts a fresh unjoined Connection for conn. It reports false,
// without registering, when the peer address cannot be determined or is
// already held by a live connection.
func (r *Registry) Register(conn Conn) (*Connection, bool) {
	addr := conn.RemoteAddr()
	if addr == nil {
		return nil, false
	}
	id := addr.String()
	if id == "" {
		return nil, false
	}
	if _, exists := r.conns[id]; exists {
		r.logger.Warn("duplicate connection identity", "id", id)
		return nil, false
	}

	c := &Connection{
		ID:           id,
		Session:      uuid.NewString(),
		conn:         conn,
		writeTimeout: r.writeTimeout,
	}
	r.conns[id] = c
	ConnectedClients.Set(float64(len(r.conns)))

	r.logger.Info("client connected", "id", id, "session", c.Session, "clients", len(r.conns))
	return c, true
}

func (r *Registry) Lookup(id string) *Connection {
	return r.conns[id]
}

func (r *Registry) Len() int {
	return len(r.conns)
}

// SetName joins or renames c and keeps the name index current.
func (r *Registry) SetName(c *Connection, name string) {
	if old, ok := c.Name(); ok {
		r.unindex(old, c)
	}
	c.setName(name)
	r.names[name] = append(r.names[name], c)
}

// FindByName resolves a private-message recipient. When several connections
// hold the name, the one that took it first wins.
func (r *Registry) FindByName(name string) *Connection {
	holders := r.names[name]
	if len(holders) == 0 {
		return nil
	}
	return holders[0]
}

// Joined returns a snapshot of every connection that has a name.
func (r *Registry) Joined() []*Connection {
	out := make([]*Connection, 0, len(r.conns))
	for _, c := range r.conns {
		if c.Joined() {
			out = append(out, c)
		}
	}
	return out
}

// Remove closes c, drops it from the registry and, if it had joined,
// queues a departure broadcast. Removing an already removed connection is a
// no-op.
func (r *Registry) Remove(c *Connection, reason string) {
	if c == nil || c.removed || r.conns[c.ID] != c {
		return
	}
	c.removed = true
	_ = c.conn.Close()
	delete(r.conns, c.ID)

	name, joined := c.Name()
	if joined {
		r.unindex(name, c)
		r.queue.Push(NewGlobal(ServerContent(name + " left the room!")))
	}

	ConnectedClients.Set(float64(len(r.conns)))
	Disconnects.WithLabelValues(reason).Inc()

	r.logger.Info("client disconnected",
		"id", c.ID,
		"session", c.Session,
		"name", name,
		"reason", reason,
		"clients", len(r.conns),
	)
}

// CloseAll abandons every live connection without draining or broadcasting.
func (r *Registry) CloseAll() {
	for id, c := range r.conns {
		c.removed = true
		_ = c.conn.Close()
		delete(r.conns, id)
	}
	clear(r.names)
	ConnectedClients.Set(0)
}

func (r *Registry) unindex(name string, c *Connection) {
	holders := r.names[name]
	for i, h := range holders {
		if h == c {
			holders = append(holders[:i], holders[i+1:]...)
			break
		}
	}
	if len(holders) == 0 {
		delete(r.names, name)
		return
	}
	r.names[name] = holders
}
