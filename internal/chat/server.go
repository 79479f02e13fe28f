package chat

import (
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"
)

// Backoff bounds between failed accepts on a listener that is still open.
const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

type Options struct {
	Framing        Framing
	ReadBufferSize int
	// WriteTimeout bounds each blocking write. Zero means no deadline.
	WriteTimeout time.Duration
	EventBuffer  int
}

// Server is the event loop. A single goroutine (Run) owns the registry and
// the outbound queue; accept and read goroutines only perform blocking I/O
// and post events to it.
type Server struct {
	listeners []Listener
	opts      Options
	logger    *slog.Logger

	queue  *Queue
	reg    *Registry
	router *Router

	events    chan event
	done      chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
}

func NewServer(logger *slog.Logger, opts Options, listeners ...Listener) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Framing == "" {
		opts.Framing = FramingRaw
	}
	if opts.ReadBufferSize <= 0 {
		opts.ReadBufferSize = DefaultReadBufferSize
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = 128
	}

	queue := &Queue{}
	reg := NewRegistry(queue, opts.WriteTimeout, logger)
	return &Server{
		listeners: listeners,
		opts:      opts,
		logger:    logger,
		queue:     queue,
		reg:       reg,
		router:    NewRouter(reg, queue, logger),
		events:    make(chan event, opts.EventBuffer),
		done:      make(chan struct{}),
		closed:    make(chan struct{}),
	}
}

// Run serves until a listener is closed. Accept failures on an open listener
// are logged and retried. Connections still open when Run returns are closed
// without draining.
func (s *Server) Run() error {
	defer close(s.done)

	addrs := make([]string, 0, len(s.listeners))
	for _, ln := range s.listeners {
		addrs = append(addrs, ln.Addr().String())
		go s.acceptLoop(ln)
	}
	s.logger.Info("server started", "addrs", addrs, "framing", string(s.opts.Framing))

	for ev := range s.events {
		if ev.kind == eventListenerClosed {
			break
		}

		start := time.Now()
		s.dispatch(ev)
		s.router.Drain()
		EventProcessingDuration.WithLabelValues(ev.kind.String()).Observe(time.Since(start).Seconds())
	}

	s.shutdown()
	return nil
}

// Close closes every listener, which stops Run.
func (s *Server) Close() error {
	var errs []error
	s.closeOnce.Do(func() {
		close(s.closed)
		for _, ln := range s.listeners {
			if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}

func (s *Server) shutdown() {
	if err := s.Close(); err != nil {
		s.logger.Error("closing listeners", "error", err)
	}
	s.reg.CloseAll()
	s.logger.Info("shutdown complete")
}

func (s *Server) dispatch(ev event) {
	switch ev.kind {
	case eventAccepted:
		c, ok := s.reg.Register(ev.raw)
		if !ok {
			_ = ev.raw.Close()
			return
		}
		go s.readLoop(c)

	case eventFrame:
		if !s.live(ev.conn) {
			return
		}
		f, err := DecodeFrame(ev.data)
		if err == nil {
			err = s.router.Handle(ev.conn, f)
		}
		if err != nil {
			s.logger.Warn("protocol violation", "id", ev.conn.ID, "error", err)
			s.reg.Remove(ev.conn, "protocol_violation")
		}

	case eventReadFailed:
		s.reg.Remove(ev.conn, readFailureReason(ev.err))
	}
}

// live reports whether c is still the registered holder of its identity.
func (s *Server) live(c *Connection) bool {
	return !c.Removed() && s.reg.Lookup(c.ID) == c
}

func (s *Server) acceptLoop(ln Listener) {
	var delay time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || s.closing() {
				s.post(event{kind: eventListenerClosed})
				return
			}
			if delay == 0 {
				delay = minAcceptDelay
			} else {
				delay *= 2
			}
			if delay > maxAcceptDelay {
				delay = maxAcceptDelay
			}
			AcceptErrors.Inc()
			s.logger.Warn("accept failed; retrying", "addr", ln.Addr().String(), "error", err, "delay", delay)
			select {
			case <-time.After(delay):
				continue
			case <-s.done:
				return
			}
		}
		delay = 0
		if !s.post(event{kind: eventAccepted, raw: conn}) {
			_ = conn.Close()
			return
		}
	}
}

func (s *Server) closing() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

// post hands ev to the loop. It reports false once Run has returned.
func (s *Server) post(ev event) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.done:
		return false
	}
}
