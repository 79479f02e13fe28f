package chat

import (
	"fmt"
	"net"
)

type tcpListener struct {
	net.Listener
}

// NewTCPListener adapts an already listening socket.
func NewTCPListener(ln net.Listener) Listener {
	return tcpListener{Listener: ln}
}

func (l tcpListener) Accept() (Conn, error) {
	return l.Listener.Accept()
}

func ListenTCP(addr string) (Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return NewTCPListener(ln), nil
}
