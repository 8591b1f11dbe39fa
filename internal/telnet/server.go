// Package telnet serves the console's remote terminal over TCP.
package telnet

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"code.selman.me/devconsole/internal/console"
)

const (
	DefaultAddr          = ":23"
	DefaultRetryInterval = time.Second

	// pendingConns bounds clients accepted but not yet taken by Accept.
	pendingConns = 4
)

// Server listens for telnet clients and hands them to the console's poll
// loop through Accept. It implements console.Network.
type Server struct {
	addr  string
	retry time.Duration

	state atomic.Uint32
	mu    sync.Mutex
	ln    net.Listener
	conns chan *Conn
}

func NewServer(addr string, retry time.Duration) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	if retry <= 0 {
		retry = DefaultRetryInterval
	}
	return &Server{
		addr:  addr,
		retry: retry,
		conns: make(chan *Conn, pendingConns),
	}
}

// Serve binds the listener, retrying until it succeeds, then accepts
// clients until ctx is cancelled. A failing listener is rebound. It
// returns nil on cancellation.
func (s *Server) Serve(ctx context.Context) error {
	defer s.setState(console.Idle)
	defer s.drainPending()

	for {
		ln := s.listen(ctx)
		if ln == nil {
			return nil
		}
		err := s.acceptLoop(ctx, ln)
		if ctx.Err() != nil {
			return nil
		}
		slog.Warn("telnet: accept failed, rebinding", "addr", s.addr, "err", err)
	}
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()
	defer ln.Close()

	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	s.setState(console.Connected)
	slog.Info("telnet: listening", "addr", ln.Addr().String())

	for {
		c, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("telnet: accept: %w", err)
		}
		conn, err := newConn(c)
		if err != nil {
			slog.Warn("telnet: drop client", "err", err)
			continue
		}
		select {
		case s.conns <- conn:
			slog.Debug("telnet: client accepted", "remote", conn.RemoteAddr())
		default:
			slog.Warn("telnet: too many pending clients", "remote", conn.RemoteAddr())
			conn.Close()
		}
	}
}

// listen returns nil when ctx is cancelled before a bind succeeds.
func (s *Server) listen(ctx context.Context) net.Listener {
	var lc net.ListenConfig
	for {
		s.setState(console.Connecting)
		ln, err := lc.Listen(ctx, "tcp", s.addr)
		if err == nil {
			return ln
		}
		slog.Warn("telnet: listen failed, retrying", "addr", s.addr, "err", err, "retry", s.retry)

		t := time.NewTimer(s.retry)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
	}
}

// drainPending closes clients nobody took before shutdown.
func (s *Server) drainPending() {
	for {
		select {
		case c := <-s.conns:
			c.Close()
		default:
			return
		}
	}
}

func (s *Server) setState(st console.ConnectionState) {
	s.state.Store(uint32(st))
}

func (s *Server) State() console.ConnectionState {
	return console.ConnectionState(s.state.Load())
}

// Addr returns the bound address once listening, or the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil && s.State() == console.Connected {
		return s.ln.Addr().String()
	}
	return s.addr
}

// Accept returns a waiting client without blocking.
func (s *Server) Accept() (console.Terminal, bool) {
	select {
	case c := <-s.conns:
		return c, true
	default:
		return nil, false
	}
}
