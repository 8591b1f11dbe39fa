package telnet

import (
	"fmt"
	"net"

	"code.selman.me/devconsole/internal/stream"
)

// Conn is one attached telnet client. Reads and writes are decoded and
// escaped; input is buffered so the console can poll it.
type Conn struct {
	*stream.Port
	addr string
}

func newConn(c net.Conn) (*Conn, error) {
	if tc, ok := c.(*net.TCPConn); ok {
		tc.SetNoDelay(true)
	}
	if _, err := c.Write(negotiation); err != nil {
		c.Close()
		return nil, fmt.Errorf("telnet: negotiate with %s: %w", c.RemoteAddr(), err)
	}
	return &Conn{
		Port: stream.New(NewReader(c), NewWriter(c), c),
		addr: c.RemoteAddr().String(),
	}, nil
}

func (c *Conn) RemoteAddr() string {
	return c.addr
}
