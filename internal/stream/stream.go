// Package stream adapts blocking readers into byte streams that can be
// polled from a single driving loop without ever blocking it.
package stream

import (
	"errors"
	"io"
	"sync"
)

var ErrNoData = errors.New("stream: no data available")

// maxPending bounds unread input. Older bytes are dropped once exceeded.
const maxPending = 4096

type flusher interface {
	Flush() error
}

type Port struct {
	w      io.Writer
	closer io.Closer

	mu      sync.Mutex
	pending []byte
	err     error
	done    chan struct{}
}

// New starts a reader goroutine on r. A nil r yields a write-only port
// that never has input. closer may be nil.
func New(r io.Reader, w io.Writer, closer io.Closer) *Port {
	p := &Port{
		w:      w,
		closer: closer,
		done:   make(chan struct{}),
	}
	if r == nil {
		close(p.done)
		return p
	}
	go p.readLoop(r)
	return p
}

// Writer returns a write-only port around w.
func Writer(w io.Writer) *Port {
	return New(nil, w, nil)
}

func (p *Port) readLoop(r io.Reader) {
	defer close(p.done)
	buf := make([]byte, 512)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			p.mu.Lock()
			p.pending = append(p.pending, buf[:n]...)
			if over := len(p.pending) - maxPending; over > 0 {
				p.pending = p.pending[over:]
			}
			p.mu.Unlock()
		}
		if err != nil {
			p.mu.Lock()
			p.err = err
			p.mu.Unlock()
			return
		}
	}
}

func (p *Port) Available() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

func (p *Port) Peek() (byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.pending) == 0 {
		return 0, false
	}
	return p.pending[0], true
}

func (p *Port) ReadByte() (byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.pending) == 0 {
		if p.err != nil && p.err != io.EOF {
			return 0, p.err
		}
		return 0, ErrNoData
	}
	b := p.pending[0]
	p.pending = p.pending[1:]
	return b, nil
}

func (p *Port) Write(b []byte) (int, error) {
	if p.w == nil {
		return len(b), nil
	}
	return p.w.Write(b)
}

func (p *Port) Flush() error {
	if f, ok := p.w.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// Connected reports whether the reading side is still open.
func (p *Port) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err == nil
}

// Err returns the error that stopped the reader, if any.
func (p *Port) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Done is closed once the reader goroutine has exited.
func (p *Port) Done() <-chan struct{} {
	return p.done
}

func (p *Port) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}
