package console

import "io"

// Stream is a pollable, externally owned byte stream such as a serial
// link or a remote terminal connection.
type Stream interface {
	io.Writer
	Available() int
	Peek() (byte, bool)
	ReadByte() (byte, error)
}

// Terminal is a remote stream whose connection can go away.
type Terminal interface {
	Stream
	Connected() bool
	RemoteAddr() string
	Close() error
}

type flusher interface {
	Flush() error
}

const lineEnding = "\r\n"

// multiplexer fans output out to every attached sink. Sink errors are
// ignored so one broken sink never starves the others.
type multiplexer struct {
	primary Stream
	log     io.Writer
	remote  Terminal
}

func (m *multiplexer) writeString(s string) {
	m.write([]byte(s))
}

func (m *multiplexer) writeLine(s string) {
	m.write([]byte(s + lineEnding))
}

func (m *multiplexer) write(p []byte) {
	if m.remote != nil {
		m.remote.Write(p)
	}
	m.primary.Write(p)
	if m.log != nil {
		m.log.Write(p)
		if f, ok := m.log.(flusher); ok {
			f.Flush()
		}
	}
}

func (m *multiplexer) flushPrimary() {
	if f, ok := m.primary.(flusher); ok {
		f.Flush()
	}
}

type nopStream struct{}

func (nopStream) Write(p []byte) (int, error) { return len(p), nil }
func (nopStream) Available() int              { return 0 }
func (nopStream) Peek() (byte, bool)          { return 0, false }
func (nopStream) ReadByte() (byte, error)     { return 0, ErrNoInput }
