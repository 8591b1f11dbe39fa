// Package serial provides the primary console stream: a tty device or the
// process stdio, switched to raw mode.
package serial

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"code.selman.me/devconsole/internal/stream"
)

type Port struct {
	*stream.Port

	name    string
	file    *os.File
	inFd    int
	outFd   int
	baud    int
	restore *term.State
	paused  bool
}

// Open opens a tty device in raw mode at baud. A zero baud keeps the
// device's current speed.
func Open(path string, baud int) (*Port, error) {
	f, err := os.OpenFile(path, os.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", path, err)
	}
	fd, err := rawFd(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("serial: open %s: %w", path, err)
	}

	st, err := term.MakeRaw(fd)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("serial: set raw mode on %s: %w", path, err)
	}
	if baud != 0 {
		if err := setBaud(fd, baud); err != nil {
			term.Restore(fd, st)
			f.Close()
			return nil, fmt.Errorf("serial: configure %s: %w", path, err)
		}
	}

	return &Port{
		Port:    stream.New(f, f, nil),
		name:    path,
		file:    f,
		inFd:    fd,
		outFd:   fd,
		baud:    baud,
		restore: st,
	}, nil
}

// rawFd returns f's descriptor without switching it to blocking mode as
// Fd does, so Close still interrupts a pending Read.
func rawFd(f *os.File) (int, error) {
	rc, err := f.SyscallConn()
	if err != nil {
		return 0, err
	}
	var fd int
	if err := rc.Control(func(u uintptr) { fd = int(u) }); err != nil {
		return 0, err
	}
	return fd, nil
}

// Stdio wraps stdin and stdout. Stdin is put in raw mode when it is a
// terminal.
func Stdio() (*Port, error) {
	p := &Port{
		name:  "stdio",
		inFd:  int(os.Stdin.Fd()),
		outFd: int(os.Stdout.Fd()),
	}
	if term.IsTerminal(p.inFd) {
		st, err := term.MakeRaw(p.inFd)
		if err != nil {
			return nil, fmt.Errorf("serial: set raw mode on stdin: %w", err)
		}
		p.restore = st
	}
	p.Port = stream.New(os.Stdin, os.Stdout, nil)
	return p, nil
}

func (p *Port) Name() string {
	return p.name
}

// Terminal reports whether output goes to a terminal.
func (p *Port) Terminal() bool {
	return term.IsTerminal(p.outFd)
}

// Flush blocks until written output has been transmitted.
func (p *Port) Flush() error {
	if !term.IsTerminal(p.outFd) {
		return nil
	}
	if err := drain(p.outFd); err != nil {
		return fmt.Errorf("serial: drain %s: %w", p.name, err)
	}
	return nil
}

// Suspend puts the terminal back in the mode it had before Open or Stdio
// while keeping the port open.
func (p *Port) Suspend() error {
	if p.restore == nil || p.paused {
		return nil
	}
	if err := term.Restore(p.inFd, p.restore); err != nil {
		return fmt.Errorf("serial: restore %s: %w", p.name, err)
	}
	p.paused = true
	return nil
}

// Resume switches a suspended port back to raw mode at its baud rate.
func (p *Port) Resume() error {
	if !p.paused {
		return nil
	}
	if _, err := term.MakeRaw(p.inFd); err != nil {
		return fmt.Errorf("serial: set raw mode on %s: %w", p.name, err)
	}
	if p.baud != 0 {
		if err := setBaud(p.inFd, p.baud); err != nil {
			return fmt.Errorf("serial: configure %s: %w", p.name, err)
		}
	}
	p.paused = false
	return nil
}

// Close restores the terminal mode and closes the device. Stdio stays
// open.
func (p *Port) Close() error {
	if p.restore != nil && !p.paused {
		term.Restore(p.inFd, p.restore)
	}
	p.restore = nil
	if p.file == nil {
		return nil
	}
	if err := p.file.Close(); err != nil {
		return fmt.Errorf("serial: close %s: %w", p.name, err)
	}
	return nil
}
