// Package logsink is the console's persistent log: an append-only file,
// optionally zstd or lz4 compressed, pushed to disk after every line.
package logsink

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

type Compression uint8

const (
	None Compression = iota
	Zstd
	LZ4
)

func (c Compression) String() string {
	switch c {
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	default:
		return "none"
	}
}

// CompressionFor picks the compression from the file suffix.
func CompressionFor(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".zstd":
		return Zstd
	case ".lz4":
		return LZ4
	default:
		return None
	}
}

type encoder interface {
	io.WriteCloser
	Flush() error
}

type Sink struct {
	path string
	comp Compression

	mu  sync.Mutex
	f   *os.File
	buf *bufio.Writer
	enc encoder
}

// Open appends to path, creating it and its directory when missing.
// Compressed files gain one frame per Open.
func Open(path string) (*Sink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logsink: create dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logsink: open %s: %w", path, err)
	}

	s := &Sink{
		path: path,
		comp: CompressionFor(path),
		f:    f,
		buf:  bufio.NewWriter(f),
	}
	switch s.comp {
	case Zstd:
		enc, err := zstd.NewWriter(s.buf, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("logsink: init zstd: %w", err)
		}
		s.enc = enc
	case LZ4:
		s.enc = lz4.NewWriter(s.buf)
	}
	return s, nil
}

func (s *Sink) Path() string {
	return s.path
}

func (s *Sink) Compression() Compression {
	return s.comp
}

func (s *Sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return 0, os.ErrClosed
	}
	if s.enc != nil {
		return s.enc.Write(p)
	}
	return s.buf.Write(p)
}

// Flush pushes everything written so far through the compressor and
// syncs the file.
func (s *Sink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return os.ErrClosed
	}
	if s.enc != nil {
		if err := s.enc.Flush(); err != nil {
			return fmt.Errorf("logsink: flush %s: %w", s.comp, err)
		}
	}
	if err := s.buf.Flush(); err != nil {
		return fmt.Errorf("logsink: flush: %w", err)
	}
	if err := s.f.Sync(); err != nil {
		return fmt.Errorf("logsink: sync: %w", err)
	}
	return nil
}

// Close finishes the compressed frame and closes the file.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	var errs []error
	if s.enc != nil {
		if err := s.enc.Close(); err != nil {
			errs = append(errs, fmt.Errorf("logsink: finish %s: %w", s.comp, err))
		}
	}
	if err := s.buf.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("logsink: flush: %w", err))
	}
	if err := s.f.Close(); err != nil {
		errs = append(errs, fmt.Errorf("logsink: close: %w", err))
	}
	s.f = nil
	return errors.Join(errs...)
}
