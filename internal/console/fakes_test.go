package console

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

type fakeStream struct {
	in        []byte
	out       bytes.Buffer
	flushes   int
	connected bool
	closed    bool
	addr      string
}

func newFakeStream() *fakeStream {
	return &fakeStream{connected: true, addr: "192.0.2.7:51000"}
}

func (s *fakeStream) Write(p []byte) (int, error) { return s.out.Write(p) }
func (s *fakeStream) Available() int              { return len(s.in) }

func (s *fakeStream) Peek() (byte, bool) {
	if len(s.in) == 0 {
		return 0, false
	}
	return s.in[0], true
}

func (s *fakeStream) ReadByte() (byte, error) {
	if len(s.in) == 0 {
		return 0, ErrNoInput
	}
	b := s.in[0]
	s.in = s.in[1:]
	return b, nil
}

func (s *fakeStream) Flush() error {
	s.flushes++
	return nil
}

func (s *fakeStream) Connected() bool    { return s.connected }
func (s *fakeStream) RemoteAddr() string { return s.addr }

func (s *fakeStream) Close() error {
	s.closed = true
	s.connected = false
	return nil
}

func (s *fakeStream) feed(in string) {
	s.in = append(s.in, in...)
}

// lines returns the written lines without their line endings.
func (s *fakeStream) lines() []string {
	text := strings.TrimSuffix(s.out.String(), lineEnding)
	if text == "" {
		return nil
	}
	return strings.Split(text, lineEnding)
}

func (s *fakeStream) reset() {
	s.out.Reset()
}

type fakeNetwork struct {
	state ConnectionState
	addr  string
	queue []Terminal
}

func (n *fakeNetwork) State() ConnectionState { return n.state }
func (n *fakeNetwork) Addr() string           { return n.addr }

func (n *fakeNetwork) Accept() (Terminal, bool) {
	if len(n.queue) == 0 {
		return nil, false
	}
	t := n.queue[0]
	n.queue = n.queue[1:]
	return t, true
}

type fakePlatform struct {
	minFree  uint64
	restarts int
}

func (p *fakePlatform) Identity() string      { return "test-board rev1" }
func (p *fakePlatform) Resources() string     { return "CPU Frequency: 240 MHz" }
func (p *fakePlatform) Memory() string        { return "Free Heap: 1000" }
func (p *fakePlatform) Uptime() time.Duration { return 26*time.Hour + 3*time.Minute + 4*time.Second }
func (p *fakePlatform) ResetReason() string   { return "Power On" }
func (p *fakePlatform) MinFreeMemory() uint64 { return p.minFree }

func (p *fakePlatform) Restart() error {
	p.restarts++
	return nil
}

type testConsole struct {
	*Console
	primary  *fakeStream
	clock    *clock.Mock
	platform *fakePlatform
}

func newTestConsole(t *testing.T, flags DisplayFlags, opts ...Option) *testConsole {
	t.Helper()
	tc := &testConsole{
		primary:  newFakeStream(),
		clock:    clock.NewMock(),
		platform: &fakePlatform{},
	}
	base := []Option{
		WithClock(tc.clock),
		WithPlatform(tc.platform),
		WithDisplayFlags(flags),
		WithRestartDelay(0),
	}
	tc.Console = New(tc.primary, append(base, opts...)...)
	return tc
}
