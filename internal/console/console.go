// Package console multiplexes severity-filtered, formatted log lines to a
// primary stream, an optional remote terminal and an optional log sink,
// and interprets a single-keystroke command mode on the same input.
//
// A Console is driven by calling Poll from one loop. Report and the
// other output methods may be called from any goroutine; they serialize
// on a single line buffer and block until the line has been written to
// every sink.
package console

import (
	"io"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Updater reports whether a firmware update is in progress.
type Updater interface {
	Busy() bool
}

type idleUpdater struct{}

func (idleUpdater) Busy() bool { return false }

const (
	DefaultCommandKey   = 0x01
	DefaultWelcomeDelay = 100 * time.Millisecond
	defaultRestartDelay = 200 * time.Millisecond
)

type Console struct {
	clock        clock.Clock
	registry     *Registry
	platform     Platform
	network      Network
	updater      Updater
	appName      string
	hostname     string
	commandKey   byte
	keyName      string
	welcomeDelay time.Duration
	restartDelay time.Duration

	// mu serializes line formatting and guards the sink set.
	mu    sync.Mutex
	line  lineBuffer
	stamp lineBuffer
	sinks multiplexer

	// Owned by the Poll loop.
	pending         Terminal
	pendingSince    time.Time
	awaitingRestart bool
	netState        ConnectionState
	lastNetNotice   time.Time
	lastMemCheck    time.Time
	minFree         uint64
}

type Option func(*Console)

func WithClock(c clock.Clock) Option {
	return func(con *Console) { con.clock = c }
}

func WithNetwork(n Network) Option {
	return func(con *Console) { con.network = n }
}

func WithPlatform(p Platform) Option {
	return func(con *Console) { con.platform = p }
}

func WithUpdater(u Updater) Option {
	return func(con *Console) { con.updater = u }
}

func WithAppName(name string) Option {
	return func(con *Console) { con.appName = name }
}

// WithHostname sets the name the device advertises on the network.
func WithHostname(name string) Option {
	return func(con *Console) { con.hostname = name }
}

// WithCommandKey sets the reserved byte that toggles command mode and the
// label shown for it in banners.
func WithCommandKey(key byte, name string) Option {
	return func(con *Console) {
		con.commandKey = key
		con.keyName = name
	}
}

func WithDisplayFlags(f DisplayFlags) Option {
	return func(con *Console) { con.registry.display.Store(uint32(f)) }
}

func WithSeverityMask(m SeverityMask) Option {
	return func(con *Console) { con.registry.enabled.Store(uint32(m & AllSeverities)) }
}

func WithLogSink(w io.Writer) Option {
	return func(con *Console) { con.sinks.log = w }
}

func WithWelcomeDelay(d time.Duration) Option {
	return func(con *Console) { con.welcomeDelay = d }
}

func WithRestartDelay(d time.Duration) Option {
	return func(con *Console) { con.restartDelay = d }
}

func New(primary Stream, opts ...Option) *Console {
	if primary == nil {
		primary = nopStream{}
	}
	c := &Console{
		clock:        clock.New(),
		registry:     newRegistry(DefaultDisplay, AllSeverities),
		network:      LocalOnly{},
		updater:      idleUpdater{},
		commandKey:   DefaultCommandKey,
		keyName:      "Ctrl-A",
		welcomeDelay: DefaultWelcomeDelay,
		restartDelay: defaultRestartDelay,
		line:         newLineBuffer(MaxLineLen),
		stamp:        newLineBuffer(timestampLen),
		sinks:        multiplexer{primary: primary},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.platform == nil {
		c.platform = newBasicPlatform(c.clock)
	}
	return c
}

func (c *Console) Registry() *Registry {
	return c.registry
}

func (c *Console) SetDisplayFlags(f DisplayFlags) {
	c.registry.SetFlags(f)
}

func (c *Console) ClearDisplayFlags(f DisplayFlags) {
	c.registry.ClearFlags(f)
}

// SetPrimary swaps the local stream. Input authority follows it unless a
// remote terminal currently holds it.
func (c *Console) SetPrimary(s Stream) {
	if s == nil {
		s = nopStream{}
	}
	c.mu.Lock()
	c.sinks.primary = s
	c.mu.Unlock()
}

// SetLogSink attaches an auxiliary sink that receives a copy of every
// line. A nil w detaches it.
func (c *Console) SetLogSink(w io.Writer) {
	c.mu.Lock()
	c.sinks.log = w
	c.mu.Unlock()
}

func (c *Console) SetUpdater(u Updater) {
	if u == nil {
		u = idleUpdater{}
	}
	c.updater = u
}

// UpdateInProgress reports whether a firmware update is running.
func (c *Console) UpdateInProgress() bool {
	return c.updater.Busy()
}

// RemoteActive reports whether a remote terminal holds input authority.
func (c *Console) RemoteActive() bool {
	return c.remoteTerminal() != nil
}

// WriteLine writes s followed by a line ending to every sink, bypassing
// formatting and filtering.
func (c *Console) WriteLine(s string) {
	c.mu.Lock()
	c.sinks.writeLine(s)
	c.mu.Unlock()
}

func (c *Console) WriteString(s string) {
	c.mu.Lock()
	c.sinks.writeString(s)
	c.mu.Unlock()
}

func (c *Console) Write(p []byte) (int, error) {
	c.mu.Lock()
	c.sinks.write(p)
	c.mu.Unlock()
	return len(p), nil
}

func (c *Console) primaryStream() Stream {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sinks.primary
}

func (c *Console) remoteTerminal() Terminal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sinks.remote
}

// authority returns the stream currently allowed to supply input.
func (c *Console) authority() Stream {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sinks.remote != nil {
		return c.sinks.remote
	}
	return c.sinks.primary
}

func (c *Console) Print(format string, args ...any)    { c.Report("", Normal, format, args...) }
func (c *Console) Verbose(format string, args ...any)  { c.Report("", Verbose, format, args...) }
func (c *Console) Debug(format string, args ...any)    { c.Report("", Debug, format, args...) }
func (c *Console) Info(format string, args ...any)     { c.Report("", Info, format, args...) }
func (c *Console) Warning(format string, args ...any)  { c.Report("", Warning, format, args...) }
func (c *Console) Alert(format string, args ...any)    { c.Report("", Alert, format, args...) }
func (c *Console) Error(format string, args ...any)    { c.Report("", Error, format, args...) }
func (c *Console) Critical(format string, args ...any) { c.Report("", Critical, format, args...) }

// Raw writes a line without timestamp, color or severity tag.
func (c *Console) Raw(format string, args ...any) { c.Report("", RawNoTimestamp, format, args...) }

func (c *Console) Colored(color Color, format string, args ...any) {
	c.Report("", color, format, args...)
}
