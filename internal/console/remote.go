package console

import (
	"strings"
	"time"
)

type ConnectionState uint8

const (
	Idle ConnectionState = iota
	Connecting
	Connected
)

func (s ConnectionState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// Network is the attach capability behind remote terminals. Accept must
// not block.
type Network interface {
	State() ConnectionState
	Addr() string
	Accept() (Terminal, bool)
}

// LocalOnly is the Network of a console without remote access.
type LocalOnly struct{}

func (LocalOnly) State() ConnectionState   { return Idle }
func (LocalOnly) Addr() string             { return "" }
func (LocalOnly) Accept() (Terminal, bool) { return nil, false }

const (
	netNoticeInterval = 5 * time.Second
	memCheckInterval  = 250 * time.Millisecond
	welcomeWidth      = 45
)

// Poll advances the remote-terminal lifecycle and processes pending
// input once. It returns whether a firmware update is in progress.
func (c *Console) Poll() bool {
	now := c.clock.Now()

	c.checkDisconnect()
	c.pollNetwork(now)
	c.acceptClients(now)
	c.sendWelcome(now)
	c.watchMemory(now)
	if c.handleInput() {
		return c.updater.Busy()
	}
	c.drainLocal()

	return c.updater.Busy()
}

func (c *Console) checkDisconnect() {
	c.mu.Lock()
	r := c.sinks.remote
	if r == nil || r.Connected() {
		c.mu.Unlock()
		return
	}
	c.sinks.remote = nil
	c.mu.Unlock()

	r.Close()
	c.Alert("Remote terminal disconnected, resuming control by serial port")
}

func (c *Console) pollNetwork(now time.Time) {
	state := c.network.State()
	prev := c.netState
	c.netState = state

	switch state {
	case Connected:
		if prev == Connected {
			return
		}
		c.Alert("Network ready! Use client (eg 'PuTTY') & connect to %s", c.network.Addr())
		if c.hostname != "" {
			c.Alert("mDNS Enabled - Device may be reached using '%s.local'", c.hostname)
		}
		c.Alert("Press %s to enter command mode.", c.keyName)
	case Connecting:
		switch {
		case prev == Connected:
			c.Alert("Lost network connection. Attempting to reconnect..")
			c.lastNetNotice = now
		case prev != Connecting:
			c.lastNetNotice = now
		case now.Sub(c.lastNetNotice) > netNoticeInterval:
			c.Info("Still attempting to connect to network...")
			c.lastNetNotice = now
		}
	}
}

func (c *Console) acceptClients(now time.Time) {
	if c.pending != nil && !c.pending.Connected() {
		c.pending.Close()
		c.pending = nil
	}

	for {
		t, ok := c.network.Accept()
		if !ok {
			return
		}
		if c.pending != nil || c.RemoteActive() {
			c.Alert("Remote terminal already attached, rejected %s", t.RemoteAddr())
			t.Close()
			continue
		}
		c.Alert("Client connected with IP: %s", t.RemoteAddr())
		c.pending = t
		c.pendingSince = now
		c.registry.setCommandMode(false)
	}
}

// sendWelcome hands authority to a pending client once it has had time to
// settle.
func (c *Console) sendWelcome(now time.Time) {
	t := c.pending
	if t == nil || now.Sub(c.pendingSince) < c.welcomeDelay {
		return
	}
	c.pending = nil

	border := " +" + strings.Repeat("-", welcomeWidth) + "+" + lineEnding
	t.Write([]byte(border +
		" |" + center("Connected to remote device via network", welcomeWidth) + "|" + lineEnding +
		" |" + center("Press "+c.keyName+" for Command Mode", welcomeWidth) + "|" + lineEnding +
		border))

	c.mu.Lock()
	c.sinks.remote = t
	c.mu.Unlock()
}

// drainLocal discards local input while a remote terminal holds authority.
func (c *Console) drainLocal() {
	if !c.RemoteActive() {
		return
	}
	local := c.primaryStream()
	if local.Available() == 0 {
		return
	}
	c.Alert("Remote terminal is active, ignoring local serial commands")
	for local.Available() > 0 {
		if _, err := local.ReadByte(); err != nil {
			return
		}
	}
}

func (c *Console) watchMemory(now time.Time) {
	if now.Sub(c.lastMemCheck) < memCheckInterval {
		return
	}
	c.lastMemCheck = now

	free := c.platform.MinFreeMemory()
	switch {
	case free == 0:
	case c.minFree == 0:
		c.minFree = free
	case free < c.minFree:
		c.Warning("Minimum free memory dropped by %d bytes to %d bytes", c.minFree-free, free)
		c.minFree = free
	}
}

func center(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	left := (width - len(s)) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-len(s)-left)
}
