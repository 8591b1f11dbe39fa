package console

import (
	"errors"
)

var ErrNoInput = errors.New("console: no input available")

// Available returns the number of bytes the authoritative stream can
// supply. It is zero in command mode and while the next byte is the
// command key.
func (c *Console) Available() int {
	if c.registry.CommandMode() {
		return 0
	}
	in := c.authority()
	n := in.Available()
	if n == 0 {
		return 0
	}
	if b, ok := in.Peek(); ok && b == c.commandKey {
		return 0
	}
	return n
}

func (c *Console) Peek() (byte, bool) {
	if c.registry.CommandMode() {
		return 0, false
	}
	b, ok := c.authority().Peek()
	if !ok || b == c.commandKey {
		return 0, false
	}
	return b, true
}

// ReadByte returns ErrNoInput instead of blocking. The command key is
// never returned.
func (c *Console) ReadByte() (byte, error) {
	if c.registry.CommandMode() {
		return 0, ErrNoInput
	}
	in := c.authority()
	if b, ok := in.Peek(); !ok || b == c.commandKey {
		return 0, ErrNoInput
	}
	return in.ReadByte()
}

// CommandMode reports whether keystrokes are being interpreted as
// console commands.
func (c *Console) CommandMode() bool {
	return c.registry.CommandMode()
}

// handleInput processes at most one command key. It reports whether the
// restart prompt was just shown.
func (c *Console) handleInput() bool {
	in := c.authority()
	if in.Available() == 0 {
		return false
	}

	if b, ok := in.Peek(); ok && b == c.commandKey {
		on := !c.registry.CommandMode()
		c.registry.setCommandMode(on)
		if !on {
			in.ReadByte()
			c.Alert("Returning to normal mode")
		}
	}
	if !c.registry.CommandMode() {
		return false
	}

	// The command key itself lands here on entry and shows the panel.
	key, err := in.ReadByte()
	if err != nil {
		return false
	}
	return c.dispatch(toLower(key))
}

func (c *Console) dispatch(key byte) bool {
	confirmed := c.awaitingRestart && key == 'y'
	c.awaitingRestart = false
	if confirmed {
		c.restart()
		return false
	}

	full := false
	switch key {
	case 'v':
		c.registry.ToggleSeverity(Verbose)
	case 'd':
		c.registry.ToggleSeverity(Debug)
	case 'i':
		c.registry.ToggleSeverity(Info)
	case 'w':
		c.registry.ToggleSeverity(Warning)
	case 't':
		c.registry.ToggleFlags(ShowTimestamps)
	case 'y':
		c.registry.ToggleFlags(ShowDate)
	case 'm':
		c.registry.ToggleFlags(ShowMilliseconds)
	case 'c':
		c.registry.ToggleFlags(ShowColor)
	case 'f':
		c.registry.ToggleFlags(ShowSeverity)
	case 'x':
		c.registry.ToggleFlags(WideHexDump)
	case 'r':
		c.WriteLine("Are you sure want to restart?")
		c.WriteLine("  Press 'y' to confirm, any other key to cancel:")
		c.awaitingRestart = true
		return true
	default:
		full = true
	}
	c.showPanel(full)
	return false
}

// restart only returns when the platform refuses to restart.
func (c *Console) restart() {
	c.WriteLine("About to restart, please reconnect if using remote terminal")
	if c.restartDelay > 0 {
		c.clock.Sleep(c.restartDelay)
	}
	if err := c.platform.Restart(); err != nil {
		c.WriteLine("Restart failed: " + err.Error())
	}
}

func toLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + 'a' - 'A'
	}
	return b
}
