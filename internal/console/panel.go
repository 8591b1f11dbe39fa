package console

import (
	"fmt"
	"strings"
	"time"

	devconsole "code.selman.me/devconsole"
	"github.com/charmbracelet/x/ansi"
)

const panelWidth = 74

// Content rows are padded or cut to this many cells before the closing bar.
const panelInner = panelWidth - 2

var panelSeparator = " +" + strings.Repeat("-", panelInner-2) + "+"

func panelRow(s string) string {
	s = ansi.Truncate(s, panelInner, "")
	if w := ansi.StringWidth(s); w < panelInner {
		s += strings.Repeat(" ", panelInner-w)
	}
	return s + "|"
}

func (c *Console) showPanel(full bool) {
	c.WriteLine(panelSeparator)

	if full {
		p := c.platform
		c.WriteLine(panelRow(" |  " + c.banner()))
		c.WriteLine(panelSeparator)
		c.WriteLine(panelRow(" |  " + p.Identity()))
		c.WriteLine(panelRow(" |  " + p.Resources()))
		if _, local := c.network.(LocalOnly); !local {
			c.WriteLine(panelRow(fmt.Sprintf(" |  Network %s    Debug Control: %s", c.networkStatus(), c.authorityName())))
		}
		c.WriteLine(panelRow(" |  " + p.Memory()))
		c.WriteLine(panelRow(" |  System Uptime: " + formatUptime(p.Uptime())))
		c.WriteLine(panelRow(" |  Restart Reason: " + p.ResetReason()))
		c.WriteLine(panelSeparator)
	}

	mask := c.registry.Mask()
	c.WriteLine(panelRow(fmt.Sprintf(" |  In Command Mode (Debug Paused) - Press %s again to exit", c.keyName)))
	c.WriteLine(panelRow(fmt.Sprintf(" |    v)erbose [%c]      d)ebug [%c]     i)nfo [%c]     w)arning [%c]",
		checkbox(mask.Has(Verbose)), checkbox(mask.Has(Debug)), checkbox(mask.Has(Info)), checkbox(mask.Has(Warning)))))
	c.WriteLine(panelRow(" |  t)imestamps   m)illiseconds   y)y/mm/dd   f)lags   c)olor"))
	c.WriteLine(panelRow(" |  x) wide hexdump   r)estart"))
	c.WriteLine(panelSeparator)

	c.WriteString(" | ")
	prefix := ""
	if c.registry.Has(ShowSeverity) {
		prefix = "[V]"
	}
	c.Report("", Cyan, "%sExample message with current settings", prefix)
	c.WriteLine(panelSeparator)
}

func (c *Console) banner() string {
	built := "unknown"
	if t := devconsole.BuildTime(); !t.IsZero() {
		built = t.Local().Format("Jan _2 2006 15:04:05")
	}
	if c.appName != "" {
		return fmt.Sprintf("%s : Built %s (%s)", c.appName, built, devconsole.Version())
	}
	return fmt.Sprintf("DevConsole - Build Timestamp %s (%s)", built, devconsole.Version())
}

func (c *Console) networkStatus() string {
	if c.network.State() != Connected {
		return "Not Connected"
	}
	return "Connected   " + c.network.Addr()
}

func (c *Console) authorityName() string {
	if c.RemoteActive() {
		return "Network"
	}
	return "Serial"
}

func checkbox(on bool) byte {
	if on {
		return '#'
	}
	return ' '
}

func formatUptime(d time.Duration) string {
	secs := int64(d / time.Second)
	days := secs / (24 * 3600)
	secs %= 24 * 3600
	return fmt.Sprintf("%d days %dh %d m %ds", days, secs/3600, secs%3600/60, secs%60)
}
