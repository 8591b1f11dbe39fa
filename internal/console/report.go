package console

import (
	"fmt"
	"time"
)

const (
	ansiReset      = "\x1b[0m"
	fieldSeparator = " : "
)

// Times before this are treated as an unset clock and shown as time
// since boot in UTC.
const clockSetThreshold = 50 * 365 * 24 * time.Hour

// Report formats one line and writes it to every sink. The line layout is
//
//	[ESC color] [timestamp " : "] [tag " : "] ["[" letter "]"] message [ESC reset]
//
// and is bounded by MaxLineLen; longer output is truncated. A single
// trailing newline in the message is dropped. Suppressed lines cost no
// formatting.
func (c *Console) Report(tag string, lvl Level, format string, args ...any) {
	if c.registry.Muted(lvl) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	flags := c.registry.Flags()
	sev, plain := lvl.(Severity)
	raw := plain && sev == RawNoTimestamp

	c.stamp.Reset()
	if flags&ShowTimestamps != 0 && !raw {
		c.formatTimestamp(flags)
	}

	b := &c.line
	b.Reset()

	color := flags&ShowColor != 0 && !raw
	if color {
		fmt.Fprintf(b, "\x1b[%dm", lvl.sgr())
	}
	b.Write(c.stamp.Bytes())
	if tag != "" {
		b.WriteString(tag)
		b.WriteString(fieldSeparator)
	}
	if flags&ShowSeverity != 0 && plain && sev != Normal && !raw {
		b.WriteByte('[')
		b.WriteByte(sev.letter())
		b.WriteByte(']')
	}

	if color {
		b.reserve(len(ansiReset))
	}
	fmt.Fprintf(b, format, args...)
	b.release()
	b.trimNewline()
	if color {
		b.WriteString(ansiReset)
	}
	b.seal()

	c.sinks.flushPrimary()
	c.sinks.writeLine(b.String())
}

func (c *Console) formatTimestamp(flags DisplayFlags) {
	now := c.clock.Now()
	if now.Sub(time.Unix(0, 0)) < clockSetThreshold {
		now = now.UTC()
	} else {
		now = now.Local()
	}

	layout := "15:04:05"
	if flags&ShowDate != 0 {
		layout = "2006/01/02 15:04:05"
	}
	var scratch [timestampLen]byte
	c.stamp.Write(now.AppendFormat(scratch[:0], layout))
	if flags&ShowMilliseconds != 0 {
		fmt.Fprintf(&c.stamp, ".%03d", now.Nanosecond()/int(time.Millisecond))
	}
	c.stamp.WriteString(fieldSeparator)
}
