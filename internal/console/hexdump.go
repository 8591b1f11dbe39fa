package console

import (
	"fmt"
	"strings"
	"unsafe"
)

// HexDump writes data as rows of hexadecimal bytes labelled with their
// memory address. A nil slice is reported as a null pointer.
func (c *Console) HexDump(tag, msg string, data []byte, sev Severity) {
	c.HexDumpAt(tag, msg, uintptr(unsafe.Pointer(unsafe.SliceData(data))), data, sev)
}

// HexDumpAt is HexDump with rows labelled from base instead of the
// slice address.
//
// Dumps of at most half a row are appended to the message line and go
// through Report. Longer dumps print the message on its own line and
// write each row straight to the sinks so rows carry no timestamp or tag.
func (c *Console) HexDumpAt(tag, msg string, base uintptr, data []byte, sev Severity) {
	if c.registry.Muted(sev) {
		return
	}

	if data == nil {
		c.Report(tag, sev, "%s [Null ptr]", msg)
		return
	}

	flags := c.registry.Flags()
	width := 16
	if flags&WideHexDump != 0 {
		width = 32
	}
	short := len(data) <= width/2

	var row strings.Builder
	if short {
		row.WriteString(msg)
	} else {
		c.Report(tag, sev, "%s", msg)
	}

	color := flags&ShowColor != 0 && sev != RawNoTimestamp && !short
	if color {
		fmt.Fprintf(&row, "\x1b[%dm", sev.sgr())
	}

	if len(data) == 0 {
		c.Report(tag, sev, "%s", msg)
		return
	}

	addr := base
	for remaining := data; len(remaining) > 0; {
		n := min(width, len(remaining))
		fmt.Fprintf(&row, " %08X :", uint32(addr))
		for i, b := range remaining[:n] {
			if i&7 == 0 {
				row.WriteByte(' ')
			}
			fmt.Fprintf(&row, "%02X ", b)
		}
		remaining = remaining[n:]
		addr += uintptr(n)

		if color && len(remaining) == 0 {
			row.WriteString(ansiReset)
		}
		if short {
			c.Report(tag, sev, "%s", row.String())
		} else {
			c.WriteLine(row.String())
		}
		row.Reset()
	}
}
