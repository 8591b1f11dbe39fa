package telnet

import "io"

// Telnet command bytes (RFC 854).
const (
	IAC  = 255
	DONT = 254
	DO   = 253
	WONT = 252
	WILL = 251
	SB   = 250
	SE   = 240

	optEcho = 1
	optSGA  = 3
)

// negotiation puts clients in character-at-a-time mode with server echo
// so keystrokes reach the console without local line editing.
var negotiation = []byte{IAC, WILL, optEcho, IAC, WILL, optSGA}

type decodeState uint8

const (
	stData decodeState = iota
	stCR
	stIAC
	stOption
	stSub
	stSubIAC
)

// Reader strips telnet commands from a client stream. Option
// negotiation and subnegotiation are discarded, IAC IAC yields a literal
// 0xFF and the NUL a client sends after CR is dropped.
type Reader struct {
	r     io.Reader
	state decodeState
	buf   []byte
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Read never returns 0, nil unless p is empty.
func (d *Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if cap(d.buf) < len(p) {
		d.buf = make([]byte, len(p))
	}
	for {
		n, err := d.r.Read(d.buf[:len(p)])
		out := d.decode(p, d.buf[:n])
		if out > 0 || err != nil {
			return out, err
		}
	}
}

func (d *Reader) decode(dst, src []byte) int {
	n := 0
	for _, b := range src {
		switch d.state {
		case stCR:
			d.state = stData
			if b == 0 {
				continue
			}
			fallthrough
		case stData:
			switch b {
			case IAC:
				d.state = stIAC
			case '\r':
				dst[n] = b
				n++
				d.state = stCR
			default:
				dst[n] = b
				n++
			}
		case stIAC:
			switch b {
			case IAC:
				dst[n] = b
				n++
				d.state = stData
			case WILL, WONT, DO, DONT:
				d.state = stOption
			case SB:
				d.state = stSub
			default:
				d.state = stData
			}
		case stOption:
			d.state = stData
		case stSub:
			if b == IAC {
				d.state = stSubIAC
			}
		case stSubIAC:
			if b == SE {
				d.state = stData
			} else {
				d.state = stSub
			}
		}
	}
	return n
}

// Writer doubles every 0xFF so it reaches the client as data.
type Writer struct {
	w io.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (e *Writer) Write(p []byte) (int, error) {
	start := 0
	for i, b := range p {
		if b != IAC {
			continue
		}
		if _, err := e.w.Write(p[start : i+1]); err != nil {
			return start, err
		}
		start = i
	}
	if _, err := e.w.Write(p[start:]); err != nil {
		return start, err
	}
	return len(p), nil
}
