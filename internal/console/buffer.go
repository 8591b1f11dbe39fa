package console

const (
	MaxLineLen   = 256
	timestampLen = 40
)

// lineBuffer is a fixed-capacity text buffer. The final byte is never
// part of the content and is forced to zero by seal, so the content is
// at most len(buf)-1 bytes. Writes beyond that are dropped silently.
type lineBuffer struct {
	buf   []byte
	n     int
	limit int
}

func newLineBuffer(size int) lineBuffer {
	return lineBuffer{buf: make([]byte, size), limit: size - 1}
}

func (b *lineBuffer) Reset() {
	b.n = 0
	b.limit = len(b.buf) - 1
}

// Write never fails so fmt keeps formatting into a full buffer.
func (b *lineBuffer) Write(p []byte) (int, error) {
	b.n += copy(b.buf[b.n:b.limit], p)
	return len(p), nil
}

func (b *lineBuffer) WriteString(s string) (int, error) {
	b.n += copy(b.buf[b.n:b.limit], s)
	return len(s), nil
}

func (b *lineBuffer) WriteByte(c byte) error {
	if b.n < b.limit {
		b.buf[b.n] = c
		b.n++
	}
	return nil
}

// reserve keeps n bytes free at the end for a later release.
func (b *lineBuffer) reserve(n int) {
	b.limit = max(b.n, len(b.buf)-1-n)
}

func (b *lineBuffer) release() {
	b.limit = len(b.buf) - 1
}

func (b *lineBuffer) trimNewline() {
	if b.n > 0 && b.buf[b.n-1] == '\n' {
		b.n--
	}
}

func (b *lineBuffer) seal() {
	b.buf[len(b.buf)-1] = 0
}

func (b *lineBuffer) Len() int { return b.n }

func (b *lineBuffer) Bytes() []byte { return b.buf[:b.n] }

func (b *lineBuffer) String() string { return string(b.buf[:b.n]) }
