// Package proto implements the line-oriented servo command protocol:
// CR/LF-terminated lines of semicolon-separated "channel,angle" pairs.
package proto

// ByteSource yields pending input bytes without blocking.
type ByteSource interface {
	// TryReadByte returns the next input byte if one is ready.
	TryReadByte() (byte, bool)
}

// MaxLineLen is the capacity of the line buffer. Characters beyond it
// are dropped until the next terminator.
const MaxLineLen = 255

// Assembler accumulates raw bytes into complete lines. A carriage
// return or newline ends the current line; empty lines are swallowed,
// so CRLF pairs and blank keepalives cost nothing. Only printable
// ASCII is accepted; anything else is dropped silently.
type Assembler struct {
	buf []byte
}

func NewAssembler() *Assembler {
	return &Assembler{buf: make([]byte, 0, MaxLineLen)}
}

// Feed consumes one byte and reports a completed line, if any.
func (a *Assembler) Feed(b byte) (string, bool) {
	switch {
	case b == '\r' || b == '\n':
		if len(a.buf) == 0 {
			return "", false
		}
		line := string(a.buf)
		a.buf = a.buf[:0]
		return line, true
	case b >= ' ' && b <= '~':
		if len(a.buf) < MaxLineLen {
			a.buf = append(a.buf, b)
		}
		// Overlong lines are truncated, not discarded: the prefix is
		// kept and the tail dropped until the terminator arrives.
	}
	return "", false
}

// Next drains src until a complete line is ready or no byte is
// pending. Partial input stays buffered for the next call.
func (a *Assembler) Next(src ByteSource) (string, bool) {
	for {
		b, ok := src.TryReadByte()
		if !ok {
			return "", false
		}
		if line, done := a.Feed(b); done {
			return line, true
		}
	}
}

// Clean applies the assembler's acceptance rules to a whole line at
// once: non-printable characters are dropped and the result truncated
// to MaxLineLen. Used for lines injected above the byte layer.
func Clean(line string) string {
	out := make([]byte, 0, len(line))
	for i := 0; i < len(line) && len(out) < MaxLineLen; i++ {
		if b := line[i]; b >= ' ' && b <= '~' {
			out = append(out, b)
		}
	}
	return string(out)
}
