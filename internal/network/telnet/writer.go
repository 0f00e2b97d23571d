package telnet

import (
	"bytes"
	"io"
	"sync"
)

// Encode appends p to dst with every IAC doubled.
func Encode(dst, p []byte) []byte {
	for _, b := range p {
		dst = append(dst, b)
		if b == IAC {
			dst = append(dst, IAC)
		}
	}
	return dst
}

// Writer serializes everything sent on a connection, so negotiation replies
// from the reader goroutine never interleave with application output.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write sends p, doubling IAC bytes when escape is set. The count returned is
// the number of bytes of p consumed, not the number put on the wire.
func (w *Writer) Write(p []byte, escape bool) (int, error) {
	if !escape || bytes.IndexByte(p, IAC) == -1 {
		w.mu.Lock()
		defer w.mu.Unlock()
		return w.w.Write(p)
	}

	buf := Encode(make([]byte, 0, len(p)+len(p)/10+1), p)

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.w.Write(buf); err != nil {
		return 0, err
	}
	return len(p), nil
}

// WriteCommand sends a Telnet command sequence.
// It automatically prepends IAC.
// Example: WriteCommand(WILL, Echo) sends IAC WILL ECHO
func (w *Writer) WriteCommand(cmds ...byte) error {
	data := make([]byte, 1+len(cmds))
	data[0] = IAC
	copy(data[1:], cmds)

	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := w.w.Write(data)
	return err
}

// WriteSubNegotiation sends IAC SB option <data> IAC SE. IAC bytes inside
// data are doubled.
func (w *Writer) WriteSubNegotiation(option byte, data []byte) error {
	buf := make([]byte, 0, 5+len(data))
	buf = append(buf, IAC, SB, option)
	buf = Encode(buf, data)
	buf = append(buf, IAC, SE)

	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := w.w.Write(buf)
	return err
}
