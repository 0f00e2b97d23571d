package ansi

import (
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// DecodeCP437 converts CP437 encoded bytes to a UTF-8 string. Every byte is
// an opaque octet here; nothing telnet-specific survives this far.
func DecodeCP437(data []byte) string {
	out, err := charmap.CodePage437.NewDecoder().Bytes(data)
	if err != nil {
		// Single-byte decoding cannot fail; keep the bytes if it ever does.
		return string(data)
	}
	return string(out)
}

// EncodeCP437 converts UTF-8 text to CP437, substituting runes the code page
// cannot express.
func EncodeCP437(s string) []byte {
	out, _, err := transform.String(encoding.ReplaceUnsupported(charmap.CodePage437.NewEncoder()), s)
	if err != nil {
		return []byte(s)
	}
	return []byte(out)
}

type codePageReadWriter struct {
	io.Reader
	io.Writer
}

// NewCodePageReadWriter wraps a legacy CP437 terminal so the session can speak
// UTF-8 on both directions.
func NewCodePageReadWriter(rw io.ReadWriter) io.ReadWriter {
	return codePageReadWriter{
		Reader: transform.NewReader(rw, charmap.CodePage437.NewDecoder()),
		Writer: &encodingWriter{w: rw, enc: encoding.ReplaceUnsupported(charmap.CodePage437.NewEncoder())},
	}
}

// encodingWriter encodes each Write in one go. transform.Writer would hold
// back output until Close, which an interactive prompt cannot wait for.
type encodingWriter struct {
	w   io.Writer
	enc *encoding.Encoder
}

func (e *encodingWriter) Write(p []byte) (int, error) {
	out, err := e.enc.Bytes(p)
	if err != nil {
		return 0, err
	}
	if _, err := e.w.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}
