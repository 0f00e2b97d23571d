package ansi_test

import (
	"bytes"
	"encoding/binary"
	"io"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"nodebbs/internal/ansi"
)

func sauceTrailer(title string, width uint16, comments ...string) []byte {
	var buf bytes.Buffer
	buf.WriteByte(0x1A)
	if len(comments) > 0 {
		buf.WriteString("COMNT")
		for _, c := range comments {
			line := make([]byte, 64)
			copy(line, c)
			buf.Write(line)
		}
	}

	rec := make([]byte, ansi.SauceRecLen)
	copy(rec, "SAUCE00")
	copy(rec[7:], title)
	copy(rec[42:], "artist")
	binary.LittleEndian.PutUint16(rec[96:], width)
	rec[104] = byte(len(comments))
	buf.Write(rec)
	return buf.Bytes()
}

var _ = Describe("SAUCE", func() {
	art := []byte("\x1b[1;31mHELLO\x1b[0m\r\n")

	It("leaves art without a record alone", func() {
		Expect(ansi.StripSauce(art)).To(Equal(art))
		_, err := ansi.ParseSauce(art)
		Expect(err).To(MatchError(ansi.ErrNoSauce))
	})

	It("strips the record, the comments and the EOF marker", func() {
		data := append(append([]byte{}, art...), sauceTrailer("Logo", 80, "first", "second")...)
		Expect(ansi.StripSauce(data)).To(Equal(art))
	})

	It("parses the record fields", func() {
		data := append(append([]byte{}, art...), sauceTrailer("Logo", 80, "drawn in pablodraw")...)

		s, err := ansi.ParseSauce(data)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Title).To(Equal("Logo"))
		Expect(s.Author).To(Equal("artist"))
		Expect(s.TInfo1).To(BeEquivalentTo(80))
		Expect(s.Comments).To(Equal([]string{"drawn in pablodraw"}))
	})
})

var _ = Describe("CP437", func() {
	It("decodes box drawing and shading", func() {
		Expect(ansi.DecodeCP437([]byte{0xC9, 0xCD, 0xBB, 0xB0, 'A'})).To(Equal("╔═╗░A"))
	})

	It("decodes 0xFF as an ordinary character", func() {
		Expect(ansi.DecodeCP437([]byte{0xFF})).To(Equal("\u00a0"))
	})

	It("encodes back to single bytes", func() {
		Expect(ansi.EncodeCP437("╔═╗░A")).To(Equal([]byte{0xC9, 0xCD, 0xBB, 0xB0, 'A'}))
	})

	It("translates both directions of a legacy terminal", func() {
		var wire bytes.Buffer
		wire.Write([]byte{0x82, 'o', '\r'}) // "éo" typed on a CP437 keyboard

		rw := ansi.NewCodePageReadWriter(&wire)
		in, err := io.ReadAll(rw)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(in)).To(Equal("éo\r"))

		_, err = rw.Write([]byte("╔═╗"))
		Expect(err).NotTo(HaveOccurred())
		Expect(wire.Bytes()).To(Equal([]byte{0xC9, 0xCD, 0xBB}))
	})
})

var _ = Describe("PrepareForOutput", func() {
	It("normalizes line endings", func() {
		Expect(string(ansi.PrepareForOutput([]byte("a\nb\r\nc"), false))).To(Equal("a\r\nb\r\nc"))
	})

	It("converts to UTF-8 on request", func() {
		Expect(string(ansi.PrepareForOutput([]byte{0xDB, '\n'}, true))).To(Equal("█\r\n"))
	})
})

var _ = Describe("RenderTemplate", func() {
	It("passes art without actions through", func() {
		raw := []byte{0xDB, '{', 0xDB}
		out, err := ansi.RenderTemplate(raw, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal(raw))
	})

	It("expands custom values with sprig helpers", func() {
		out, err := ansi.RenderTemplate([]byte(`{{ .Custom.name | upper }}`), map[string]interface{}{"name": "sysop"})
		Expect(err).NotTo(HaveOccurred())
		Expect(string(out)).To(Equal("SYSOP"))
	})
})
