package ansi

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"nodebbs/internal/app"
)

const (
	ResetSeq = "\x1b[0m"
	ClearSeq = "\x1b[2J\x1b[H"
)

// PrepareForOutput strips SAUCE, converts to UTF-8 when the client wants it
// and normalizes line endings to CRLF.
func PrepareForOutput(data []byte, forceUTF8 bool) []byte {
	cleanData := StripSauce(data)

	var s string
	if forceUTF8 {
		s = DecodeCP437(cleanData)
	} else {
		// Legacy clients (SyncTERM, NetRunner) get the bytes as drawn
		s = string(cleanData)
	}

	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\n", "\r\n")

	return []byte(s)
}

// Print writes prepared art followed by a reset sequence.
func Print(w io.Writer, data []byte, utf8 bool) (int, error) {
	prepared := PrepareForOutput(data, utf8)
	prepared = append(prepared, []byte(ResetSeq)...)
	return w.Write(prepared)
}

// RenderArt loads <name>.ans from the art directory, expands it as a
// template and prints it.
func RenderArt(w io.Writer, name string, utf8 bool) error {
	data, err := loadArt(name)
	if err != nil {
		return err
	}

	if sauce, err := ParseSauce(data); err == nil && app.Logger != nil {
		app.Logger.Debug("Rendering art", "name", name, "title", sauce.Title, "author", sauce.Author, "width", sauce.TInfo1)
	}

	rendered, err := RenderTemplate(data, nil)
	if err != nil {
		return fmt.Errorf("art %s: %w", name, err)
	}

	_, err = Print(w, rendered, utf8)
	return err
}

func loadArt(name string) ([]byte, error) {
	dir := "art"
	if app.Config != nil && app.Config.Paths.Art != "" {
		dir = app.Config.Paths.Art
	}

	candidates := []string{name}
	if filepath.Ext(name) == "" {
		candidates = []string{name + ".ans", name + ".asc", name}
	}

	for _, candidate := range candidates {
		data, err := os.ReadFile(filepath.Join(dir, candidate))
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("art not found: %s", name)
}
