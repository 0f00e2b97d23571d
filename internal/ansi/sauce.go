package ansi

import (
	"bytes"
	"encoding/binary"
	"errors"
)

// SAUCE is the 128-byte metadata trailer many ANSI editors append to art,
// optionally preceded by a "COMNT" block of 64-byte comment lines and an
// EOF (0x1A) marker.

const (
	SauceRecLen     = 128
	sauceCommentLen = 64
)

var (
	SauceID      = []byte("SAUCE")
	sauceComment = []byte("COMNT")
	ErrNoSauce   = errors.New("no SAUCE record found")
)

// sauceRecord mirrors the on-disk layout (little endian).
type sauceRecord struct {
	ID       [5]byte
	Version  [2]byte
	Title    [35]byte
	Author   [20]byte
	Group    [20]byte
	Date     [8]byte
	FileSize uint32
	DataType byte
	FileType byte
	TInfo1   uint16
	TInfo2   uint16
	TInfo3   uint16
	TInfo4   uint16
	Comments byte
	Flags    byte
	Filler   [22]byte
}

type Sauce struct {
	Title    string
	Author   string
	Group    string
	Date     string
	DataType byte
	FileType byte
	TInfo1   uint16 // character width for ANSi art
	TInfo2   uint16 // number of lines
	TInfo3   uint16
	TInfo4   uint16
	Comments []string
	Flags    byte
}

func readSauce(data []byte) (*sauceRecord, int, bool) {
	if len(data) < SauceRecLen {
		return nil, 0, false
	}
	start := len(data) - SauceRecLen
	if !bytes.HasPrefix(data[start:], SauceID) {
		return nil, 0, false
	}

	var rec sauceRecord
	if err := binary.Read(bytes.NewReader(data[start:]), binary.LittleEndian, &rec); err != nil {
		return nil, 0, false
	}
	return &rec, start, true
}

func trimField(b []byte) string {
	return string(bytes.TrimRight(b, "\x00 "))
}

// StripSauce removes the SAUCE record, its comments and the EOF marker.
func StripSauce(data []byte) []byte {
	rec, start, ok := readSauce(data)
	if !ok {
		return data
	}

	end := start
	if rec.Comments > 0 {
		end -= len(sauceComment) + sauceCommentLen*int(rec.Comments)
		if end < 0 {
			return []byte{}
		}
	}
	if end > 0 && data[end-1] == 0x1A {
		end--
	}
	return data[:end]
}

// ParseSauce extracts the SAUCE record from the data
func ParseSauce(data []byte) (*Sauce, error) {
	rec, start, ok := readSauce(data)
	if !ok {
		return nil, ErrNoSauce
	}

	s := &Sauce{
		Title:    trimField(rec.Title[:]),
		Author:   trimField(rec.Author[:]),
		Group:    trimField(rec.Group[:]),
		Date:     trimField(rec.Date[:]),
		DataType: rec.DataType,
		FileType: rec.FileType,
		TInfo1:   rec.TInfo1,
		TInfo2:   rec.TInfo2,
		TInfo3:   rec.TInfo3,
		TInfo4:   rec.TInfo4,
		Flags:    rec.Flags,
	}

	if rec.Comments > 0 {
		blockStart := start - len(sauceComment) - sauceCommentLen*int(rec.Comments)
		if blockStart >= 0 && bytes.HasPrefix(data[blockStart:], sauceComment) {
			lines := data[blockStart+len(sauceComment) : start]
			for i := 0; i < int(rec.Comments); i++ {
				s.Comments = append(s.Comments, trimField(lines[i*sauceCommentLen:(i+1)*sauceCommentLen]))
			}
		}
	}

	return s, nil
}
