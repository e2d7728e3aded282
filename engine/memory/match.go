package memory

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// Flag bits the engine interprets, from magic.h.
const (
	flagMIMEType     = 0x0000010
	flagContinue     = 0x0000020
	flagError        = 0x0000200
	flagMIMEEncoding = 0x0000400
	flagApple        = 0x0000800
	flagExtension    = 0x1000000
	flagSymlink      = 0x0000002
	flagNoCheckText  = 0x0020000
	flagNoCheckSoft  = 0x0004000

	flagMIME = flagMIMEType | flagMIMEEncoding
)

// match is one classification before flags shape it into the returned string.
type match struct {
	description string
	mime        string
	encoding    string
	ext         string
}

func classify(rules []Rule, data []byte, flags int) []match {
	if len(data) == 0 {
		return []match{{description: "empty", mime: "application/x-empty", encoding: "binary"}}
	}

	var matches []match
	if flags&flagNoCheckSoft == 0 {
		for _, r := range rules {
			end := r.Offset + len(r.Magic)
			if end > len(data) || !bytes.Equal(data[r.Offset:end], r.Magic) {
				continue
			}
			m := match{description: r.Description, mime: r.MIME, encoding: "binary", ext: r.Ext}
			if m.mime == "" {
				m.mime = "application/octet-stream"
			}
			if strings.HasPrefix(m.mime, "text/") {
				m.encoding = textEncoding(data)
			}
			matches = append(matches, m)
			if flags&flagContinue == 0 {
				return matches
			}
		}
	}
	if len(matches) > 0 {
		return matches
	}

	if flags&flagNoCheckText == 0 {
		if enc := textEncoding(data); enc != "binary" {
			desc := "ASCII text"
			if enc == "utf-8" {
				desc = "Unicode text, UTF-8 text"
			}
			return []match{{description: desc, mime: "text/plain", encoding: enc}}
		}
	}
	return []match{{description: "data", mime: "application/octet-stream", encoding: "binary"}}
}

// textEncoding reports us-ascii or utf-8 for printable text, binary otherwise.
func textEncoding(data []byte) string {
	if !utf8.Valid(data) {
		return "binary"
	}
	ascii := true
	for _, r := range string(data) {
		switch {
		case r == '\n' || r == '\r' || r == '\t' || r == '\f':
		case r < 0x20 || r == 0x7f:
			return "binary"
		case r >= utf8.RuneSelf:
			ascii = false
		}
	}
	if ascii {
		return "us-ascii"
	}
	return "utf-8"
}

// render shapes matches into the string libmagic would return for flags.
func render(matches []match, flags int) string {
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		var s string
		switch {
		case flags&flagMIME == flagMIME:
			s = m.mime + "; charset=" + m.encoding
		case flags&flagMIMEType != 0:
			s = m.mime
		case flags&flagMIMEEncoding != 0:
			s = m.encoding
		case flags&flagExtension != 0:
			s = m.ext
			if s == "" {
				s = "???"
			}
		case flags&flagApple != 0:
			s = "UNKNUNKN"
		default:
			s = m.description
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "\n- ")
}
