package memory

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Rule matches Magic at Offset. It is a deliberately tiny subset of the magic(5)
// format: one fixed byte sequence per rule, no continuation levels.
type Rule struct {
	Offset      int
	Magic       []byte
	Description string
	MIME        string
	Ext         string
}

// compiledHeader starts every compiled database. The rest is a zstd frame
// holding the rules in text form.
var compiledHeader = []byte("\x1bMKC")

// Shared encoder/decoder, both safe for concurrent use.
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	zstdDecoder, _ = zstd.NewReader(nil)
)

// ParseRules reads a database, either text or compiled.
//
// The text form has one rule per line:
//
//	# comment
//	<offset> string <value> <description>
//	<offset> hex <hexbytes> <description>
//	!:mime <type>
//	!:ext <ext>/<ext>
//
// String values use \xHH, \0, \n, \r, \t, "\ " and \\ escapes. !:mime and !:ext
// annotate the rule above them.
func ParseRules(data []byte) ([]Rule, error) {
	if bytes.HasPrefix(data, compiledHeader) {
		text, err := zstdDecoder.DecodeAll(data[len(compiledHeader):], nil)
		if err != nil {
			return nil, fmt.Errorf("corrupt compiled database: %w", err)
		}
		data = text
	}

	var rules []Rule
	scanner := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		if strings.HasPrefix(text, "!:") {
			if len(rules) == 0 {
				return nil, fmt.Errorf("line %d: annotation without a rule", line)
			}
			key, value := text[2:], ""
			if i := strings.IndexAny(key, " \t"); i >= 0 {
				key, value = key[:i], strings.TrimSpace(key[i:])
			}
			switch key {
			case "mime":
				rules[len(rules)-1].MIME = value
			case "ext":
				rules[len(rules)-1].Ext = value
			default:
				return nil, fmt.Errorf("line %d: unknown annotation %q", line, key)
			}
			continue
		}

		r, err := parseRule(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rules = append(rules, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rules, nil
}

func parseRule(text string) (Rule, error) {
	fields := splitFields(text, 4)
	if len(fields) < 3 {
		return Rule{}, fmt.Errorf("expected offset, type and value")
	}

	offset, err := strconv.Atoi(fields[0])
	if err != nil || offset < 0 {
		return Rule{}, fmt.Errorf("invalid offset %q", fields[0])
	}

	var magic []byte
	switch fields[1] {
	case "string":
		magic, err = unescape(fields[2])
	case "hex":
		magic, err = hex.DecodeString(fields[2])
	default:
		return Rule{}, fmt.Errorf("unsupported type %q", fields[1])
	}
	if err != nil {
		return Rule{}, fmt.Errorf("invalid value %q: %w", fields[2], err)
	}
	if len(magic) == 0 {
		return Rule{}, fmt.Errorf("empty value")
	}

	r := Rule{Offset: offset, Magic: magic}
	if len(fields) == 4 {
		r.Description = fields[3]
	}
	return r, nil
}

// splitFields splits on unescaped whitespace into at most n fields; the last
// field keeps the rest of the line.
func splitFields(text string, n int) []string {
	var fields []string
	for len(fields) < n-1 {
		text = strings.TrimLeft(text, " \t")
		if text == "" {
			return fields
		}
		end := 0
		for end < len(text) && text[end] != ' ' && text[end] != '\t' {
			if text[end] == '\\' && end+1 < len(text) {
				end++
			}
			end++
		}
		fields = append(fields, text[:end])
		text = text[end:]
	}
	if text = strings.TrimSpace(text); text != "" {
		fields = append(fields, text)
	}
	return fields
}

func unescape(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			out = append(out, c)
			continue
		}
		i++
		if i >= len(s) {
			return nil, fmt.Errorf("trailing backslash")
		}
		switch s[i] {
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case '0':
			out = append(out, 0)
		case 'x':
			if i+2 >= len(s) {
				return nil, fmt.Errorf("short \\x escape")
			}
			b, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
			if err != nil {
				return nil, fmt.Errorf("invalid \\x escape")
			}
			out = append(out, byte(b))
			i += 2
		default:
			out = append(out, s[i])
		}
	}
	return out, nil
}

func escape(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		switch {
		case c == '\\':
			sb.WriteString(`\\`)
		case c < 0x21 || c > 0x7e:
			fmt.Fprintf(&sb, `\x%02x`, c)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// FormatRules writes rules in the text form read by ParseRules.
func FormatRules(rules []Rule) []byte {
	var buf bytes.Buffer
	for _, r := range rules {
		fmt.Fprintf(&buf, "%d\tstring\t%s", r.Offset, escape(r.Magic))
		if r.Description != "" {
			fmt.Fprintf(&buf, "\t%s", r.Description)
		}
		buf.WriteByte('\n')
		if r.MIME != "" {
			fmt.Fprintf(&buf, "!:mime\t%s\n", r.MIME)
		}
		if r.Ext != "" {
			fmt.Fprintf(&buf, "!:ext\t%s\n", r.Ext)
		}
	}
	return buf.Bytes()
}

// CompileRules returns the compiled form of rules.
func CompileRules(rules []Rule) []byte {
	out := append([]byte(nil), compiledHeader...)
	return zstdEncoder.EncodeAll(FormatRules(rules), out)
}
