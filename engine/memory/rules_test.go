package memory

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseRules(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []Rule
		wantErr string
	}{
		{
			name:  "string with annotations",
			input: "# header\n\n0 string %PDF- PDF document\n!:mime application/pdf\n!:ext pdf\n",
			want:  []Rule{{Offset: 0, Magic: []byte("%PDF-"), Description: "PDF document", MIME: "application/pdf", Ext: "pdf"}},
		},
		{
			name:  "hex at offset",
			input: "8\thex\t57454250\tWeb/P image",
			want:  []Rule{{Offset: 8, Magic: []byte("WEBP"), Description: "Web/P image"}},
		},
		{
			name:  "escapes",
			input: `0 string \x89PNG\r\n\x1a\n PNG image data`,
			want:  []Rule{{Offset: 0, Magic: []byte("\x89PNG\r\n\x1a\n"), Description: "PNG image data"}},
		},
		{
			name:  "escaped space",
			input: `0 string AVI\  video`,
			want:  []Rule{{Offset: 0, Magic: []byte("AVI "), Description: "video"}},
		},
		{
			name:  "no description",
			input: "0 string MZ",
			want:  []Rule{{Offset: 0, Magic: []byte("MZ")}},
		},
		{name: "annotation first", input: "!:mime text/plain", wantErr: "line 1: annotation without a rule"},
		{name: "unknown annotation", input: "0 string A a\n!:strength +10", wantErr: "line 2: unknown annotation"},
		{name: "bad offset", input: "-1 string A a", wantErr: "line 1: invalid offset"},
		{name: "bad type", input: "0 belong 0xcafebabe Java", wantErr: "line 1: unsupported type"},
		{name: "bad hex", input: "0 hex zz x", wantErr: "line 1: invalid value"},
		{name: "short escape", input: `0 string \x4`, wantErr: "line 1: invalid value"},
		{name: "missing value", input: "0 string", wantErr: "line 1: expected offset, type and value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRules([]byte(tt.input))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("ParseRules() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRules() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseRules() returned %d rules, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if !equalRule(got[i], tt.want[i]) {
					t.Errorf("rule %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFormatRulesRoundTrip(t *testing.T) {
	formatted := FormatRules(defaultRules)
	parsed, err := ParseRules(formatted)
	if err != nil {
		t.Fatalf("ParseRules(FormatRules()) error = %v", err)
	}
	if len(parsed) != len(defaultRules) {
		t.Fatalf("got %d rules, want %d", len(parsed), len(defaultRules))
	}
	for i := range parsed {
		if !equalRule(parsed[i], defaultRules[i]) {
			t.Errorf("rule %d = %+v, want %+v", i, parsed[i], defaultRules[i])
		}
	}
}

func TestCompileRules(t *testing.T) {
	compiled := CompileRules(defaultRules)
	if !bytes.HasPrefix(compiled, compiledHeader) {
		t.Fatal("compiled database lacks header")
	}

	parsed, err := ParseRules(compiled)
	if err != nil {
		t.Fatalf("ParseRules(compiled) error = %v", err)
	}
	if len(parsed) != len(defaultRules) {
		t.Errorf("got %d rules, want %d", len(parsed), len(defaultRules))
	}

	corrupt := append(append([]byte(nil), compiledHeader...), 0x01, 0x02)
	if _, err := ParseRules(corrupt); err == nil {
		t.Error("corrupt compiled database parsed")
	}
}

func equalRule(a, b Rule) bool {
	return a.Offset == b.Offset &&
		bytes.Equal(a.Magic, b.Magic) &&
		a.Description == b.Description &&
		a.MIME == b.MIME &&
		a.Ext == b.Ext
}
