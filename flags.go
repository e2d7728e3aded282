package magickit

import (
	"fmt"
	"strconv"
	"strings"
)

// Flags is a set of engine configuration bits, passed to Open and SetFlags.
//
// Bits not named below are kept as they are. Which combinations an engine accepts
// is decided by the engine when the flags are applied, not here.
type Flags uint32

// Flag values from magic.h
const (
	FlagNone          Flags = 0x0000000
	FlagDebug         Flags = 0x0000001 // Print debugging messages to stderr
	FlagSymlink       Flags = 0x0000002 // Follow symlinks
	FlagCompress      Flags = 0x0000004 // Check inside compressed files
	FlagDevices       Flags = 0x0000008 // Look at the contents of devices
	FlagMIMEType      Flags = 0x0000010 // Return the MIME type
	FlagContinue      Flags = 0x0000020 // Return all matches
	FlagCheck         Flags = 0x0000040 // Print warnings to stderr
	FlagPreserveAtime Flags = 0x0000080 // Restore access time on exit
	FlagRaw           Flags = 0x0000100 // Don't convert unprintable chars
	FlagError         Flags = 0x0000200 // Handle ENOENT etc as real errors
	FlagMIMEEncoding  Flags = 0x0000400 // Return the MIME encoding
	FlagMIME                = FlagMIMEType | FlagMIMEEncoding
	FlagApple         Flags = 0x0000800 // Return the Apple creator/type
	FlagExtension     Flags = 0x1000000 // Return a /-separated list of extensions
	FlagNoDesc              = FlagExtension | FlagMIME | FlagApple

	FlagNoCheckCompress Flags = 0x0001000 // Don't check for compressed files
	FlagNoCheckTar      Flags = 0x0002000 // Don't check for tar files
	FlagNoCheckSoft     Flags = 0x0004000 // Don't check magic entries
	FlagNoCheckAppType  Flags = 0x0008000 // Don't check application type
	FlagNoCheckELF      Flags = 0x0010000 // Don't check for elf details
	FlagNoCheckText     Flags = 0x0020000 // Don't check for text files
	FlagNoCheckCDF      Flags = 0x0040000 // Don't check for cdf files
	FlagNoCheckCSV      Flags = 0x0080000 // Don't check for CSV files
	FlagNoCheckTokens   Flags = 0x0100000 // Don't check tokens
	FlagNoCheckEncoding Flags = 0x0200000 // Don't check text encodings
	FlagNoCheckJSON     Flags = 0x0400000 // Don't check for JSON files

	// FlagNoCheckBuiltin disables every built-in test. It leaves
	// FlagNoCheckSoft out, as magic.h does.
	FlagNoCheckBuiltin = FlagNoCheckCompress |
		FlagNoCheckTar |
		FlagNoCheckAppType |
		FlagNoCheckELF |
		FlagNoCheckText |
		FlagNoCheckCSV |
		FlagNoCheckCDF |
		FlagNoCheckTokens |
		FlagNoCheckEncoding |
		FlagNoCheckJSON
)

type namedFlag struct {
	name  string
	flags Flags
}

// flagNames is in output order. Composites come after their parts so that String
// prefers the primitive names.
var flagNames = []namedFlag{
	{"DEBUG", FlagDebug},
	{"SYMLINK", FlagSymlink},
	{"COMPRESS", FlagCompress},
	{"DEVICES", FlagDevices},
	{"MIME_TYPE", FlagMIMEType},
	{"CONTINUE", FlagContinue},
	{"CHECK", FlagCheck},
	{"PRESERVE_ATIME", FlagPreserveAtime},
	{"RAW", FlagRaw},
	{"ERROR", FlagError},
	{"MIME_ENCODING", FlagMIMEEncoding},
	{"MIME", FlagMIME},
	{"APPLE", FlagApple},
	{"EXTENSION", FlagExtension},
	{"NODESC", FlagNoDesc},
	{"NO_CHECK_COMPRESS", FlagNoCheckCompress},
	{"NO_CHECK_TAR", FlagNoCheckTar},
	{"NO_CHECK_SOFT", FlagNoCheckSoft},
	{"NO_CHECK_APPTYPE", FlagNoCheckAppType},
	{"NO_CHECK_ELF", FlagNoCheckELF},
	{"NO_CHECK_TEXT", FlagNoCheckText},
	{"NO_CHECK_CDF", FlagNoCheckCDF},
	{"NO_CHECK_CSV", FlagNoCheckCSV},
	{"NO_CHECK_TOKENS", FlagNoCheckTokens},
	{"NO_CHECK_ENCODING", FlagNoCheckEncoding},
	{"NO_CHECK_JSON", FlagNoCheckJSON},
	{"NO_CHECK_BUILTIN", FlagNoCheckBuiltin},
}

// FlagsFromBits returns the Flags for a raw bit pattern, unknown bits included.
func FlagsFromBits(bits uint32) Flags {
	return Flags(bits)
}

// Bits returns the raw bit pattern.
func (f Flags) Bits() uint32 {
	return uint32(f)
}

// Union returns the bits set in f or other.
func (f Flags) Union(other Flags) Flags {
	return f | other
}

// Intersect returns the bits set in both f and other.
func (f Flags) Intersect(other Flags) Flags {
	return f & other
}

// Difference returns the bits set in f but not in other.
func (f Flags) Difference(other Flags) Flags {
	return f &^ other
}

// Contains reports whether every bit of other is set in f.
func (f Flags) Contains(other Flags) bool {
	return f&other == other
}

// IsEmpty reports whether no bit is set.
func (f Flags) IsEmpty() bool {
	return f == 0
}

// String lists the named flags in f separated by " | ", followed by any unnamed
// bits in hex. The empty set prints as "".
func (f Flags) String() string {
	if f == 0 {
		return ""
	}

	var parts []string
	remaining := f
	for _, nf := range flagNames {
		if remaining == 0 {
			break
		}
		if f.Contains(nf.flags) && remaining&nf.flags != 0 {
			parts = append(parts, nf.name)
			remaining &^= nf.flags
		}
	}
	if remaining != 0 {
		parts = append(parts, fmt.Sprintf("%#x", uint32(remaining)))
	}
	return strings.Join(parts, " | ")
}

// ParseFlags parses the String form. Names are case-insensitive and hex literals
// such as 0x2000000 are accepted for bits without a name.
func ParseFlags(s string) (Flags, error) {
	var f Flags
	if strings.TrimSpace(s) == "" {
		return f, nil
	}

	for _, tok := range strings.Split(s, "|") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			return 0, fmt.Errorf("%w: empty flag in %q", ErrInvalidFlag, s)
		}

		if hex, ok := strings.CutPrefix(strings.ToLower(tok), "0x"); ok {
			bits, err := strconv.ParseUint(hex, 16, 32)
			if err != nil {
				return 0, fmt.Errorf("%w: %q", ErrInvalidFlag, tok)
			}
			f |= Flags(bits)
			continue
		}

		named, ok := lookupFlag(tok)
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrInvalidFlag, tok)
		}
		f |= named
	}
	return f, nil
}

func lookupFlag(name string) (Flags, bool) {
	name = strings.ToUpper(name)
	for _, nf := range flagNames {
		if nf.name == name {
			return nf.flags, true
		}
	}
	return 0, false
}

// MarshalText implements encoding.TextMarshaler
func (f Flags) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (f *Flags) UnmarshalText(text []byte) error {
	parsed, err := ParseFlags(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
