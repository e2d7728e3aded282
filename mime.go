package magickit

import (
	"mime"
	"strings"
)

// ParseMIME splits a result produced with FlagMIME, such as
// "text/plain; charset=us-ascii", into media type and charset. A result produced
// with FlagMIMEType alone has an empty charset. Results that are not media types
// yield two empty strings.
func ParseMIME(result string) (mediaType, charset string) {
	// FlagContinue joins several results; the first one wins
	if i := strings.Index(result, "\n- "); i >= 0 {
		result = result[:i]
	}

	mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(result))
	if err != nil || !strings.Contains(mediaType, "/") {
		return "", ""
	}
	return mediaType, params["charset"]
}

// IsExecutableMIME returns true if the MIME type indicates an executable
func IsExecutableMIME(mediaType string) bool {
	executableMIMEs := map[string]bool{
		"application/x-msdownload":     true,
		"application/x-msdos-program":  true,
		"application/x-executable":     true,
		"application/x-mach-binary":    true,
		"application/x-sharedlib":      true,
		"application/x-pie-executable": true,
		"application/x-dosexec":        true,
	}
	return executableMIMEs[mediaType]
}

// MIMECategory returns a human-readable category for a MIME type
func MIMECategory(mediaType string) string {
	switch {
	case mediaType == "":
		return ""
	case strings.HasPrefix(mediaType, "image/"):
		return "image"
	case strings.HasPrefix(mediaType, "video/"):
		return "video"
	case strings.HasPrefix(mediaType, "audio/"):
		return "audio"
	case strings.HasPrefix(mediaType, "text/"):
		return "text"
	case strings.HasPrefix(mediaType, "font/"):
		return "font"
	case strings.HasPrefix(mediaType, "inode/"):
		return "inode"
	case strings.Contains(mediaType, "zip") || strings.Contains(mediaType, "tar") ||
		strings.Contains(mediaType, "rar") || strings.Contains(mediaType, "7z") ||
		strings.Contains(mediaType, "gzip") || strings.Contains(mediaType, "bzip") ||
		strings.Contains(mediaType, "xz") || strings.Contains(mediaType, "zstd"):
		return "archive"
	case strings.Contains(mediaType, "document") || mediaType == "application/pdf" ||
		strings.Contains(mediaType, "msword") || strings.Contains(mediaType, "excel") ||
		strings.Contains(mediaType, "powerpoint"):
		return "document"
	case IsExecutableMIME(mediaType):
		return "executable"
	default:
		return "other"
	}
}
