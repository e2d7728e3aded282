package memory

// defaultRules is the database loaded by Load with no paths. Ordered by
// specificity, most specific first.
var defaultRules = []Rule{
	// Images
	{Offset: 0, Magic: []byte{0xFF, 0xD8, 0xFF}, Description: "JPEG image data", MIME: "image/jpeg", Ext: "jpeg/jpg/jpe/jfif"},
	{Offset: 0, Magic: []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, Description: "PNG image data", MIME: "image/png", Ext: "png"},
	{Offset: 0, Magic: []byte("GIF87a"), Description: "GIF image data, version 87a", MIME: "image/gif", Ext: "gif"},
	{Offset: 0, Magic: []byte("GIF89a"), Description: "GIF image data, version 89a", MIME: "image/gif", Ext: "gif"},
	{Offset: 8, Magic: []byte("WEBP"), Description: "RIFF (little-endian) data, Web/P image", MIME: "image/webp", Ext: "webp"},
	{Offset: 0, Magic: []byte{0x49, 0x49, 0x2A, 0x00}, Description: "TIFF image data, little-endian", MIME: "image/tiff", Ext: "tif/tiff"},
	{Offset: 0, Magic: []byte{0x4D, 0x4D, 0x00, 0x2A}, Description: "TIFF image data, big-endian", MIME: "image/tiff", Ext: "tif/tiff"},
	{Offset: 4, Magic: []byte("ftypheic"), Description: "ISO Media, HEIF Image HEVC Main or Main Still Picture Profile", MIME: "image/heic", Ext: "heic"},
	{Offset: 4, Magic: []byte("ftypavif"), Description: "ISO Media, AVIF Image", MIME: "image/avif", Ext: "avif"},

	// Documents
	{Offset: 0, Magic: []byte("%PDF-"), Description: "PDF document", MIME: "application/pdf", Ext: "pdf"},

	// Archives
	{Offset: 0, Magic: []byte{0x50, 0x4B, 0x03, 0x04}, Description: "Zip archive data", MIME: "application/zip", Ext: "zip"},
	{Offset: 0, Magic: []byte{0x50, 0x4B, 0x05, 0x06}, Description: "Zip archive data (empty)", MIME: "application/zip", Ext: "zip"},
	{Offset: 0, Magic: []byte{0x1F, 0x8B}, Description: "gzip compressed data", MIME: "application/gzip", Ext: "gz/tgz/tpz/zabw/svgz"},
	{Offset: 257, Magic: []byte("ustar"), Description: "POSIX tar archive", MIME: "application/x-tar", Ext: "tar/gtar"},
	{Offset: 0, Magic: []byte("Rar!\x1a\x07\x00"), Description: "RAR archive data, v4", MIME: "application/x-rar", Ext: "rar/cbr"},
	{Offset: 0, Magic: []byte("Rar!\x1a\x07\x01\x00"), Description: "RAR archive data, v5", MIME: "application/x-rar", Ext: "rar/cbr"},
	{Offset: 0, Magic: []byte{'7', 'z', 0xBC, 0xAF, 0x27, 0x1C}, Description: "7-zip archive data", MIME: "application/x-7z-compressed", Ext: "7z/cb7"},
	{Offset: 0, Magic: []byte("BZh"), Description: "bzip2 compressed data", MIME: "application/x-bzip2", Ext: "bz2"},
	{Offset: 0, Magic: []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}, Description: "XZ compressed data", MIME: "application/x-xz", Ext: "xz"},
	{Offset: 0, Magic: []byte{0x28, 0xB5, 0x2F, 0xFD}, Description: "Zstandard compressed data", MIME: "application/zstd", Ext: "zst"},

	// Audio
	{Offset: 0, Magic: []byte("ID3"), Description: "Audio file with ID3 version 2", MIME: "audio/mpeg", Ext: "mp3"},
	{Offset: 0, Magic: []byte("fLaC"), Description: "FLAC audio bitstream data", MIME: "audio/flac", Ext: "flac"},
	{Offset: 0, Magic: []byte("OggS"), Description: "Ogg data", MIME: "audio/ogg", Ext: "ogg"},
	{Offset: 8, Magic: []byte("WAVE"), Description: "RIFF (little-endian) data, WAVE audio", MIME: "audio/x-wav", Ext: "wav"},
	{Offset: 0, Magic: []byte("MThd"), Description: "Standard MIDI data", MIME: "audio/midi", Ext: "mid/midi"},

	// Video
	{Offset: 0, Magic: []byte{0x1A, 0x45, 0xDF, 0xA3}, Description: "EBML file, WebM", MIME: "video/webm", Ext: "webm"},
	{Offset: 8, Magic: []byte("AVI "), Description: "RIFF (little-endian) data, AVI", MIME: "video/x-msvideo", Ext: "avi"},
	{Offset: 4, Magic: []byte("ftyp"), Description: "ISO Media", MIME: "video/mp4", Ext: "mp4"},
	{Offset: 0, Magic: []byte("FLV"), Description: "Macromedia Flash Video", MIME: "video/x-flv", Ext: "flv"},

	// Markup
	{Offset: 0, Magic: []byte("<?xml"), Description: "XML document text", MIME: "text/xml", Ext: "xml"},
	{Offset: 0, Magic: []byte("<!DOCTYPE html"), Description: "HTML document text", MIME: "text/html", Ext: "html/htm"},
	{Offset: 0, Magic: []byte("<html"), Description: "HTML document text", MIME: "text/html", Ext: "html/htm"},

	// Executables
	{Offset: 0, Magic: []byte{0x7F, 'E', 'L', 'F'}, Description: "ELF", MIME: "application/x-executable", Ext: "???"},
	{Offset: 0, Magic: []byte("MZ"), Description: "MS-DOS executable", MIME: "application/x-dosexec", Ext: "exe/com"},
	{Offset: 0, Magic: []byte{0xCF, 0xFA, 0xED, 0xFE}, Description: "Mach-O 64-bit executable", MIME: "application/x-mach-binary", Ext: "???"},

	// Fonts
	{Offset: 0, Magic: []byte("wOFF"), Description: "Web Open Font Format", MIME: "font/woff", Ext: "woff"},
	{Offset: 0, Magic: []byte("wOF2"), Description: "Web Open Font Format (Version 2)", MIME: "font/woff2", Ext: "woff2"},
	{Offset: 0, Magic: []byte("OTTO"), Description: "OpenType font data", MIME: "font/otf", Ext: "otf"},
}
