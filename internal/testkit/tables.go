// Package testkit holds case-table generators shared by planner tests.
package testkit

import (
	"fmt"

	"strswitch/internal/cases"
)

// Identity builds a table mapping every key to a target spelled like the key,
// with "default" as the default target.
func Identity(keys ...string) *cases.Table {
	t := &cases.Table{Default: "default"}
	for _, k := range keys {
		t.Add(k, cases.Target(k))
	}
	return t
}

// Ladder returns the growing prefixes "a", "ab", ... of length 1..n.
func Ladder(n int) []string {
	out := make([]string, n)
	for i := range n {
		for j := 0; j <= i; j++ {
			out[i] += string(rune('a' + j%26))
		}
	}
	return out
}

// Spread returns n same-length keys whose first code units lie far apart,
// which forces range comparisons instead of a jump table.
func Spread(n int) []string {
	out := make([]string, n)
	for i := range n {
		out[i] = fmt.Sprintf("%c-key", rune(0x41+i*97))
	}
	return out
}

// LengthHash is a deliberately weak hash: keys of equal length collide.
func LengthHash(units []uint16) uint32 {
	return uint32(len(units)) //nolint:gosec
}

// ConstHash collides everything.
func ConstHash([]uint16) uint32 { return 42 }

// MIMETypes returns over a hundred distinct media-type strings.
func MIMETypes() []string {
	roots := map[string][]string{
		"application": {
			"json", "xml", "pdf", "zip", "gzip", "octet-stream", "javascript", "ecmascript",
			"msword", "rtf", "x-tar", "x-7z-compressed", "x-bzip", "x-bzip2", "x-sh",
			"x-csh", "x-httpd-php", "ld+json", "vnd.ms-excel", "vnd.ms-powerpoint",
			"vnd.oasis.opendocument.text", "vnd.oasis.opendocument.spreadsheet",
			"vnd.oasis.opendocument.presentation", "vnd.visio", "vnd.amazon.ebook",
			"vnd.apple.installer+xml", "vnd.mozilla.xul+xml", "x-abiword", "x-freearc",
			"java-archive", "ogg", "xhtml+xml", "x-shockwave-flash", "wasm", "graphql",
			"x-www-form-urlencoded", "sql", "toml", "yaml", "cbor", "msgpack", "protobuf",
		},
		"audio": {
			"aac", "midi", "x-midi", "mpeg", "ogg", "opus", "wav", "webm", "3gpp", "3gpp2",
			"flac", "x-matroska", "mp4", "basic", "aiff",
		},
		"font": {"otf", "ttf", "woff", "woff2", "collection", "sfnt"},
		"image": {
			"avif", "bmp", "gif", "jpeg", "png", "svg+xml", "tiff", "vnd.microsoft.icon",
			"webp", "heic", "heif", "apng", "x-icon", "jxl", "x-portable-pixmap",
		},
		"text": {
			"css", "csv", "html", "calendar", "javascript", "plain", "xml", "markdown",
			"rtf", "tab-separated-values", "vcard", "x-python", "x-go", "x-c", "x-java",
		},
		"video": {
			"x-msvideo", "mp4", "mpeg", "ogg", "mp2t", "webm", "3gpp", "3gpp2", "quicktime",
			"x-matroska", "x-flv", "h264", "av1", "vp9",
		},
		"multipart": {"form-data", "mixed", "alternative", "related", "byteranges", "signed"},
		"message":   {"rfc822", "http", "partial", "global", "delivery-status"},
	}
	order := []string{"application", "audio", "font", "image", "text", "video", "multipart", "message"}
	var out []string
	for _, r := range order {
		for _, sub := range roots[r] {
			out = append(out, r+"/"+sub)
		}
	}
	return out
}
