package util

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// ToValidUTF8 ensures a string is valid UTF-8.
// Invalid input is decoded as Windows-1252, the encoding spreadsheet
// programs commonly use for CSV exports; it is a superset of Latin-1 for
// printable characters, so ä, ö, ü, é and € survive.
func ToValidUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}

	decoded, err := charmap.Windows1252.NewDecoder().String(s)
	if err == nil {
		return decoded
	}

	// Latin-1 maps 1:1 to Unicode codepoints 0-255
	runes := make([]rune, len(s))
	for i := 0; i < len(s); i++ {
		runes[i] = rune(s[i])
	}
	return string(runes)
}

// ToValidUTF8Bytes ensures bytes represent valid UTF-8.
func ToValidUTF8Bytes(b []byte) []byte {
	if utf8.Valid(b) {
		return b
	}
	return []byte(ToValidUTF8(string(b)))
}

// StripBOM removes a leading UTF-8 byte order mark.
func StripBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}
