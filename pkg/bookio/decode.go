package bookio

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode returns data as text. Valid UTF-8 is used as is, minus a leading
// byte order mark; anything else is read as ISO-8859-1, which maps every
// byte to a rune, so decoding never fails.
func Decode(data []byte) string {
	if utf8.Valid(data) {
		return string(bytes.TrimPrefix(data, utf8BOM))
	}

	s, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		// unreachable for ISO-8859-1, keep the bytes rather than lose them
		return string(data)
	}

	return string(s)
}

// LooksNetscape reports whether data starts with the Netscape bookmark
// doctype, ignoring leading whitespace and case.
func LooksNetscape(data []byte) bool {
	const doctype = "<!doctype netscape-bookmark-file-1>"

	data = bytes.TrimPrefix(data, utf8BOM)
	data = bytes.TrimLeft(data, " \t\r\n")
	if len(data) < len(doctype) {
		return false
	}

	return bytes.EqualFold(data[:len(doctype)], []byte(doctype))
}
