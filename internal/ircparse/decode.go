package ircparse

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Decode strips the line terminator and converts the bytes to a string.
// Servers and older clients still send Latin-1; anything that is not valid
// UTF-8 is decoded as ISO-8859-1.
func Decode(b []byte) string {
	b = bytes.TrimRight(b, "\r\n")
	if utf8.Valid(b) {
		return string(b)
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "�")
	}
	return string(decoded)
}
