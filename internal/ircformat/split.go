package ircformat

import (
	"strings"
	"unicode/utf8"
)

// Split breaks text into parts of at most max bytes. It cuts at the last
// space that fits, falling back to punctuation and then to a rune boundary,
// never inside a color code. Formatting active at a cut is re-applied at the
// start of the next part.
func Split(text string, max int) []string {
	if max <= 0 || len(text) <= max {
		return []string{text}
	}

	var parts []string
	var active state
	rest := text
	for rest != "" {
		prefix := active.prefix()
		avail := max - len(prefix)
		if avail <= 0 {
			prefix, avail = "", max
		}

		if len(rest) <= avail {
			parts = append(parts, prefix+rest)
			break
		}

		cut := splitPoint(rest, avail)
		if part := strings.TrimRight(rest[:cut], " \t"); part != "" {
			parts = append(parts, prefix+part)
		}
		active = active.advance(rest[:cut])
		rest = strings.TrimLeft(rest[cut:], " \t")
	}
	return parts
}

// splitPoint picks where to cut text so that text[:n] fits in limit
func splitPoint(text string, limit int) int {
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	if start := codeStart(text, cut); start >= 0 {
		cut = start
	}

	if space := strings.LastIndexAny(text[:cut], " \t"); space > 0 {
		return space
	}
	for i := cut - 1; i > 0; i-- {
		switch text[i] {
		case '.', ',', ';', ':', '!', '?':
			if text[i] == ',' && isColorComma(text, i) {
				continue
			}
			return i + 1
		}
	}

	if cut > 0 {
		return cut
	}
	// A code at the very start that does not fit; cut through it
	_, size := utf8.DecodeRuneInString(text)
	return size
}

// codeStart returns where the color code that pos falls inside begins, or -1
func codeStart(text string, pos int) int {
	for i := pos - 1; i >= 0 && i >= pos-6; i-- {
		c := text[i]
		if c == Color {
			if _, _, end := colorArgs(text, i+1); pos < end {
				return i
			}
			break
		}
		if c != ',' && (c < '0' || c > '9') {
			break
		}
	}
	for i := pos - 1; i >= 0 && i >= pos-6; i-- {
		if text[i] == HexColor {
			return i
		}
	}
	return -1
}

// isColorComma reports whether the comma at pos separates a color code's
// foreground and background
func isColorComma(text string, pos int) bool {
	i := pos - 1
	n := 0
	for i >= 0 && n < 2 && text[i] >= '0' && text[i] <= '9' {
		i--
		n++
	}
	return n > 0 && i >= 0 && text[i] == Color
}
