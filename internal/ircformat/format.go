// Package ircformat handles the in-band formatting codes chat text may carry:
// stripping them for terminal display and keeping them intact when long
// text is split across several lines.
package ircformat

import (
	"regexp"
	"strings"
)

// Formatting control characters
const (
	Bold          = '\x02'
	Color         = '\x03'
	HexColor      = '\x04'
	Reset         = '\x0F'
	Monospace     = '\x11'
	Reverse       = '\x16'
	Italic        = '\x1D'
	Strikethrough = '\x1E'
	Underline     = '\x1F'
)

var (
	colorPattern    = regexp.MustCompile("\x03(?:\\d{1,2}(?:,\\d{1,2})?)?")
	hexColorPattern = regexp.MustCompile("\x04(?:[0-9A-Fa-f]{6}(?:,[0-9A-Fa-f]{6})?)?")
	toggles         = strings.NewReplacer(
		string(Bold), "",
		string(Reset), "",
		string(Monospace), "",
		string(Reverse), "",
		string(Italic), "",
		string(Strikethrough), "",
		string(Underline), "",
	)
)

// Strip removes every formatting code from text
func Strip(text string) string {
	if text == "" {
		return text
	}
	text = colorPattern.ReplaceAllString(text, "")
	text = hexColorPattern.ReplaceAllString(text, "")
	return toggles.Replace(text)
}

// HasCodes reports whether text carries any formatting code
func HasCodes(text string) bool {
	return strings.ContainsAny(text, "\x02\x03\x04\x0F\x11\x16\x1D\x1E\x1F")
}

// state is the formatting in effect at some point of a text
type state struct {
	bold          bool
	italic        bool
	underline     bool
	strikethrough bool
	monospace     bool
	reverse       bool
	fg            string
	bg            string
}

// advance applies the codes in text to s
func (s state) advance(text string) state {
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case Bold:
			s.bold = !s.bold
		case Italic:
			s.italic = !s.italic
		case Underline:
			s.underline = !s.underline
		case Strikethrough:
			s.strikethrough = !s.strikethrough
		case Monospace:
			s.monospace = !s.monospace
		case Reverse:
			s.reverse = !s.reverse
		case Reset:
			s = state{}
		case Color:
			fg, bg, end := colorArgs(text, i+1)
			if fg == "" && bg == "" {
				s.fg, s.bg = "", ""
			}
			if fg != "" {
				s.fg = fg
			}
			if bg != "" {
				s.bg = bg
			}
			i = end - 1
		case HexColor:
			if i+6 < len(text) {
				i += 6
			}
		}
	}
	return s
}

// prefix is the codes that re-establish s at the start of a new line
func (s state) prefix() string {
	var sb strings.Builder
	if s.fg != "" {
		sb.WriteByte(Color)
		sb.WriteString(s.fg)
		if s.bg != "" {
			sb.WriteByte(',')
			sb.WriteString(s.bg)
		}
	}
	for _, on := range []struct {
		set  bool
		code byte
	}{
		{s.bold, Bold},
		{s.italic, Italic},
		{s.underline, Underline},
		{s.strikethrough, Strikethrough},
		{s.monospace, Monospace},
		{s.reverse, Reverse},
	} {
		if on.set {
			sb.WriteByte(on.code)
		}
	}
	return sb.String()
}

// colorArgs reads the "fg[,bg]" digits of a color code starting at pos
func colorArgs(text string, pos int) (fg, bg string, end int) {
	fg, pos = digits(text, pos)
	if fg != "" && pos < len(text) && text[pos] == ',' {
		if b, next := digits(text, pos+1); b != "" {
			bg, pos = b, next
		}
	}
	return fg, bg, pos
}

// digits reads at most two decimal digits at pos
func digits(text string, pos int) (string, int) {
	start := pos
	for pos < len(text) && pos-start < 2 && text[pos] >= '0' && text[pos] <= '9' {
		pos++
	}
	return text[start:pos], pos
}
