// Package ircparse tokenizes raw protocol lines into an origin, a command
// and positional parameters, keeping the byte offset of every token so that
// free-form text can be recovered verbatim from the original line.
package ircparse

import (
	"strconv"
	"strings"
)

// MaxParams is the largest number of parameters a line can carry. Anything
// past the last slot is folded into it verbatim.
const MaxParams = 15

// Token is one whitespace-delimited word of a line and where it starts
type Token struct {
	Text   string
	Offset int
}

// Line is the parsed form of a single inbound protocol line
type Line struct {
	Raw           string
	Origin        string // full origin without the leading ':'
	OriginNick    string
	OriginAddress string // user@host part, empty for server origins
	Command       string
	Params        []Token
	Trailing      bool // last param was introduced by ':'
}

// Parse splits a line (CR/LF already stripped) into its parts.
// An empty line yields a zero Line and no error. Parse never panics; a line
// consisting of only an origin returns a *ParseError.
func Parse(raw string) (Line, error) {
	line := Line{Raw: raw}

	i := skipSpace(raw, 0)
	if i >= len(raw) {
		return line, nil
	}

	end := tokenEnd(raw, i)
	if raw[i] == ':' {
		line.Origin = raw[i+1 : end]
		line.OriginNick, line.OriginAddress = splitOrigin(line.Origin)

		i = skipSpace(raw, end)
		if i >= len(raw) {
			return line, &ParseError{Kind: ErrKindMissingCommand, Line: raw}
		}
		end = tokenEnd(raw, i)
	}
	line.Command = raw[i:end]

	i = skipSpace(raw, end)
	for i < len(raw) {
		if raw[i] == ':' {
			line.Params = append(line.Params, Token{Text: raw[i+1:], Offset: i + 1})
			line.Trailing = true
			break
		}
		if len(line.Params) == MaxParams-1 {
			line.Params = append(line.Params, Token{Text: strings.TrimRight(raw[i:], " \t"), Offset: i})
			break
		}
		end = tokenEnd(raw, i)
		line.Params = append(line.Params, Token{Text: raw[i:end], Offset: i})
		i = skipSpace(raw, end)
	}

	return line, nil
}

// IsEmpty reports whether the line carried no command at all
func (l Line) IsEmpty() bool {
	return l.Command == ""
}

// Numeric returns the reply code when the command is a three-digit numeric
func (l Line) Numeric() (int, bool) {
	if len(l.Command) != 3 {
		return 0, false
	}
	for i := 0; i < 3; i++ {
		if l.Command[i] < '0' || l.Command[i] > '9' {
			return 0, false
		}
	}
	code, err := strconv.Atoi(l.Command)
	if err != nil {
		return 0, false
	}
	return code, true
}

// Args returns the text of every parameter, trailing included
func (l Line) Args() []string {
	args := make([]string, len(l.Params))
	for i, p := range l.Params {
		args[i] = p.Text
	}
	return args
}

// Positional returns the parameters that precede the trailing one
func (l Line) Positional() []string {
	args := l.Args()
	if l.Trailing {
		return args[:len(args)-1]
	}
	return args
}

// TrailingText returns the ':'-introduced parameter, if the line has one
func (l Line) TrailingText() (string, bool) {
	if !l.Trailing {
		return "", false
	}
	return l.Params[len(l.Params)-1].Text, true
}

// Require checks that the line has at least n parameters
func (l Line) Require(n int) error {
	if len(l.Params) < n {
		return &ParseError{Kind: ErrKindMissingParam, Line: l.Raw, Command: l.Command, Index: n - 1}
	}
	return nil
}

// Param returns the text of parameter i
func (l Line) Param(i int) (string, error) {
	if i < 0 || i >= len(l.Params) {
		return "", &ParseError{Kind: ErrKindMissingParam, Line: l.Raw, Command: l.Command, Index: i}
	}
	return l.Params[i].Text, nil
}

// Rest returns everything from parameter i to the end of the raw line,
// spaces included. A leading ':' is not part of the result.
func (l Line) Rest(i int) (string, error) {
	if i < 0 || i >= len(l.Params) {
		return "", &ParseError{Kind: ErrKindMissingParam, Line: l.Raw, Command: l.Command, Index: i}
	}
	return l.Raw[l.Params[i].Offset:], nil
}

// Int parses parameter i as a decimal number
func (l Line) Int(i int) (int, error) {
	s, err := l.Param(i)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &ParseError{Kind: ErrKindInvalidNumber, Line: l.Raw, Command: l.Command, Index: i, Value: s}
	}
	return n, nil
}

func splitOrigin(origin string) (nick, address string) {
	if idx := strings.IndexByte(origin, '!'); idx >= 0 {
		return origin[:idx], origin[idx+1:]
	}
	return origin, ""
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t'
}

func skipSpace(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

func tokenEnd(s string, i int) int {
	for i < len(s) && !isSpace(s[i]) {
		i++
	}
	return i
}
