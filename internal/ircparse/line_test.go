package ircparse

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		nick       string
		address    string
		command    string
		positional []string
		trailing   string
		hasTrail   bool
	}{
		{
			name:       "full origin with trailing",
			input:      ":nick!user@host PRIVMSG #test :hello there",
			nick:       "nick",
			address:    "user@host",
			command:    "PRIVMSG",
			positional: []string{"#test"},
			trailing:   "hello there",
			hasTrail:   true,
		},
		{
			name:       "no origin",
			input:      "PING :irc.example.net",
			command:    "PING",
			positional: []string{},
			trailing:   "irc.example.net",
			hasTrail:   true,
		},
		{
			name:       "server origin numeric",
			input:      ":irc.example.net 001 me :Welcome to the network",
			nick:       "irc.example.net",
			command:    "001",
			positional: []string{"me"},
			trailing:   "Welcome to the network",
			hasTrail:   true,
		},
		{
			name:       "no trailing",
			input:      ":a!b@c MODE #chan +o other",
			nick:       "a",
			address:    "b@c",
			command:    "MODE",
			positional: []string{"#chan", "+o", "other"},
		},
		{
			name:       "tabs and repeated spaces",
			input:      "JOIN \t  #room",
			command:    "JOIN",
			positional: []string{"#room"},
		},
		{
			name:       "trailing keeps inner spacing",
			input:      ":x PRIVMSG me :  two  spaces ",
			nick:       "x",
			command:    "PRIVMSG",
			positional: []string{"me"},
			trailing:   "  two  spaces ",
			hasTrail:   true,
		},
		{
			name:       "empty trailing",
			input:      "TOPIC #c :",
			command:    "TOPIC",
			positional: []string{"#c"},
			trailing:   "",
			hasTrail:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tt.input, err)
			}
			if line.OriginNick != tt.nick {
				t.Errorf("OriginNick = %q, want %q", line.OriginNick, tt.nick)
			}
			if line.OriginAddress != tt.address {
				t.Errorf("OriginAddress = %q, want %q", line.OriginAddress, tt.address)
			}
			if line.Command != tt.command {
				t.Errorf("Command = %q, want %q", line.Command, tt.command)
			}
			if got := line.Positional(); !reflect.DeepEqual(got, tt.positional) {
				t.Errorf("Positional() = %q, want %q", got, tt.positional)
			}
			trailing, ok := line.TrailingText()
			if ok != tt.hasTrail || trailing != tt.trailing {
				t.Errorf("TrailingText() = %q, %v, want %q, %v", trailing, ok, tt.trailing, tt.hasTrail)
			}
		})
	}
}

func TestParse_EmptyLine(t *testing.T) {
	for _, input := range []string{"", "   ", "\t"} {
		line, err := Parse(input)
		if err != nil {
			t.Errorf("Parse(%q) returned error: %v", input, err)
		}
		if !line.IsEmpty() {
			t.Errorf("Parse(%q) command = %q, want empty", input, line.Command)
		}
	}
}

func TestParse_OriginWithoutCommand(t *testing.T) {
	_, err := Parse(":nick!user@host")

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if perr.Kind != ErrKindMissingCommand {
		t.Errorf("Kind = %v, want ErrKindMissingCommand", perr.Kind)
	}
}

func TestParse_FoldsExtraParams(t *testing.T) {
	words := make([]string, 20)
	for i := range words {
		words[i] = "p"
	}
	input := "CMD " + strings.Join(words, " ")

	line, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(line.Params) != MaxParams {
		t.Fatalf("len(Params) = %d, want %d", len(line.Params), MaxParams)
	}
	last := line.Params[MaxParams-1].Text
	if want := strings.Join(words[MaxParams-1:], " "); last != want {
		t.Errorf("last param = %q, want %q", last, want)
	}
}

func TestLine_Rest(t *testing.T) {
	line, err := Parse(":n!u@h PRIVMSG #c hello big   world")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	rest, err := line.Rest(1)
	if err != nil {
		t.Fatalf("Rest(1) returned error: %v", err)
	}
	if rest != "hello big   world" {
		t.Errorf("Rest(1) = %q", rest)
	}

	if _, err := line.Rest(9); err == nil {
		t.Error("Rest(9) should fail on a short line")
	}
}

func TestLine_RequireAndParam(t *testing.T) {
	line, _ := Parse("KICK #chan")

	if err := line.Require(1); err != nil {
		t.Errorf("Require(1) = %v, want nil", err)
	}

	err := line.Require(2)
	var perr *ParseError
	if !errors.As(err, &perr) || perr.Kind != ErrKindMissingParam {
		t.Fatalf("Require(2) = %v, want missing param error", err)
	}
	if perr.Command != "KICK" {
		t.Errorf("Command = %q, want KICK", perr.Command)
	}

	if _, err := line.Param(1); err == nil {
		t.Error("Param(1) should fail")
	}
}

func TestLine_Numeric(t *testing.T) {
	tests := []struct {
		command string
		code    int
		ok      bool
	}{
		{"001", 1, true},
		{"433", 433, true},
		{"PRIVMSG", 0, false},
		{"12", 0, false},
		{"4a3", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			line := Line{Command: tt.command}
			code, ok := line.Numeric()
			if code != tt.code || ok != tt.ok {
				t.Errorf("Numeric() = %d, %v, want %d, %v", code, ok, tt.code, tt.ok)
			}
		})
	}
}

func TestLine_Int(t *testing.T) {
	line, _ := Parse(":srv 322 me #go 42 :topic")

	n, err := line.Int(2)
	if err != nil || n != 42 {
		t.Errorf("Int(2) = %d, %v, want 42", n, err)
	}

	_, err = line.Int(1)
	var perr *ParseError
	if !errors.As(err, &perr) || perr.Kind != ErrKindInvalidNumber {
		t.Errorf("Int(1) = %v, want invalid number error", err)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{"utf8 passthrough", []byte("héllo\r\n"), "héllo"},
		{"latin1 fallback", []byte{'c', 'a', 'f', 0xe9, '\r', '\n'}, "café"},
		{"bare newline", []byte("PING :x\n"), "PING :x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decode(tt.input); got != tt.expected {
				t.Errorf("Decode(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

type wireLine struct {
	nick       string
	command    string
	positional []string
	trailing   string
}

func (w wireLine) String() string {
	parts := []string{":" + w.nick + "!user@host", w.command}
	parts = append(parts, w.positional...)
	return strings.Join(parts, " ") + " :" + w.trailing
}

func genWireLine() gopter.Gen {
	word := gen.Identifier()
	return gopter.CombineGens(
		word,
		gen.OneConstOf("PRIVMSG", "NOTICE", "KICK", "MODE", "TOPIC"),
		gen.SliceOfN(3, word),
		gen.SliceOf(word).Map(func(ws []string) string { return strings.Join(ws, " ") }),
	).Map(func(values []interface{}) wireLine {
		return wireLine{
			nick:       values[0].(string),
			command:    values[1].(string),
			positional: values[2].([]string),
			trailing:   values[3].(string),
		}
	})
}

func TestParse_RoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("origin, params and trailing are recovered", prop.ForAll(
		func(w wireLine) bool {
			line, err := Parse(w.String())
			if err != nil {
				return false
			}
			trailing, ok := line.TrailingText()
			return line.OriginNick == w.nick &&
				line.Command == w.command &&
				reflect.DeepEqual(line.Positional(), w.positional) &&
				ok && trailing == w.trailing
		},
		genWireLine(),
	))

	properties.Property("never panics on arbitrary input", prop.ForAll(
		func(s string) bool {
			_, _ = Parse(s)
			return true
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
