package ircformat

import (
	"testing"
)

func TestStrip(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain", input: "hello world", expected: "hello world"},
		{name: "empty", input: "", expected: ""},
		{name: "bold", input: "\x02hello\x02", expected: "hello"},
		{name: "italic and underline", input: "\x1Dhi\x1D \x1Fthere\x1F", expected: "hi there"},
		{name: "foreground color", input: "\x0304red\x03", expected: "red"},
		{name: "foreground and background", input: "\x034,12both\x03 done", expected: "both done"},
		{name: "color digits kept after two", input: "\x03041234", expected: "1234"},
		{name: "bare comma is text", input: "\x03,5", expected: ",5"},
		{name: "hex color", input: "\x04FF0000red\x04", expected: "red"},
		{name: "reset", input: "\x02\x1Dmixed\x0F plain", expected: "mixed plain"},
		{name: "reverse strike mono", input: "\x16a\x1Eb\x11c", expected: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := Strip(tt.input); result != tt.expected {
				t.Errorf("Strip(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestHasCodes(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"plain text", false},
		{"", false},
		{"\x02bold", true},
		{"color \x0303green", true},
		{"reset\x0F", true},
	}

	for _, tt := range tests {
		if result := HasCodes(tt.input); result != tt.expected {
			t.Errorf("HasCodes(%q) = %v, want %v", tt.input, result, tt.expected)
		}
	}
}

func TestStateAdvance(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "nothing", input: "plain", expected: ""},
		{name: "bold on", input: "\x02x", expected: "\x02"},
		{name: "bold toggled off", input: "\x02x\x02", expected: ""},
		{name: "color with background", input: "\x0304,01x", expected: "\x0304,01"},
		{name: "color reset", input: "\x0304x\x03", expected: ""},
		{name: "color then bold", input: "\x02\x0312x", expected: "\x0312\x02"},
		{name: "reset clears all", input: "\x02\x1D\x0305x\x0F", expected: ""},
		{name: "foreground change keeps background", input: "\x0301,02a\x0303b", expected: "\x0303,02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := (state{}).advance(tt.input).prefix(); result != tt.expected {
				t.Errorf("advance(%q).prefix() = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
