package ircformat

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestSplit_PlainText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected []string
	}{
		{
			name:     "short message",
			input:    "Hello world",
			max:      50,
			expected: []string{"Hello world"},
		},
		{
			name:     "exactly at limit",
			input:    strings.Repeat("a", 50),
			max:      50,
			expected: []string{strings.Repeat("a", 50)},
		},
		{
			name:     "split at word boundary",
			input:    "Hello world this is a test message that needs to be split",
			max:      50,
			expected: []string{"Hello world this is a test message that needs to", "be split"},
		},
		{
			name:     "split after punctuation",
			input:    "first,second,third",
			max:      10,
			expected: []string{"first,", "second,", "third"},
		},
		{
			name:     "long word cut at limit",
			input:    strings.Repeat("x", 25),
			max:      10,
			expected: []string{strings.Repeat("x", 10), strings.Repeat("x", 10), strings.Repeat("x", 5)},
		},
		{
			name:     "no limit",
			input:    "anything at all",
			max:      0,
			expected: []string{"anything at all"},
		},
		{
			name:     "empty",
			input:    "",
			max:      10,
			expected: []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Split(tt.input, tt.max)
			if len(result) != len(tt.expected) {
				t.Fatalf("Split() returned %d parts %q, want %d", len(result), result, len(tt.expected))
			}
			for i, part := range result {
				if part != tt.expected[i] {
					t.Errorf("Split()[%d] = %q, want %q", i, part, tt.expected[i])
				}
			}
		})
	}
}

func TestSplit_CarriesBold(t *testing.T) {
	input := "\x02This is bold text that is very long and needs splitting\x02"
	result := Split(input, 30)

	if len(result) < 2 {
		t.Fatalf("Split() = %q, want several parts", result)
	}
	for i, part := range result {
		if len(part) > 30 {
			t.Errorf("part %d is %d bytes", i, len(part))
		}
		if part[0] != Bold {
			t.Errorf("part %d = %q, want it to start bold", i, part)
		}
	}
}

func TestSplit_CarriesColor(t *testing.T) {
	input := strings.Repeat("a", 8) + "\x0304,12bcdefgh"
	result := Split(input, 10)

	expected := []string{"aaaaaaaa", "\x0304,12bcde", "\x0304,12fgh"}
	if len(result) != len(expected) {
		t.Fatalf("Split() = %q, want %q", result, expected)
	}
	for i := range expected {
		if result[i] != expected[i] {
			t.Errorf("Split()[%d] = %q, want %q", i, result[i], expected[i])
		}
	}
}

func TestSplit_ResetClearsFormatting(t *testing.T) {
	input := "\x02bold words here\x0f and then plain text continues on"
	result := Split(input, 20)

	if len(result) < 2 {
		t.Fatalf("Split() = %q, want several parts", result)
	}
	if result[0] != "\x02bold words here\x0f" {
		t.Errorf("Split()[0] = %q", result[0])
	}
	for _, part := range result[1:] {
		if HasCodes(part) {
			t.Errorf("part %q carries formatting after a reset", part)
		}
	}
}

func TestSplit_KeepsRunesWhole(t *testing.T) {
	input := strings.Repeat("é", 10)
	result := Split(input, 5)

	for _, part := range result {
		if !utf8.ValidString(part) {
			t.Errorf("part %q is not valid UTF-8", part)
		}
		if len(part) > 5 {
			t.Errorf("part %q is longer than 5 bytes", part)
		}
	}
	if joined := strings.Join(result, ""); joined != input {
		t.Errorf("parts join to %q, want %q", joined, input)
	}
}

func TestSplit_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	words := gen.SliceOf(gen.AlphaString()).Map(func(ws []string) string {
		return strings.Join(ws, " ")
	})

	properties.Property("plain parts fit and keep every word", prop.ForAll(
		func(text string, max int) bool {
			parts := Split(text, max)
			for _, part := range parts {
				if len(text) > max && len(part) > max {
					return false
				}
			}
			squash := func(s string) string { return strings.Join(strings.Fields(s), "") }
			return squash(strings.Join(parts, " ")) == squash(text)
		},
		words,
		gen.IntRange(5, 80),
	))

	properties.TestingRun(t)
}
