package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripAccents(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "portuguese title",
			input:    "Memórias Póstumas de Brás Cubas",
			expected: "Memorias Postumas de Bras Cubas",
		},
		{
			name:     "cedilla",
			input:    "Coração",
			expected: "Coracao",
		},
		{
			name:     "plain ascii untouched",
			input:    "The Shining",
			expected: "The Shining",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripAccents(tt.input))
		})
	}
}

func TestCleanQuery(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "z-library tag",
			input:    "The Hobbit (z-library)",
			expected: "The Hobbit",
		},
		{
			name:     "bracketed group and extension",
			input:    "Dune [retail].epub",
			expected: "Dune",
		},
		{
			name:     "underscores to spaces",
			input:    "the_name_of_the_wind",
			expected: "the name of the wind",
		},
		{
			name:     "glued dash is a separator",
			input:    "blood-meridian",
			expected: "blood meridian",
		},
		{
			name:     "site prefix",
			input:    "libgen The Stand",
			expected: "The Stand",
		},
		{
			name:     "url removed",
			input:    "1984 www.baixar.com",
			expected: "1984",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanQuery(tt.input))
		})
	}
}

func TestCleanQueryIdempotent(t *testing.T) {
	inputs := []string{
		"The Hobbit (z-library)",
		"the_name_of_the_wind",
		"Conta-Comigo Stephen.King",
		"  spaced   out  ",
	}
	for _, in := range inputs {
		once := CleanQuery(in)
		assert.Equal(t, once, CleanQuery(once), "input %q", in)
	}
}

func TestCleanFilenameQuery(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "isolated numbers dropped",
			input:    "123 The Road 456",
			expected: "The Road",
		},
		{
			name:     "untitled noise dropped",
			input:    "untitled draft",
			expected: "draft",
		},
		{
			name:     "bracketed index",
			input:    "[3] It - Stephen King",
			expected: "It - Stephen King",
		},
		{
			name:     "too short after cleaning falls back",
			input:    "it_42",
			expected: "it 42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanFilenameQuery(tt.input))
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{
			name:     "illegal characters become hyphens",
			input:    `What? If: "Maybe"`,
			maxLen:   100,
			expected: "What- If- -Maybe-",
		},
		{
			name:     "accents preserved",
			input:    "José Saramago - Ensaio sobre a Cegueira",
			maxLen:   100,
			expected: "José Saramago - Ensaio sobre a Cegueira",
		},
		{
			name:     "trailing dots trimmed",
			input:    "The End...",
			maxLen:   100,
			expected: "The End",
		},
		{
			name:     "truncated to byte budget",
			input:    "abcdefghij",
			maxLen:   4,
			expected: "abcd",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input, tt.maxLen))
		})
	}
}

func TestSanitizeFilenameIdempotent(t *testing.T) {
	inputs := []string{
		`a/b\c`,
		"José - Memórias (1881)",
		"name..",
	}
	for _, in := range inputs {
		once := SanitizeFilename(in, 180)
		assert.Equal(t, once, SanitizeFilename(once, 180), "input %q", in)
	}
}

func TestCleanSpecialChars(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{
			name:     "punctuation dropped",
			in:       "The Shining!?",
			expected: "The Shining",
		},
		{
			name:     "keeps hyphens parens and dots",
			in:       "J.K. Rowling - Quidditch (1st ed.)",
			expected: "J.K. Rowling - Quidditch (1st ed.)",
		},
		{
			name:     "accented letters survive",
			in:       "Memórias Póstumas*",
			expected: "Memórias Póstumas",
		},
		{
			name:     "collapses leftover whitespace",
			in:       "a  @  b",
			expected: "a b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanSpecialChars(tt.in))
		})
	}
}

func TestSmartTitleCase(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{
			name:     "all caps recased",
			in:       "THE SHINING",
			expected: "The Shining",
		},
		{
			name:     "all lowercase recased",
			in:       "the shining",
			expected: "The Shining",
		},
		{
			name:     "mixed case untouched",
			in:       "The Road to McCarthy",
			expected: "The Road to McCarthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SmartTitleCase(tt.in))
		})
	}
}

func TestQuarantineName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "extension preserved",
			input:    "strange book (z-library).pdf",
			expected: "strange book.pdf",
		},
		{
			name:     "year and brackets stripped",
			input:    "scan_2019_[ocr].epub",
			expected: "scan.epub",
		},
		{
			name:     "short result falls back to original",
			input:    "x (1999).txt",
			expected: "x 1999.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, QuarantineName(tt.input))
		})
	}
}
