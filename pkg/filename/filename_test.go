package filename

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	p := New(DefaultConfig())

	tests := []struct {
		name           string
		input          string
		expectedTitle  string
		expectedAuthor string
	}{
		{
			name:           "known author with year",
			input:          "Stephen King - The Shining (1977)",
			expectedTitle:  "The Shining",
			expectedAuthor: "Stephen King",
		},
		{
			name:           "known author without year",
			input:          "Dan Brown - Angels and Demons",
			expectedTitle:  "Angels and Demons",
			expectedAuthor: "Dan Brown",
		},
		{
			name:           "known author on the right",
			input:          "The Da Vinci Code - Dan Brown",
			expectedTitle:  "The Da Vinci Code",
			expectedAuthor: "Dan Brown",
		},
		{
			name:           "by separator",
			input:          "A Game of Thrones by George Martin",
			expectedTitle:  "A Game of Thrones",
			expectedAuthor: "George Martin",
		},
		{
			name:           "colon split keeps author shaped side",
			input:          "Michael Crichton: Jurassic Park",
			expectedTitle:  "Jurassic Park",
			expectedAuthor: "Michael Crichton",
		},
		{
			name:           "no separator falls back to whole title",
			input:          "Brave New World",
			expectedTitle:  "Brave New World",
			expectedAuthor: "",
		},
		{
			name:           "dash split ambiguous keeps first as title",
			input:          "one thing - another thing",
			expectedTitle:  "one thing",
			expectedAuthor: "another thing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, author := p.Parse(tt.input)
			assert.Equal(t, tt.expectedTitle, title)
			assert.Equal(t, tt.expectedAuthor, author)
		})
	}
}

func TestLooksLikeAuthor(t *testing.T) {
	p := New(DefaultConfig())

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{
			name:     "known full author",
			input:    "Stephen King",
			expected: true,
		},
		{
			name:     "capitalized two word name",
			input:    "Michael Crichton",
			expected: true,
		},
		{
			name:     "all digits",
			input:    "1984",
			expected: false,
		},
		{
			name:     "stopwords only",
			input:    "the of and",
			expected: false,
		},
		{
			name:     "junk word",
			input:    "reidoebook uploads",
			expected: false,
		},
		{
			name:     "too short",
			input:    "ab",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, p.LooksLikeAuthor(tt.input))
		})
	}
}

func TestLooksLikeTitle(t *testing.T) {
	p := New(DefaultConfig())

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{
			name:     "normal title",
			input:    "The Stand",
			expected: true,
		},
		{
			name:     "single significant word",
			input:    "Duma",
			expected: false,
		},
		{
			name:     "single long word",
			input:    "Misery",
			expected: true,
		},
		{
			name:     "numeric title rejected",
			input:    "1984",
			expected: false,
		},
		{
			name:     "long all caps rejected",
			input:    "DOWNLOADED COPY",
			expected: false,
		},
		{
			name:     "too short",
			input:    "It",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, p.LooksLikeTitle(tt.input))
		})
	}
}

func TestExtractYear(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "parenthesized",
			input:    "The Shining (1977)",
			expected: "1977",
		},
		{
			name:     "bracketed",
			input:    "Dune [1965] retail",
			expected: "1965",
		},
		{
			name:     "bare word boundary",
			input:    "published 2003 edition",
			expected: "2003",
		},
		{
			name:     "future year ignored",
			input:    "roadmap (2999)",
			expected: "",
		},
		{
			name:     "no year",
			input:    "no digits here",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractYear(tt.input))
		})
	}
}
