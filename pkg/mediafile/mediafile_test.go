package mediafile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name     string
		local    ParsedMetadata
		hit      ParsedMetadata
		expected ParsedMetadata
	}{
		{
			name: "longer hit title wins",
			local: ParsedMetadata{
				Title:   "Shining",
				Authors: []string{"Stephen King"},
				Source:  SourceLocalContainer,
			},
			hit: ParsedMetadata{
				Title:   "The Shining",
				Authors: []string{"stephen king"},
				Source:  SourceExternalSearch,
				Score:   0.9,
			},
			expected: ParsedMetadata{
				Title:   "The Shining",
				Authors: []string{"Stephen King"},
				Source:  SourceExternalSearch,
				Score:   0.9,
			},
		},
		{
			name: "shorter hit title does not replace",
			local: ParsedMetadata{
				Title:  "The Name of the Wind",
				Source: SourceLocalContainer,
			},
			hit: ParsedMetadata{
				Title:  "Name of Wind",
				Source: SourceExternalSearch,
				Score:  0.5,
			},
			expected: ParsedMetadata{
				Title:  "The Name of the Wind",
				Source: SourceExternalSearch,
				Score:  0.5,
			},
		},
		{
			name: "hit fills missing fields",
			local: ParsedMetadata{
				Title:  "Dune",
				Source: SourceLocalContainer,
			},
			hit: ParsedMetadata{
				Title:         "Dune",
				Authors:       []string{"Frank Herbert"},
				PublishedDate: "1965",
				Categories:    []string{"Science Fiction"},
				Source:        SourceExternalSearch,
				Score:         0.8,
			},
			expected: ParsedMetadata{
				Title:         "Dune",
				Authors:       []string{"Frank Herbert"},
				PublishedDate: "1965",
				Categories:    []string{"Science Fiction"},
				Source:        SourceExternalSearch,
				Score:         0.8,
			},
		},
		{
			name: "authors unioned preserving local order",
			local: ParsedMetadata{
				Title:   "Good Omens",
				Authors: []string{"Terry Pratchett"},
			},
			hit: ParsedMetadata{
				Title:   "Good Omens",
				Authors: []string{"Neil Gaiman", "Terry Pratchett"},
				Score:   0.7,
			},
			expected: ParsedMetadata{
				Title:   "Good Omens",
				Authors: []string{"Terry Pratchett", "Neil Gaiman"},
				Score:   0.7,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Merge(tt.local, tt.hit))
		})
	}
}

func TestEmpty(t *testing.T) {
	var nilMeta *ParsedMetadata
	assert.True(t, nilMeta.Empty())
	assert.True(t, (&ParsedMetadata{}).Empty())
	assert.False(t, (&ParsedMetadata{Title: "x"}).Empty())
	assert.False(t, (&ParsedMetadata{Authors: []string{"a"}}).Empty())
}

func TestFirstAuthor(t *testing.T) {
	assert.Equal(t, "", (&ParsedMetadata{}).FirstAuthor())
	assert.Equal(t, "A", (&ParsedMetadata{Authors: []string{"A", "B"}}).FirstAuthor())
}
