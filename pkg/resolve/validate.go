package resolve

import (
	"strings"

	"github.com/shelfmark/shelfmark/pkg/mediafile"
)

// Placeholder tokens that mark machine-generated or scrubbed metadata.
// Matching is case-insensitive substring; "Document1" and "Microsoft
// Word - resume" both fail on purpose, even though that also rejects
// the occasional legitimate title containing one of these words.
var (
	titleDenylist  = []string{"unknown", "untitled", "document", "file", "microsoft", "word"}
	authorDenylist = []string{"unknown", "anonymous", "author", "user", "admin", "system"}
)

// ValidateCandidate decides whether a metadata record is trustworthy
// enough to rename a user's file with.
func ValidateCandidate(meta *mediafile.ParsedMetadata) bool {
	if meta == nil {
		return false
	}

	title := strings.TrimSpace(meta.Title)
	if len(title) < 2 {
		return false
	}
	if containsAny(title, titleDenylist) {
		return false
	}

	if len(meta.Authors) == 0 {
		return false
	}
	author := strings.TrimSpace(meta.Authors[0])
	if len(author) < 2 {
		return false
	}
	if containsAny(author, authorDenylist) {
		return false
	}
	return true
}

func containsAny(s string, deny []string) bool {
	s = strings.ToLower(s)
	for _, d := range deny {
		if strings.Contains(s, d) {
			return true
		}
	}
	return false
}
