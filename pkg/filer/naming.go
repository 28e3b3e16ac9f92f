package filer

import (
	"regexp"
	"strings"

	"github.com/shelfmark/shelfmark/pkg/mediafile"
	"github.com/shelfmark/shelfmark/pkg/sortname"
	"github.com/shelfmark/shelfmark/pkg/textutil"
)

// Sentinels used in destination paths when a field is missing.
const (
	UnknownAuthor = "Unknown Author"
	GeneralGenre  = "General"
	NoYear        = "n.d."
)

var authorDenylist = []string{"unknown", "anonymous", "author", "user", "admin", "system"}

// PrimaryAuthor picks the filing author: the first listed author in
// display order, or the sentinel when absent or denylisted.
func PrimaryAuthor(meta *mediafile.ParsedMetadata) string {
	name := strings.TrimSpace(meta.FirstAuthor())
	if len(name) < 2 {
		return UnknownAuthor
	}
	lower := strings.ToLower(name)
	for _, d := range authorDenylist {
		if strings.Contains(lower, d) {
			return UnknownAuthor
		}
	}
	return sortname.Display(name)
}

// PrimaryGenre picks the filing genre: the shortest category string,
// which in practice is the most general one.
func PrimaryGenre(meta *mediafile.ParsedMetadata) string {
	var best string
	for _, c := range meta.Categories {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if best == "" || len(c) < len(best) {
			best = c
		}
	}
	if best == "" {
		return GeneralGenre
	}
	return best
}

var yearRe = regexp.MustCompile(`\b(1[0-9]{3}|20[0-9]{2})\b`)

// YearFromDate pulls a 4-digit year out of a free-text date.
func YearFromDate(date string) string {
	if m := yearRe.FindString(date); m != "" {
		return m
	}
	return NoYear
}

// DestinationName renders the configured filename pattern and sanitizes
// the result. Extension is appended by the caller.
func DestinationName(pattern string, meta *mediafile.ParsedMetadata, maxLen int) string {
	name := pattern
	name = strings.ReplaceAll(name, "{author}", PrimaryAuthor(meta))
	name = strings.ReplaceAll(name, "{title}", strings.TrimSpace(meta.Title))
	name = strings.ReplaceAll(name, "{year}", YearFromDate(meta.PublishedDate))
	return textutil.SanitizeFilename(name, maxLen)
}
