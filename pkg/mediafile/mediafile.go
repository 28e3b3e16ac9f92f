package mediafile

import (
	"fmt"
	"strings"
)

// Source identifies which stage or provider produced a metadata record.
type Source string

const (
	SourceISBNLookup        Source = "isbn_lookup"
	SourceLocalContainer    Source = "local_container"
	SourceFilenameHeuristic Source = "filename_heuristic"
	SourceExternalSearch    Source = "external_search"
	SourceSimulation        Source = "simulation"
	SourceManualEdit        Source = "manual_edit"
)

// Cover image size tags as returned by the providers.
const (
	CoverSizeSmall     = "small"
	CoverSizeThumbnail = "thumbnail"
	CoverSizeLarge     = "large"
)

// ParsedMetadata is the candidate metadata record shared by the local
// readers, the provider clients, the resolver and the filer. A record is
// either accepted whole (after validation) or discarded whole; partial
// records never reach the filer.
type ParsedMetadata struct {
	Title   string
	Authors []string
	// PublishedDate is free text from the source; the filer extracts a
	// 4-digit year from it.
	PublishedDate string
	Categories    []string
	// CoverURLs maps a size tag (small, thumbnail, large) to an image URL.
	CoverURLs map[string]string
	Source    Source
	// Score is the match confidence in [0,1]. ISBN-exact lookups report 1.0.
	Score float64
}

// Empty reports whether the record carries no usable fields.
func (m *ParsedMetadata) Empty() bool {
	return m == nil || (m.Title == "" && len(m.Authors) == 0)
}

// FirstAuthor returns the primary author or "".
func (m *ParsedMetadata) FirstAuthor() string {
	if m == nil || len(m.Authors) == 0 {
		return ""
	}
	return m.Authors[0]
}

func (m *ParsedMetadata) String() string {
	return fmt.Sprintf("Title:     %s\nAuthor(s): %s\nDate:      %s\nSource:    %s\nScore:     %.2f", m.Title, strings.Join(m.Authors, ", "), m.PublishedDate, m.Source, m.Score)
}

// Merge overlays an external search hit onto a locally read record. The
// hit's title wins when it is longer, authors are unioned preserving
// local order, and the hit's date, categories and covers are preferred.
// This runs only within a single cascade stage; rejected stages are
// discarded, never merged forward.
func Merge(local, hit ParsedMetadata) ParsedMetadata {
	merged := local
	if hit.Title != "" && (merged.Title == "" || len(hit.Title) > len(merged.Title)) {
		merged.Title = hit.Title
	}
	if len(hit.Authors) > 0 {
		merged.Authors = unionStrings(merged.Authors, hit.Authors)
	}
	if hit.PublishedDate != "" {
		merged.PublishedDate = hit.PublishedDate
	}
	if len(hit.Categories) > 0 {
		merged.Categories = unionStrings(merged.Categories, hit.Categories)
	}
	if len(hit.CoverURLs) > 0 {
		merged.CoverURLs = hit.CoverURLs
	}
	merged.Source = hit.Source
	merged.Score = hit.Score
	return merged
}

func unionStrings(a, b []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range append(append([]string{}, a...), b...) {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, strings.TrimSpace(s))
	}
	return out
}
