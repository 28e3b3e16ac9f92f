package booksearch

import (
	"strings"

	"github.com/shelfmark/shelfmark/pkg/mediafile"
	"github.com/shelfmark/shelfmark/pkg/textutil"
)

// ScoreHit rates how well a provider record matches the query that
// produced it. Title overlap carries 0.7 of the weight; the best
// author overlap carries the remaining 0.3 and contributes zero when
// the query has no author, so an author-less query caps out at 0.7.
func ScoreHit(queryTitle, queryAuthor string, meta *mediafile.ParsedMetadata) float64 {
	if meta == nil {
		return 0
	}
	titleScore := tokenOverlap(queryTitle, meta.Title)

	var authorScore float64
	if queryAuthor != "" {
		for _, a := range meta.Authors {
			if s := tokenOverlap(queryAuthor, a); s > authorScore {
				authorScore = s
			}
		}
	}
	return 0.7*titleScore + 0.3*authorScore
}

// tokenOverlap is the Jaccard index over lowercase accent-stripped
// tokens. Symmetric; identical strings score 1.0.
func tokenOverlap(a, b string) float64 {
	ta := tokenize(a)
	tb := tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	inter := 0
	for tok := range ta {
		if tb[tok] {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	return float64(inter) / float64(union)
}

func tokenize(s string) map[string]bool {
	s = strings.ToLower(textutil.StripAccents(s))
	tokens := map[string]bool{}
	for _, f := range strings.FieldsFunc(s, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	}) {
		if f != "" {
			tokens[f] = true
		}
	}
	return tokens
}
