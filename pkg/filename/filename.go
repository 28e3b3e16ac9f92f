// Package filename heuristically splits a cleaned filename into title and
// author candidates. The rules are scored lookalike checks over a
// known-author list and an ordered table of structural patterns; they are
// deliberately conservative because a wrong split feeds a wrong provider
// query downstream.
package filename

import (
	"regexp"
	"strings"
	"time"
	"unicode"
)

// Config carries the immutable word lists the parser scores against.
// Injected at construction time so tests can override them.
type Config struct {
	KnownAuthors  []string
	KnownSurnames []string
	JunkWords     []string
	Stopwords     []string
}

// DefaultConfig returns the built-in lists.
func DefaultConfig() Config {
	return Config{
		KnownAuthors: []string{
			"stephen king", "agatha christie", "j.k. rowling", "paulo coelho",
			"dan brown", "george r.r. martin", "j.r.r. tolkien", "rick riordan",
			"alexandra sellers",
		},
		KnownSurnames: []string{
			"king", "brown", "coelho", "rowling", "martin", "tolkien",
			"riordan", "crichton", "assis", "lispector", "amado", "verissimo",
			"cury", "green", "sparks", "sheldon", "follett", "koontz",
		},
		JunkWords: []string{
			"reidoebook", "com", "net", "org", "pdf", "epub", "documento", "texto",
		},
		Stopwords: []string{
			"the", "and", "or", "of", "de", "da", "do", "das", "dos",
			"a", "o", "as", "os",
		},
	}
}

// Parser splits cleaned filenames into (title, author) candidates.
type Parser struct {
	cfg          Config
	knownAuthors map[string]bool
}

func New(cfg Config) *Parser {
	known := make(map[string]bool, len(cfg.KnownAuthors))
	for _, a := range cfg.KnownAuthors {
		known[strings.ToLower(a)] = true
	}
	return &Parser{cfg: cfg, knownAuthors: known}
}

// pattern is one named structural matcher. authorFirst records the
// orientation the shape implies ("Author: Title" vs "Title - Author");
// the lookalike heuristics may flip it, and numeric-only groups are
// treated as a year and dropped.
type pattern struct {
	name        string
	re          *regexp.Regexp
	authorFirst bool
}

// Ordered pattern table. More specific shapes (with a year anchor) come
// first; the generic separator splits come last. Order is part of the
// contract: the first matching pattern wins.
var patterns = []pattern{
	{"title-dash-author-year", regexp.MustCompile(`^(.*?)\s*[-–—]\s*(.*?)\s*[([]\d{4}[)\]]`), false},
	{"title-year-dash-author", regexp.MustCompile(`^(.*?)\s*[([](\d{4})[)\]]\s*[-–—]\s*(.*?)$`), false},
	{"title-paren-author", regexp.MustCompile(`^(.+?)\s*[([](.+?)[)\]]\s*$`), false},
	{"title-by-author", regexp.MustCompile(`(?i)^(.*?)\s+(?:by|por)\s+(.*?)$`), false},
	{"author-colon-title", regexp.MustCompile(`^(.*?)\s*:\s*(.*?)$`), true},
	{"dash-split", regexp.MustCompile(`^(.*?)\s*[-–—]\s*(.*?)$`), false},
	{"comma-split", regexp.MustCompile(`^(.*?)\s*,\s*(.*?)$`), false},
}

var (
	allDigits    = regexp.MustCompile(`^\d+$`)
	trailingYear = regexp.MustCompile(`\s*[([]\d{4}[)\]]\s*$`)
)

// Parse splits a cleaned filename (extension stripped, junk removed) into
// title and author. Author is "" when no credible split exists; in that
// case the whole name is the title.
func (p *Parser) Parse(name string) (title, author string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}

	// Step 1: a known author appearing anywhere decides the split.
	if t, a, ok := p.splitOnKnownAuthor(name); ok {
		return t, a
	}

	// Step 2: structural patterns in fixed order.
	for _, pat := range patterns {
		m := pat.re.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		var groups []string
		for _, g := range m[1:] {
			g = strings.TrimSpace(g)
			if g == "" || allDigits.MatchString(g) {
				continue // numeric-only group is a year, not a name
			}
			groups = append(groups, g)
		}
		if len(groups) < 2 {
			continue
		}
		first, second := groups[0], groups[1]

		if p.knownAuthors[strings.ToLower(first)] && p.LooksLikeTitle(second) {
			return second, first
		}
		if p.knownAuthors[strings.ToLower(second)] && p.LooksLikeTitle(first) {
			return first, second
		}

		// Flip the implied orientation only when the heuristics point
		// unambiguously the other way.
		firstIsAuthor := p.LooksLikeAuthor(first) && p.LooksLikeTitle(second)
		secondIsAuthor := p.LooksLikeTitle(first) && p.LooksLikeAuthor(second)
		switch {
		case firstIsAuthor && !secondIsAuthor:
			return second, first
		case secondIsAuthor && !firstIsAuthor:
			return first, second
		case pat.authorFirst:
			return second, first
		default:
			return first, second
		}
	}

	return name, ""
}

func (p *Parser) splitOnKnownAuthor(name string) (title, author string, ok bool) {
	lower := strings.ToLower(name)
	for _, known := range p.cfg.KnownAuthors {
		idx := strings.Index(lower, strings.ToLower(known))
		if idx < 0 {
			continue
		}
		if idx == 0 {
			// Author - Title
			rest := strings.TrimSpace(name[len(known):])
			if rest != "" && strings.ContainsRune("-–—:", []rune(rest)[0]) {
				t := strings.TrimSpace(string([]rune(rest)[1:]))
				t = strings.TrimSpace(trailingYear.ReplaceAllString(t, ""))
				if t != "" && p.LooksLikeTitle(t) {
					return t, name[:len(known)], true
				}
			}
			continue
		}
		// Title - Author
		t := strings.TrimSpace(name[:idx])
		t = strings.TrimRight(t, "-–— ")
		if t != "" && p.LooksLikeTitle(t) {
			return t, name[idx : idx+len(known)], true
		}
	}
	return "", "", false
}

// LooksLikeAuthor scores the text against author-shaped rules; 3 or more
// points qualify. Hard rejects: too short, all digits, stopword-only, or
// containing a junk word.
func (p *Parser) LooksLikeAuthor(text string) bool {
	text = strings.TrimSpace(text)
	if len(text) <= 2 || allDigits.MatchString(text) {
		return false
	}

	lower := strings.ToLower(text)
	for _, junk := range p.cfg.JunkWords {
		if strings.Contains(lower, junk) {
			return false
		}
	}

	words := strings.Fields(text)
	if stopwordsOnly(words, p.cfg.Stopwords) {
		return false
	}

	score := 0
	if allAlphaWordsCapitalized(words) {
		score++
	}
	if len(words) <= 4 {
		score++
	}
	for _, surname := range p.cfg.KnownSurnames {
		if strings.Contains(lower, surname) {
			score++
			break
		}
	}
	if p.knownAuthors[lower] {
		score += 2
	}
	meaningful := 0
	for _, w := range words {
		if len(w) > 2 && isAlpha(w) {
			meaningful++
		}
	}
	if meaningful >= 2 {
		score++
	}

	return score >= 3
}

// LooksLikeTitle accepts multi-word text or a single significant word.
// All-digit text is rejected, which systematically misclassifies numeric
// titles like "1984"; the source behavior is preserved on purpose and the
// free-text fallback query covers those files.
func (p *Parser) LooksLikeTitle(text string) bool {
	text = strings.TrimSpace(text)
	if len(text) < 3 || len(text) > 150 {
		return false
	}
	if allDigits.MatchString(text) {
		return false
	}
	if text == strings.ToUpper(text) && text != strings.ToLower(text) && len(text) > 8 {
		return false
	}

	words := strings.Fields(text)
	if len(words) >= 2 {
		return true
	}
	return len(words) == 1 && len(text) > 4
}

var yearPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[([](\d{4})[)\]]`),
	regexp.MustCompile(`[-–—](\d{4})[-–—]`),
	regexp.MustCompile(`\s(\d{4})\s`),
	regexp.MustCompile(`\b(\d{4})\b`),
}

// ExtractYear pulls a plausible 4-digit year out of a filename, or "".
func ExtractYear(text string) string {
	maxYear := time.Now().Year() + 1
	for _, pat := range yearPatterns {
		m := pat.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		year := m[1]
		n := int(year[0]-'0')*1000 + int(year[1]-'0')*100 + int(year[2]-'0')*10 + int(year[3]-'0')
		if n >= 1000 && n <= maxYear {
			return year
		}
	}
	return ""
}

func stopwordsOnly(words, stopwords []string) bool {
	if len(words) == 0 {
		return true
	}
	for _, w := range words {
		found := false
		for _, sw := range stopwords {
			if strings.EqualFold(w, sw) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func allAlphaWordsCapitalized(words []string) bool {
	for _, w := range words {
		if !isAlpha(w) {
			continue
		}
		r := []rune(w)[0]
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return len(s) > 0
}
