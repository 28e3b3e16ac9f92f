// Package textutil holds the pure string-cleaning utilities used by every
// stage of the resolution pipeline: accent stripping, junk-token removal,
// search-query cleaning and filesystem sanitization. All functions are
// idempotent: applying one twice yields the same result as once.
package textutil

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// StripAccents decomposes the text and drops combining marks, so
// "Memórias Póstumas" becomes "Memorias Postumas".
func StripAccents(s string) string {
	out, _, err := transform.String(accentStripper, s)
	if err != nil {
		return s
	}
	return out
}

var spaceRun = regexp.MustCompile(`\s+`)

// NormalizeSpaces collapses whitespace runs to single spaces and trims.
func NormalizeSpaces(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// Junk patterns shared by the query cleaners. Order matters: bracketed
// groups are removed before bare site names so "(z-library)" never leaves
// stray parens behind.
var junkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\(z-library\)`),
	regexp.MustCompile(`(?i)\(z-lib\)`),
	regexp.MustCompile(`(?i)\(libgen\)`),
	regexp.MustCompile(`(?i)\(pdf\)`),
	regexp.MustCompile(`(?i)\(epub\)`),
	regexp.MustCompile(`(?i)\(pdfcofee\)`),
	regexp.MustCompile(`(?i)\bmicrosoft\s+word\b`),
	regexp.MustCompile(`\[.*?\]`),
	regexp.MustCompile(`\(.*?\)`),
	regexp.MustCompile(`(?i)\.(pdf|epub|mobi|azw3|docx?|txt|zip|rar)$`),
	regexp.MustCompile(`(?i)www\.\w+\.com`),
	regexp.MustCompile(`(?i)http[s]?://\S*`),
	regexp.MustCompile(`(?i)\.com\b`),
	regexp.MustCompile(`(?i)\.org\b`),
	regexp.MustCompile(`(?i)\.net\b`),
	regexp.MustCompile(`\.{3,}`),
	regexp.MustCompile(`(?i)\b\w*libgen\w*\b`),
	regexp.MustCompile(`(?i)\b\w*zlib\w*\b`),
	regexp.MustCompile(`(?i)\b\d+p\b`),
	regexp.MustCompile(`(?i)\b\d+k\b`),
	regexp.MustCompile(`(?i)reidoebook`),
	regexp.MustCompile(`(?i)livrosparatodos`),
	regexp.MustCompile(`(?i)z-lib`),
	regexp.MustCompile(`(?i)pdf-free`),
	regexp.MustCompile(`(?i)\b\w*download\w*\b`),
	regexp.MustCompile(`(?i)\bfree\b`),
	regexp.MustCompile(`(?i)\b\w*ebook\w*\b`),
}

// Piracy-site prefixes stripped from the start of filenames.
var junkPrefixes = []string{
	"pdfcoffee", "livrosparatodos", "reidoebook", "docero", "zlibrary",
	"libgen", "ebooksgratis", "baixarlivros", "downloadlivros", "freebook",
	"biblioteca",
}

// Noise phrases that indicate an unnamed document rather than a title.
var documentNoise = []*regexp.Regexp{
	regexp.MustCompile(`(?i)novo\s*(?:documento|arquivo|file)`),
	regexp.MustCompile(`(?i)novo\s*(?:doc|txt|texto)`),
	regexp.MustCompile(`(?i)documento\s*(?:de\s*texto|sem\s*t[ií]tulo)`),
	regexp.MustCompile(`(?i)untitled`),
	regexp.MustCompile(`(?i)sem t[ií]tulo`),
}

var (
	unicodeDashes    = regexp.MustCompile("[‒–—−⁃﹣－]")
	invisibleSpaces  = regexp.MustCompile("[   ]")
	underscorePlus   = regexp.MustCompile(`[+_]+`)
	interWordDot     = regexp.MustCompile(`(\pL{2,})\.(\pL)`)
	gluedDash        = regexp.MustCompile(`(\w)-(\w)`)
	edgeDashes       = regexp.MustCompile(`^\s*-+\s*|\s*-+\s*$`)
	isolatedNumber   = regexp.MustCompile(`\s\d+\s`)
	leadingNumber    = regexp.MustCompile(`^\d+\s`)
	trailingNumber   = regexp.MustCompile(`\s\d+$`)
	bracketedNumber  = regexp.MustCompile(`\[\d+\]`)
	nonFilenameChars = regexp.MustCompile(`[^\w\s\-.]`)
	dashUnderRun     = regexp.MustCompile(`[-_]{2,}`)
	bareYear         = regexp.MustCompile(`\b\d{4}\b`)
)

// stripJunk applies the shared junk-pattern table plus Unicode dash and
// space unification. It is the common trunk of both query cleaners.
func stripJunk(s string) string {
	for _, p := range junkPatterns {
		s = p.ReplaceAllString(s, "")
	}
	s = norm.NFKC.String(s)
	s = invisibleSpaces.ReplaceAllString(s, " ")
	s = unicodeDashes.ReplaceAllString(s, "-")
	s = underscorePlus.ReplaceAllString(s, " ")
	// Drop dots between lowercase words ("livro.nome") but keep initials
	// like "J. K. Rowling".
	s = interWordDot.ReplaceAllString(s, "$1 $2")
	// A dash glued to both words is a word separator, not a clause split.
	s = gluedDash.ReplaceAllString(s, "$1 $2")
	s = edgeDashes.ReplaceAllString(s, "")
	return NormalizeSpaces(s)
}

// CleanQuery prepares metadata field text (titles, authors read from a
// container) for a provider query. Only obvious digital junk is removed;
// the structure of the text is preserved.
func CleanQuery(s string) string {
	if s == "" {
		return ""
	}
	s = stripJunk(s)
	for _, prefix := range junkPrefixes {
		re := regexp.MustCompile(`(?i)^` + prefix + `\s+`)
		s = re.ReplaceAllString(s, "")
	}
	return NormalizeSpaces(s)
}

// CleanFilenameQuery prepares a raw filename (extension already stripped)
// for parsing and provider queries. More aggressive than CleanQuery: it
// also drops isolated numbers and unnamed-document noise. If cleaning
// leaves fewer than 3 characters the original is re-cleaned minimally so
// a noisy-but-real name is never reduced to nothing.
func CleanFilenameQuery(s string) string {
	if s == "" {
		return ""
	}
	orig := s
	s = bracketedNumber.ReplaceAllString(s, "")
	s = stripJunk(s)
	s = isolatedNumber.ReplaceAllString(s, " ")
	s = leadingNumber.ReplaceAllString(s, "")
	s = trailingNumber.ReplaceAllString(s, "")
	for _, p := range documentNoise {
		s = p.ReplaceAllString(s, "")
	}
	s = NormalizeSpaces(s)
	if len(s) < 3 {
		s = bracketedNumber.ReplaceAllString(orig, "")
		s = underscorePlus.ReplaceAllString(s, " ")
		s = NormalizeSpaces(s)
	}
	return s
}

var specialChars = regexp.MustCompile(`[^\p{L}\p{N}_\s\-().]`)

// CleanSpecialChars drops punctuation outside letters, digits, spaces,
// hyphens, parentheses and dots, then collapses the leftover whitespace.
func CleanSpecialChars(s string) string {
	return NormalizeSpaces(specialChars.ReplaceAllString(s, ""))
}

var titleCaser = cases.Title(language.Und)

// SmartTitleCase title-cases text that arrives in all caps or all
// lowercase and leaves mixed-case text alone, so "THE SHINING" becomes
// "The Shining" but "McCarthy" survives untouched.
func SmartTitleCase(s string) string {
	if s == strings.ToUpper(s) || s == strings.ToLower(s) {
		return titleCaser.String(s)
	}
	return s
}

// Accented letters preserved by SanitizeFilename even though the rest of
// the non-printable range is dropped.
const accentAllowlist = "áéíóúàèìòùâêîôûãõäëïöüçÁÉÍÓÚÀÈÌÒÙÂÊÎÔÛÃÕÄËÏÖÜÇ"

// SanitizeFilename maps characters that are illegal in filesystem names
// to hyphens, strips non-printable characters (keeping a small accented-
// letter allowlist), collapses repeated hyphens/underscores, truncates to
// maxLen bytes and trims trailing dots and spaces.
func SanitizeFilename(name string, maxLen int) string {
	name = NormalizeSpaces(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case strings.ContainsRune(`<>:"/\|?*`, r) || r == '\n' || r == '\r' || r == '\t':
			b.WriteRune('-')
		case unicode.IsPrint(r) || strings.ContainsRune(accentAllowlist, r):
			b.WriteRune(r)
		}
	}
	name = dashUnderRun.ReplaceAllString(b.String(), "-")
	if maxLen > 0 && len(name) > maxLen {
		name = name[:maxLen]
		// Don't leave a split multi-byte rune at the boundary.
		for len(name) > 0 && !utf8.ValidString(name) {
			name = name[:len(name)-1]
		}
	}
	return strings.TrimRight(name, ". ")
}

// QuarantineName lightly cleans the name of a file headed for the
// quarantine folder. It removes site tags, bracketed groups and bare
// years but deliberately preserves the rest of the original name (and the
// extension) so a human can still triage the file. This is intentionally
// weaker than SanitizeFilename.
func QuarantineName(filename string) string {
	ext := ""
	name := filename
	if i := strings.LastIndex(filename, "."); i > 0 {
		name, ext = filename[:i], filename[i:]
	}
	orig := name

	name = underscorePlus.ReplaceAllString(name, " ")
	for _, p := range []*regexp.Regexp{
		regexp.MustCompile(`(?i)reidoebook\[?\d*\]?\.com[+-]*`),
		regexp.MustCompile(`(?i)www\.\w+\.com`),
		regexp.MustCompile(`(?i)z-library`),
		regexp.MustCompile(`(?i)\(z-library\)`),
		regexp.MustCompile(`(?i)pdfcoffee\.com`),
		regexp.MustCompile(`\(.*?\)`),
		regexp.MustCompile(`\[.*?\]`),
		bareYear,
	} {
		name = p.ReplaceAllString(name, " ")
	}
	name = nonFilenameChars.ReplaceAllString(name, "")
	name = NormalizeSpaces(name)

	if len(name) < 3 {
		name = nonFilenameChars.ReplaceAllString(orig, "")
		name = underscorePlus.ReplaceAllString(name, " ")
		name = NormalizeSpaces(name)
	}
	return name + ext
}
