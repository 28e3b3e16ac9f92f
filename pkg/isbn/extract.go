package isbn

import (
	"os"
	"regexp"
	"strings"
)

// Extraction never reads whole files: large PDFs are scanned only in the
// windows where a real ISBN appears (copyright page up front, colophon at
// the back). The byte-oriented fallback reads a fixed prefix.
const (
	genericWindowBytes = 100 * 1024
	tailWindowBytes    = 64 * 1024
	contextWindow      = 50
)

// Ordered patterns: explicit ISBN-prefixed forms first, then bare
// bookland runs. The order is fixed so the same input always yields the
// same first hit.
var extractPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ISBN[-]*(?:1[03])?[:]?[\s]*([0-9X\-]{10,17})`),
	regexp.MustCompile(`(?i)ISBN[\s]*([0-9X\-]{10,17})`),
	regexp.MustCompile(`(97[89][\-]?[0-9]{1,5}[\-]?[0-9]{1,7}[\-]?[0-9]{1,6}[\-]?[0-9X])`),
}

// Words that must appear near a candidate for it to count. A 13-digit run
// in the middle of a table is not an ISBN.
var contextKeywords = []string{"isbn", "book", "edition", "publish"}

// ExtractFromText scans text for the first plausible ISBN. Each match
// must survive normalization, checksum, the placeholder denylist, a
// distinct-digit floor, and a contextual-keyword check within a small
// window around the match.
func ExtractFromText(text string) string {
	for _, pattern := range extractPatterns {
		for _, m := range pattern.FindAllStringSubmatchIndex(text, -1) {
			start, end := m[0], m[1]
			// The capture group holds the digit run; the full match may
			// include an ISBN-13: style label.
			candidate := Normalize(text[m[2]:m[3]])
			if len(candidate) != 10 && len(candidate) != 13 {
				continue
			}
			if !Plausible(candidate) || distinctDigits(candidate) <= 4 {
				continue
			}
			if !nearKeyword(text, start, end) {
				continue
			}
			return candidate
		}
	}
	return ""
}

func nearKeyword(text string, start, end int) bool {
	lo := start - contextWindow
	if lo < 0 {
		lo = 0
	}
	hi := end + contextWindow
	if hi > len(text) {
		hi = len(text)
	}
	context := strings.ToLower(text[lo:hi])
	for _, kw := range contextKeywords {
		if strings.Contains(context, kw) {
			return true
		}
	}
	return false
}

// ExtractFromBytes decodes a raw byte window lossily and scans it.
func ExtractFromBytes(content []byte) string {
	return ExtractFromText(strings.ToValidUTF8(string(content), ""))
}

// ExtractFromFile scans a bounded prefix of the file, then a bounded
// suffix (copyright page up front, colophon at the back). Absence and
// read errors both yield ""; extraction is best-effort by contract. The
// prefix always wins over the suffix so results are deterministic.
func ExtractFromFile(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	buf := make([]byte, genericWindowBytes)
	n, err := f.Read(buf)
	if n == 0 && err != nil {
		return ""
	}
	if found := ExtractFromBytes(buf[:n]); found != "" {
		return found
	}

	info, err := f.Stat()
	if err != nil || info.Size() <= genericWindowBytes {
		return ""
	}
	tail := make([]byte, tailWindowBytes)
	offset := info.Size() - tailWindowBytes
	if offset < genericWindowBytes {
		offset = genericWindowBytes
		tail = tail[:info.Size()-offset]
	}
	n, err = f.ReadAt(tail, offset)
	if n == 0 && err != nil {
		return ""
	}
	return ExtractFromBytes(tail[:n])
}
