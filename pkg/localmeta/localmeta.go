// Package localmeta is the local metadata reader: it dispatches on file
// extension to the container-specific parsers and always returns a
// best-effort record. By contract it never fails: a corrupt, encrypted
// or mislabeled file yields an empty record and the cascade moves on to
// the filename stage.
package localmeta

import (
	"os"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/shelfmark/shelfmark/pkg/epub"
	"github.com/shelfmark/shelfmark/pkg/isbn"
	"github.com/shelfmark/shelfmark/pkg/mediafile"
	"github.com/shelfmark/shelfmark/pkg/pdfmeta"
	"github.com/shelfmark/shelfmark/pkg/textutil"
)

// SupportedExtensions is the fixed set of extensions the pipeline
// accepts, lowercased with leading dot.
var SupportedExtensions = map[string]bool{
	".epub": true, ".pdf": true, ".mobi": true, ".azw3": true,
	".djvu": true, ".fb2": true, ".txt": true, ".doc": true,
	".docx": true, ".rtf": true,
}

// Reader reads container metadata from local files.
type Reader struct{}

func New() *Reader {
	return &Reader{}
}

// Read returns best-effort metadata for the file. Failures of any kind
// produce an empty record, never an error.
func (r *Reader) Read(path, ext string) mediafile.ParsedMetadata {
	empty := mediafile.ParsedMetadata{Source: mediafile.SourceLocalContainer}
	ext = strings.ToLower(ext)

	switch ext {
	case ".epub":
		// A file named .epub that isn't a zip is a mislabel; skip the
		// parser rather than let it churn on garbage.
		if !sniffMatches(path, "application/zip", "application/epub+zip") {
			return empty
		}
		meta, err := epub.Parse(path)
		if err != nil || meta == nil {
			return empty
		}
		return *meta
	case ".pdf":
		meta, err := pdfmeta.Read(path)
		if err != nil || meta == nil {
			return empty
		}
		return *meta
	case ".doc", ".docx", ".rtf", ".txt":
		return readTextual(path)
	default:
		// MOBI/AZW3 and friends: no native parser; the filename stage
		// carries these.
		return empty
	}
}

// Page window scanned for ISBNs in parseable PDFs. Copyright pages sit
// at the front, colophons at the back.
const (
	isbnFirstPages = 5
	isbnLastPages  = 2
)

// ExtractISBN finds an embedded ISBN in the file: EPUB identifiers
// first (exact field, no scanning), decompressed page text for PDFs,
// then the bounded byte-window scan.
func (r *Reader) ExtractISBN(path string) string {
	switch strings.ToLower(ext(path)) {
	case ".epub":
		if found := epub.ExtractISBN(path); found != "" {
			return found
		}
	case ".pdf":
		if text := pdfmeta.PageText(path, isbnFirstPages, isbnLastPages); text != "" {
			if found := isbn.ExtractFromText(text); found != "" {
				return found
			}
		}
	}
	return isbn.ExtractFromFile(path)
}

func ext(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i:]
	}
	return ""
}

func sniffMatches(path string, types ...string) bool {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return false
	}
	for _, t := range types {
		if mtype.Is(t) {
			return true
		}
	}
	return false
}

var textualPatterns = []struct {
	field string
	re    *regexp.Regexp
}{
	{"title", regexp.MustCompile(`(?i)Title:\s*([^\n\r]+)`)},
	{"author", regexp.MustCompile(`(?i)Author:\s*([^\n\r]+)`)},
	{"title", regexp.MustCompile(`(?i)<title>(.*?)</title>`)},
	{"author", regexp.MustCompile(`(?i)<author>(.*?)</author>`)},
}

// readTextual does a small plain-text sniff of office-style files for
// Title:/Author: lines. 5 KB is plenty: real metadata sits at the top.
func readTextual(path string) mediafile.ParsedMetadata {
	meta := mediafile.ParsedMetadata{Source: mediafile.SourceLocalContainer}

	f, err := os.Open(path)
	if err != nil {
		return meta
	}
	defer f.Close()

	buf := make([]byte, 5*1024)
	n, err := f.Read(buf)
	if n == 0 && err != nil {
		return meta
	}
	text := strings.ToValidUTF8(string(buf[:n]), "")

	for _, p := range textualPatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		value := textutil.NormalizeSpaces(m[1])
		if value == "" {
			continue
		}
		switch p.field {
		case "title":
			if meta.Title == "" {
				meta.Title = value
			}
		case "author":
			if len(meta.Authors) == 0 {
				meta.Authors = []string{value}
			}
		}
	}
	return meta
}
