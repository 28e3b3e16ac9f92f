// Package pdfmeta reads bibliographic metadata from PDF files: the
// document information dictionary when the file parses, and a bounded
// raw-byte scan when it does not. Encrypted or damaged files degrade to
// the fallback instead of failing; callers treat an empty record as "no
// local metadata".
package pdfmeta

import (
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pkg/errors"
	"github.com/shelfmark/shelfmark/pkg/mediafile"
	"github.com/shelfmark/shelfmark/pkg/textutil"
)

const (
	fallbackWindowBytes = 50 * 1024
	simpleWindowBytes   = 2 * 1024
)

// Read parses the PDF's Info dictionary. When pdfcpu cannot open the
// file (corrupt, encrypted) the raw fallback scan is used instead; the
// returned record may be empty but Read itself never fails the caller.
func Read(path string) (*mediafile.ParsedMetadata, error) {
	meta, err := readInfoDict(path)
	if err == nil && !meta.Empty() {
		return meta, nil
	}
	if fb := readFallback(path, fallbackWindowBytes); !fb.Empty() {
		return fb, nil
	}
	if fb := readFallback(path, simpleWindowBytes); !fb.Empty() {
		return fb, nil
	}
	if err != nil {
		return &mediafile.ParsedMetadata{Source: mediafile.SourceLocalContainer}, errors.Wrap(err, "pdfmeta: unreadable pdf")
	}
	return &mediafile.ParsedMetadata{Source: mediafile.SourceLocalContainer}, nil
}

func readInfoDict(path string) (*mediafile.ParsedMetadata, error) {
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	meta := &mediafile.ParsedMetadata{Source: mediafile.SourceLocalContainer}
	if t := textutil.NormalizeSpaces(ctx.Title); t != "" {
		meta.Title = t
	}
	if a := textutil.NormalizeSpaces(ctx.Author); a != "" {
		meta.Authors = []string{a}
	}
	if s := textutil.NormalizeSpaces(ctx.Subject); s != "" {
		meta.Categories = []string{s}
	}
	if d := textutil.NormalizeSpaces(ctx.XRefTable.CreationDate); d != "" {
		meta.PublishedDate = d
	}
	return meta, nil
}

// PageText extracts the string content of the first firstPages and last
// lastPages pages, decompressed through pdfcpu's content-stream
// extraction. ISBNs printed on copyright pages live inside Flate
// streams a raw byte scan never sees. Best effort: any parse failure
// yields "" and the caller falls back to the byte scan.
func PageText(path string, firstPages, lastPages int) string {
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return ""
	}
	if err := api.ValidateContext(ctx); err != nil {
		return ""
	}

	var chunks []string
	for page := 1; page <= ctx.PageCount; page++ {
		if page > firstPages && page <= ctx.PageCount-lastPages {
			continue
		}
		r, err := pdfcpu.ExtractPageContent(ctx, page)
		if err != nil || r == nil {
			continue
		}
		content, err := io.ReadAll(r)
		if err != nil {
			continue
		}
		if text := contentText(content); text != "" {
			chunks = append(chunks, text)
		}
	}
	return strings.Join(chunks, " ")
}

// literalString matches PDF literal strings, the (...) operands of the
// text-showing operators.
var literalString = regexp.MustCompile(`\(((?:\\.|[^\\()])*)\)`)

var literalEscapes = strings.NewReplacer(
	`\(`, "(", `\)`, ")", `\\`, `\`,
	`\n`, "\n", `\r`, "\r", `\t`, "\t",
)

// contentText pulls the literal strings out of a decompressed content
// stream and joins them with spaces. Hex strings and CID-encoded text
// are skipped; the result is only as good as the page's encoding, which
// is why the byte-window scan stays as the fallback.
func contentText(content []byte) string {
	matches := literalString.FindAllSubmatch(content, -1)
	if len(matches) == 0 {
		return ""
	}
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		s := literalEscapes.Replace(string(m[1]))
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Fallback patterns over raw bytes: PDF literal-string Info entries first,
// then plain "Title:" lines that leak out of generator tools.
var fallbackPatterns = []struct {
	field string
	re    *regexp.Regexp
}{
	{"title", regexp.MustCompile(`/Title\s*\(([^)]+)\)`)},
	{"author", regexp.MustCompile(`/Author\s*\(([^)]+)\)`)},
	{"title", regexp.MustCompile(`(?i)Title[:\s]+([^\n\r(<]+)`)},
	{"author", regexp.MustCompile(`(?i)Author[:\s]+([^\n\r(<]+)`)},
}

func readFallback(path string, window int) *mediafile.ParsedMetadata {
	meta := &mediafile.ParsedMetadata{Source: mediafile.SourceLocalContainer}

	f, err := os.Open(path)
	if err != nil {
		return meta
	}
	defer f.Close()

	buf := make([]byte, window)
	n, err := f.Read(buf)
	if n == 0 && err != nil {
		return meta
	}
	text := strings.ToValidUTF8(string(buf[:n]), "")

	for _, p := range fallbackPatterns {
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
