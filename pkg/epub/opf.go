// Package epub reads bibliographic metadata from the OPF package
// document inside an EPUB container. Only the metadata block is parsed;
// rendering concerns (manifest, spine) are ignored.
package epub

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/shelfmark/shelfmark/pkg/isbn"
	"github.com/shelfmark/shelfmark/pkg/mediafile"
	"github.com/shelfmark/shelfmark/pkg/textutil"
)

type containerXML struct {
	XMLName   xml.Name `xml:"container"`
	Rootfiles struct {
		Rootfile []struct {
			FullPath  string `xml:"full-path,attr"`
			MediaType string `xml:"media-type,attr"`
		} `xml:"rootfile"`
	} `xml:"rootfiles"`
}

type packageDoc struct {
	XMLName  xml.Name `xml:"package"`
	Metadata struct {
		Title   []string `xml:"title"`
		Creator []struct {
			Text   string `xml:",chardata"`
			Role   string `xml:"role,attr"`
			FileAs string `xml:"file-as,attr"`
		} `xml:"creator"`
		Identifier []struct {
			Text   string `xml:",chardata"`
			Scheme string `xml:"scheme,attr"`
		} `xml:"identifier"`
		Date    []string `xml:"date"`
		Subject []string `xml:"subject"`
	} `xml:"metadata"`
}

// Parse reads the OPF metadata of the EPUB at path.
func Parse(path string) (*mediafile.ParsedMetadata, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer r.Close()

	opfPath, err := rootfilePath(&r.Reader)
	if err != nil {
		return nil, err
	}

	doc, err := readPackage(&r.Reader, opfPath)
	if err != nil {
		return nil, err
	}

	meta := &mediafile.ParsedMetadata{Source: mediafile.SourceLocalContainer}

	var titles []string
	for _, t := range doc.Metadata.Title {
		if s := textutil.NormalizeSpaces(t); s != "" {
			titles = append(titles, s)
		}
	}
	meta.Title = strings.Join(titles, " ")

	for _, c := range doc.Metadata.Creator {
		// Illustrators and editors are creators too; only plain authors
		// feed the search query.
		if c.Role != "" && c.Role != "aut" {
			continue
		}
		if name := textutil.NormalizeSpaces(c.Text); name != "" {
			meta.Authors = append(meta.Authors, name)
		}
	}

	if len(doc.Metadata.Date) > 0 {
		meta.PublishedDate = textutil.NormalizeSpaces(doc.Metadata.Date[0])
	}
	for _, s := range doc.Metadata.Subject {
		if s = textutil.NormalizeSpaces(s); s != "" {
			meta.Categories = append(meta.Categories, s)
		}
	}

	return meta, nil
}

// ExtractISBN returns the first plausible ISBN among the package's
// dc:identifier entries, or "".
func ExtractISBN(path string) string {
	r, err := zip.OpenReader(path)
	if err != nil {
		return ""
	}
	defer r.Close()

	opfPath, err := rootfilePath(&r.Reader)
	if err != nil {
		return ""
	}
	doc, err := readPackage(&r.Reader, opfPath)
	if err != nil {
		return ""
	}

	// Scheme-tagged identifiers first, then anything that normalizes to a
	// plausible ISBN. Iteration order over the XML is document order, so
	// the first hit is stable.
	for _, id := range doc.Metadata.Identifier {
		if strings.EqualFold(id.Scheme, "ISBN") || strings.Contains(strings.ToLower(id.Text), "isbn") {
			if n := isbn.Normalize(id.Text); isbn.Plausible(n) {
				return n
			}
		}
	}
	for _, id := range doc.Metadata.Identifier {
		if n := isbn.Normalize(id.Text); isbn.Plausible(n) {
			return n
		}
	}
	return ""
}

func rootfilePath(r *zip.Reader) (string, error) {
	data, err := readZipFile(r, "META-INF/container.xml")
	if err != nil {
		return "", err
	}
	var c containerXML
	if err := xml.Unmarshal(data, &c); err != nil {
		return "", errors.WithStack(err)
	}
	for _, rf := range c.Rootfiles.Rootfile {
		if rf.FullPath != "" {
			return rf.FullPath, nil
		}
	}
	return "", errors.New("epub: no rootfile in container.xml")
}

func readPackage(r *zip.Reader, opfPath string) (*packageDoc, error) {
	data, err := readZipFile(r, opfPath)
	if err != nil {
		return nil, err
	}
	var doc packageDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WithStack(err)
	}
	return &doc, nil
}

func readZipFile(r *zip.Reader, name string) ([]byte, error) {
	for _, f := range r.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, errors.WithStack(err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		return data, nil
	}
	return nil, errors.Errorf("epub: %s not found in archive", name)
}
