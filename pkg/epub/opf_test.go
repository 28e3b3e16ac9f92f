package epub

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const containerDoc = `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

const opfDoc = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" xmlns:dc="http://purl.org/dc/elements/1.1/" version="2.0">
  <metadata xmlns:opf="http://www.idpf.org/2007/opf">
    <dc:title>The Shining</dc:title>
    <dc:creator opf:role="aut" opf:file-as="King, Stephen">Stephen King</dc:creator>
    <dc:creator opf:role="ill">Some Illustrator</dc:creator>
    <dc:identifier opf:scheme="ISBN">978-0-385-12167-5</dc:identifier>
    <dc:identifier>urn:uuid:12345678-1234-1234-1234-123456789012</dc:identifier>
    <dc:date>1977-01-28</dc:date>
    <dc:subject>Horror</dc:subject>
    <dc:subject>Fiction</dc:subject>
  </metadata>
</package>`

func writeEpub(t *testing.T, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.epub")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return path
}

func TestParse(t *testing.T) {
	path := writeEpub(t, map[string]string{
		"mimetype":               "application/epub+zip",
		"META-INF/container.xml": containerDoc,
		"OEBPS/content.opf":      opfDoc,
	})

	meta, err := Parse(path)
	require.NoError(t, err)
	assert.Equal(t, "The Shining", meta.Title)
	assert.Equal(t, []string{"Stephen King"}, meta.Authors, "illustrator must be excluded")
	assert.Equal(t, "1977-01-28", meta.PublishedDate)
	assert.Equal(t, []string{"Horror", "Fiction"}, meta.Categories)
}

func TestParseMissingContainer(t *testing.T) {
	path := writeEpub(t, map[string]string{
		"mimetype": "application/epub+zip",
	})

	_, err := Parse(path)
	assert.Error(t, err)
}

func TestParseNotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.epub")
	require.NoError(t, os.WriteFile(path, []byte("not a zip at all"), 0o644))

	_, err := Parse(path)
	assert.Error(t, err)
}

func TestExtractISBN(t *testing.T) {
	t.Run("scheme tagged identifier", func(t *testing.T) {
		path := writeEpub(t, map[string]string{
			"META-INF/container.xml": containerDoc,
			"OEBPS/content.opf":      opfDoc,
		})
		assert.Equal(t, "9780385121675", ExtractISBN(path))
	})

	t.Run("untagged identifier still found", func(t *testing.T) {
		opf := `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" xmlns:dc="http://purl.org/dc/elements/1.1/">
  <metadata>
    <dc:title>A Book</dc:title>
    <dc:identifier>9780306406157</dc:identifier>
  </metadata>
</package>`
		path := writeEpub(t, map[string]string{
			"META-INF/container.xml": containerDoc,
			"OEBPS/content.opf":      opf,
		})
		assert.Equal(t, "9780306406157", ExtractISBN(path))
	})

	t.Run("no identifiers", func(t *testing.T) {
		opf := `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" xmlns:dc="http://purl.org/dc/elements/1.1/">
  <metadata><dc:title>A Book</dc:title></metadata>
</package>`
		path := writeEpub(t, map[string]string{
			"META-INF/container.xml": containerDoc,
			"OEBPS/content.opf":      opf,
		})
		assert.Equal(t, "", ExtractISBN(path))
	})
}
