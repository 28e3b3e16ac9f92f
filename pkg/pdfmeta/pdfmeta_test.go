package pdfmeta

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestReadFallbackInfoStrings(t *testing.T) {
	// Not a parseable PDF, but the Info dictionary strings are present
	// in the raw bytes, which is what the fallback scan targets.
	content := []byte("%PDF-1.4\n1 0 obj\n<< /Title (The Stand) /Author (Stephen King) >>\nendobj\n")
	path := writeFile(t, "broken.pdf", content)

	meta, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "The Stand", meta.Title)
	assert.Equal(t, []string{"Stephen King"}, meta.Authors)
}

func TestReadFallbackPlainLabels(t *testing.T) {
	content := []byte("%PDF-1.4\ngarbage stream\nTitle: Dom Casmurro\nAuthor: Machado de Assis\n")
	path := writeFile(t, "labels.pdf", content)

	meta, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "Dom Casmurro", meta.Title)
	assert.Equal(t, []string{"Machado de Assis"}, meta.Authors)
}

func TestReadGarbageYieldsEmptyRecord(t *testing.T) {
	path := writeFile(t, "noise.pdf", []byte("\x00\x01\x02 nothing useful here"))

	meta, err := Read(path)
	assert.Error(t, err)
	assert.True(t, meta.Empty())
}

func TestReadMissingFile(t *testing.T) {
	meta, err := Read(filepath.Join(t.TempDir(), "absent.pdf"))
	assert.Error(t, err)
	assert.True(t, meta.Empty())
}

func TestContentText(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "text showing operators",
			content:  `BT /F1 12 Tf (ISBN 978-0-306-40615-7) Tj ET`,
			expected: "ISBN 978-0-306-40615-7",
		},
		{
			name:     "kerned array joins strings",
			content:  `BT [(Cop)-12(yright) 3 (2004)] TJ ET`,
			expected: "Cop yright 2004",
		},
		{
			name:     "escaped parens decoded",
			content:  `(First Edition \(revised\)) Tj`,
			expected: "First Edition (revised)",
		},
		{
			name:     "no strings",
			content:  `q 1 0 0 1 72 720 cm /Im0 Do Q`,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, contentText([]byte(tt.content)))
		})
	}
}

func TestPageTextUnparseablePDF(t *testing.T) {
	path := writeFile(t, "noise.pdf", []byte("\x00\x01\x02 nothing useful here"))
	assert.Equal(t, "", PageText(path, 5, 2))

	assert.Equal(t, "", PageText(filepath.Join(t.TempDir(), "absent.pdf"), 5, 2))
}
