package filer

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shelfmark/shelfmark/pkg/mediafile"
)

// Doer issues HTTP requests for cover downloads.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// coverFetcher saves the best available cover image into the covers
// subdirectory beside the filed book.
type coverFetcher struct {
	httpc Doer
	dir   string
}

func newCoverFetcher(httpc Doer, dir string) *coverFetcher {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &coverFetcher{httpc: httpc, dir: dir}
}

// coverPreference is the size order tried when downloading; largest
// first.
var coverPreference = []string{
	mediafile.CoverSizeLarge,
	mediafile.CoverSizeThumbnail,
	mediafile.CoverSizeSmall,
}

func (c *coverFetcher) fetch(ctx context.Context, meta *mediafile.ParsedMetadata, bookPath string) error {
	dest := c.coverPath(bookPath)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return errors.WithStack(err)
	}

	var lastErr error
	for _, size := range coverPreference {
		url, ok := meta.CoverURLs[size]
		if !ok || url == "" {
			continue
		}
		if err := c.download(ctx, url, dest); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}

func (c *coverFetcher) download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.WithStack(err)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return errors.WithStack(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("cover fetch returned %d", resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return errors.WithStack(err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(dest)
		return errors.WithStack(err)
	}
	return nil
}

// coverPath places the cover in the covers subdirectory beside the
// book, with the book's extension swapped for .jpg.
func (c *coverFetcher) coverPath(bookPath string) string {
	base := filepath.Base(bookPath)
	base = strings.TrimSuffix(base, filepath.Ext(base)) + ".jpg"
	return filepath.Join(filepath.Dir(bookPath), c.dir, base)
}
