// Package booksearch queries external book metadata providers. The
// providers form a fixed cascade: Google Books, then OpenLibrary, then
// ISBNdb when an API key is configured, then the offline simulation
// table. The first provider to return a usable hit wins; later
// providers are not consulted.
package booksearch

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shelfmark/shelfmark/pkg/filename"
	"github.com/shelfmark/shelfmark/pkg/mediafile"
	"github.com/shelfmark/shelfmark/pkg/textutil"
)

// minUsableScore is the floor a provider hit must clear before the
// pipeline will trust it. Overlap at or below this is treated as noise.
const minUsableScore = 0.3

// Doer issues HTTP requests. *http.Client satisfies it; tests inject
// their own.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Hit is one provider result scored against the query that produced it.
type Hit struct {
	Meta  mediafile.ParsedMetadata
	Score float64
}

// Usable reports whether the hit clears the trust floor.
func (h *Hit) Usable() bool {
	return h != nil && h.Score > minUsableScore
}

// Config holds provider endpoints and credentials. Endpoints default to
// the public APIs; tests point them at httptest servers.
type Config struct {
	GoogleBooksURL string
	OpenLibraryURL string
	CoversURL      string
	ISBNdbURL      string
	ISBNdbKey      string
	Simulate       bool
}

func DefaultConfig() Config {
	return Config{
		GoogleBooksURL: "https://www.googleapis.com/books/v1",
		OpenLibraryURL: "https://openlibrary.org",
		CoversURL:      "https://covers.openlibrary.org",
		ISBNdbURL:      "https://api2.isbndb.com",
		Simulate:       true,
	}
}

// Client fans queries out across the provider cascade.
type Client struct {
	cfg     Config
	httpc   Doer
	limiter *limiter
	parser  *filename.Parser
}

func New(cfg Config, httpc Doer) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 20 * time.Second}
	}
	return &Client{
		cfg:     cfg,
		httpc:   httpc,
		limiter: newLimiter(),
		parser:  filename.New(filename.DefaultConfig()),
	}
}

// nontrivial reports whether a provider record carries enough of a
// title and author to act on. Records failing this are treated as a
// provider miss so the next provider gets a turn.
func nontrivial(meta *mediafile.ParsedMetadata) bool {
	if meta == nil || len(meta.Title) <= 2 {
		return false
	}
	return len(meta.Authors) > 0 && len(meta.Authors[0]) > 2
}

// SearchISBN resolves an ISBN across the cascade. The returned hit, if
// usable, carries score 1.0: an exact identifier match is not fuzzy.
func (c *Client) SearchISBN(ctx context.Context, isbn string) (*Hit, error) {
	log := logger.FromContext(ctx)

	meta, err := c.googleBooksByISBN(ctx, isbn)
	if err != nil {
		log.Err(err).Warn("google books isbn lookup failed")
	}
	if !nontrivial(meta) {
		meta, err = c.openLibraryByISBN(ctx, isbn)
		if err != nil {
			log.Err(err).Warn("openlibrary isbn lookup failed")
		}
	}
	if !nontrivial(meta) && c.cfg.ISBNdbKey != "" {
		meta, err = c.isbndbByISBN(ctx, isbn)
		if err != nil {
			log.Err(err).Warn("isbndb isbn lookup failed")
		}
	}
	if !nontrivial(meta) {
		return nil, nil
	}
	meta.Source = mediafile.SourceISBNLookup
	meta.Score = 1.0
	return &Hit{Meta: *meta, Score: 1.0}, nil
}

// SearchText runs a structured title/author query through the cascade
// and returns the best-scoring usable hit from the first provider that
// produces one.
func (c *Client) SearchText(ctx context.Context, title, author string) (*Hit, error) {
	log := logger.FromContext(ctx)
	title = textutil.CleanQuery(title)
	author = textutil.CleanQuery(author)
	if title == "" {
		return nil, nil
	}

	hit, err := c.googleBooksSearch(ctx, title, author)
	if err != nil {
		log.Err(err).Warn("google books search failed")
	}
	if hit.Usable() {
		return hit, nil
	}

	hit, err = c.openLibrarySearch(ctx, title, author)
	if err != nil {
		log.Err(err).Warn("openlibrary search failed")
	}
	if hit.Usable() {
		return hit, nil
	}

	if c.cfg.ISBNdbKey != "" {
		hit, err = c.isbndbSearch(ctx, title, author)
		if err != nil {
			log.Err(err).Warn("isbndb search failed")
		}
		if hit.Usable() {
			return hit, nil
		}
	}

	if c.cfg.Simulate {
		if sim := simulate(title, author); sim != nil {
			return sim, nil
		}
	}
	return nil, nil
}

// SearchFreeText is the last networked attempt when structured parsing
// produced nothing trustworthy. It first tries to peel 2 to 4 trailing
// words off the query as an author, accepting the first split where
// both halves pass the filename lookalike checks; with no credible
// split the whole query is searched as a title.
func (c *Client) SearchFreeText(ctx context.Context, query string) (*Hit, error) {
	words := strings.Fields(query)
	if len(words) >= 4 {
		for n := 2; n <= 4 && n < len(words); n++ {
			title := strings.Join(words[:len(words)-n], " ")
			author := strings.Join(words[len(words)-n:], " ")
			if c.parser.LooksLikeTitle(title) && c.parser.LooksLikeAuthor(author) {
				return c.SearchText(ctx, title, author)
			}
		}
	}
	return c.SearchText(ctx, query, "")
}

// get performs a rate-limited GET with retry on transient failures and
// returns the response body. A non-retryable 4xx yields (nil, nil): the
// provider answered, it just has nothing for us.
func (c *Client) get(ctx context.Context, url string, header http.Header) ([]byte, error) {
	const attempts = 3

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := c.limiter.wait(ctx); err != nil {
			return nil, errors.WithStack(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}

		resp, err := c.httpc.Do(req)
		if err != nil {
			lastErr = errors.WithStack(err)
			c.limiter.backoff(attempt, false)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			if readErr != nil {
				return nil, errors.WithStack(readErr)
			}
			return body, nil
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = errors.Errorf("rate limited by %s", hostOf(url))
			c.limiter.backoff(attempt, true)
		case resp.StatusCode >= 500:
			lastErr = errors.Errorf("%s returned %d", hostOf(url), resp.StatusCode)
			c.limiter.backoff(attempt, false)
		default:
			// 4xx other than 429: the request is wrong or the record
			// is absent. Retrying won't change that.
			return nil, nil
		}
	}
	return nil, lastErr
}

func hostOf(url string) string {
	s := strings.TrimPrefix(strings.TrimPrefix(url, "https://"), "http://")
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	return s
}
