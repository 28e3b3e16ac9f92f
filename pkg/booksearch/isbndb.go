package booksearch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/shelfmark/shelfmark/pkg/mediafile"
)

type isbndbBook struct {
	Title    string   `json:"title"`
	Authors  []string `json:"authors"`
	DatePub  string   `json:"date_published"`
	Subjects []string `json:"subjects"`
	Image    string   `json:"image"`
}

type isbndbBookResponse struct {
	Book isbndbBook `json:"book"`
}

type isbndbSearchResponse struct {
	Total int          `json:"total"`
	Books []isbndbBook `json:"books"`
}

func (c *Client) isbndbHeader() http.Header {
	h := http.Header{}
	h.Set("Authorization", c.cfg.ISBNdbKey)
	return h
}

func (c *Client) isbndbByISBN(ctx context.Context, value string) (*mediafile.ParsedMetadata, error) {
	u := fmt.Sprintf("%s/book/%s", c.cfg.ISBNdbURL, url.PathEscape(value))

	body, err := c.get(ctx, u, c.isbndbHeader())
	if err != nil || body == nil {
		return nil, err
	}

	var resp isbndbBookResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.WithStack(err)
	}
	return isbndbBookMeta(&resp.Book), nil
}

func (c *Client) isbndbSearch(ctx context.Context, title, author string) (*Hit, error) {
	q := url.Values{}
	q.Set("page", "1")
	q.Set("pageSize", "5")
	u := fmt.Sprintf("%s/books/%s?%s", c.cfg.ISBNdbURL, url.PathEscape(title), q.Encode())

	body, err := c.get(ctx, u, c.isbndbHeader())
	if err != nil || body == nil {
		return nil, err
	}

	var resp isbndbSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.WithStack(err)
	}

	var best *Hit
	for i := range resp.Books {
		meta := isbndbBookMeta(&resp.Books[i])
		if meta == nil {
			continue
		}
		score := ScoreHit(title, author, meta)
		if best == nil || score > best.Score {
			meta.Score = score
			best = &Hit{Meta: *meta, Score: score}
		}
	}
	return best, nil
}

func isbndbBookMeta(b *isbndbBook) *mediafile.ParsedMetadata {
	if b.Title == "" {
		return nil
	}
	meta := &mediafile.ParsedMetadata{
		Title:         b.Title,
		Authors:       b.Authors,
		PublishedDate: b.DatePub,
		Categories:    b.Subjects,
		Source:        mediafile.SourceExternalSearch,
	}
	if b.Image != "" {
		meta.CoverURLs = map[string]string{mediafile.CoverSizeThumbnail: b.Image}
	}
	return meta
}
