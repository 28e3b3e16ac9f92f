package booksearch

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/shelfmark/shelfmark/pkg/isbn"
	"github.com/shelfmark/shelfmark/pkg/mediafile"
)

type googleVolumesResponse struct {
	TotalItems int            `json:"totalItems"`
	Items      []googleVolume `json:"items"`
}

type googleVolume struct {
	VolumeInfo struct {
		Title               string   `json:"title"`
		Authors             []string `json:"authors"`
		PublishedDate       string   `json:"publishedDate"`
		Categories          []string `json:"categories"`
		IndustryIdentifiers []struct {
			Type       string `json:"type"`
			Identifier string `json:"identifier"`
		} `json:"industryIdentifiers"`
		ImageLinks struct {
			SmallThumbnail string `json:"smallThumbnail"`
			Thumbnail      string `json:"thumbnail"`
		} `json:"imageLinks"`
	} `json:"volumeInfo"`
}

func (c *Client) googleBooksByISBN(ctx context.Context, value string) (*mediafile.ParsedMetadata, error) {
	u := fmt.Sprintf("%s/volumes?q=%s&maxResults=5",
		c.cfg.GoogleBooksURL, url.QueryEscape("isbn:"+value))

	body, err := c.get(ctx, u, nil)
	if err != nil || body == nil {
		return nil, err
	}

	var resp googleVolumesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.WithStack(err)
	}

	want := isbn.Normalize(value)
	for i := range resp.Items {
		vol := &resp.Items[i]
		// The q=isbn: query is fuzzy on Google's side. Only trust a
		// volume whose identifier list actually carries the ISBN.
		for _, id := range vol.VolumeInfo.IndustryIdentifiers {
			if isbn.Normalize(id.Identifier) == want {
				if meta := googleVolumeMeta(vol); meta != nil {
					return meta, nil
				}
			}
		}
	}
	return nil, nil
}

func (c *Client) googleBooksSearch(ctx context.Context, title, author string) (*Hit, error) {
	q := fmt.Sprintf("intitle:%q", title)
	if author != "" {
		q += fmt.Sprintf(" inauthor:%q", author)
	}
	u := fmt.Sprintf("%s/volumes?q=%s&maxResults=5",
		c.cfg.GoogleBooksURL, url.QueryEscape(q))

	body, err := c.get(ctx, u, nil)
	if err != nil || body == nil {
		return nil, err
	}

	var resp googleVolumesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.WithStack(err)
	}

	var best *Hit
	for i := range resp.Items {
		meta := googleVolumeMeta(&resp.Items[i])
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

// googleVolumeMeta converts a volume into pipeline metadata, or nil if
// the record is too thin to use.
func googleVolumeMeta(vol *googleVolume) *mediafile.ParsedMetadata {
	info := &vol.VolumeInfo
	if len(info.Title) <= 2 {
		return nil
	}
	if len(info.Authors) == 0 || len(info.Authors[0]) <= 2 {
		return nil
	}

	meta := &mediafile.ParsedMetadata{
		Title:         info.Title,
		Authors:       info.Authors,
		PublishedDate: info.PublishedDate,
		Categories:    info.Categories,
		Source:        mediafile.SourceExternalSearch,
	}
	covers := map[string]string{}
	if info.ImageLinks.Thumbnail != "" {
		covers[mediafile.CoverSizeThumbnail] = info.ImageLinks.Thumbnail
	}
	if info.ImageLinks.SmallThumbnail != "" {
		covers[mediafile.CoverSizeSmall] = info.ImageLinks.SmallThumbnail
	}
	if len(covers) > 0 {
		meta.CoverURLs = covers
	}
	return meta
}
