package booksearch

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/shelfmark/shelfmark/pkg/mediafile"
)

type openLibrarySearchResponse struct {
	NumFound int `json:"numFound"`
	Docs     []struct {
		Title            string   `json:"title"`
		AuthorName       []string `json:"author_name"`
		FirstPublishYear int      `json:"first_publish_year"`
		Subject          []string `json:"subject"`
		CoverI           int      `json:"cover_i"`
	} `json:"docs"`
}

type openLibraryEdition struct {
	Title       string `json:"title"`
	PublishDate string `json:"publish_date"`
	Covers      []int  `json:"covers"`
	Authors     []struct {
		Key string `json:"key"`
	} `json:"authors"`
}

type openLibraryAuthor struct {
	Name         string `json:"name"`
	PersonalName string `json:"personal_name"`
}

func (c *Client) openLibraryByISBN(ctx context.Context, value string) (*mediafile.ParsedMetadata, error) {
	u := fmt.Sprintf("%s/isbn/%s.json", c.cfg.OpenLibraryURL, url.PathEscape(value))

	body, err := c.get(ctx, u, nil)
	if err != nil || body == nil {
		return nil, err
	}

	var ed openLibraryEdition
	if err := json.Unmarshal(body, &ed); err != nil {
		return nil, errors.WithStack(err)
	}
	if ed.Title == "" {
		return nil, nil
	}

	meta := &mediafile.ParsedMetadata{
		Title:         ed.Title,
		PublishedDate: ed.PublishDate,
		Source:        mediafile.SourceExternalSearch,
	}
	// Author records need a second fetch per key; cap at the first two
	// so one edition can't fan out into a request storm.
	for i, ref := range ed.Authors {
		if i >= 2 {
			break
		}
		name, err := c.openLibraryAuthorName(ctx, ref.Key)
		if err != nil || name == "" {
			continue
		}
		meta.Authors = append(meta.Authors, name)
	}
	if len(ed.Covers) > 0 && ed.Covers[0] > 0 {
		meta.CoverURLs = c.coverURLs(ed.Covers[0])
	}
	return meta, nil
}

func (c *Client) openLibraryAuthorName(ctx context.Context, key string) (string, error) {
	body, err := c.get(ctx, c.cfg.OpenLibraryURL+key+".json", nil)
	if err != nil || body == nil {
		return "", err
	}
	var a openLibraryAuthor
	if err := json.Unmarshal(body, &a); err != nil {
		return "", errors.WithStack(err)
	}
	if a.Name != "" {
		return a.Name, nil
	}
	return a.PersonalName, nil
}

func (c *Client) openLibrarySearch(ctx context.Context, title, author string) (*Hit, error) {
	q := url.Values{}
	q.Set("title", title)
	if author != "" {
		q.Set("author", author)
	}
	q.Set("limit", "5")
	u := fmt.Sprintf("%s/search.json?%s", c.cfg.OpenLibraryURL, q.Encode())

	body, err := c.get(ctx, u, nil)
	if err != nil || body == nil {
		return nil, err
	}

	var resp openLibrarySearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.WithStack(err)
	}

	var best *Hit
	for _, doc := range resp.Docs {
		if doc.Title == "" || len(doc.AuthorName) == 0 {
			continue
		}
		meta := &mediafile.ParsedMetadata{
			Title:   doc.Title,
			Authors: doc.AuthorName,
			Source:  mediafile.SourceExternalSearch,
		}
		if doc.FirstPublishYear > 0 {
			meta.PublishedDate = strconv.Itoa(doc.FirstPublishYear)
		}
		if len(doc.Subject) > 0 {
			n := len(doc.Subject)
			if n > 5 {
				n = 5
			}
			meta.Categories = doc.Subject[:n]
		}
		if doc.CoverI > 0 {
			meta.CoverURLs = c.coverURLs(doc.CoverI)
		}
		score := ScoreHit(title, author, meta)
		if best == nil || score > best.Score {
			meta.Score = score
			best = &Hit{Meta: *meta, Score: score}
		}
	}
	return best, nil
}

func (c *Client) coverURLs(coverID int) map[string]string {
	return map[string]string{
		mediafile.CoverSizeSmall:     fmt.Sprintf("%s/b/id/%d-S.jpg", c.cfg.CoversURL, coverID),
		mediafile.CoverSizeThumbnail: fmt.Sprintf("%s/b/id/%d-M.jpg", c.cfg.CoversURL, coverID),
		mediafile.CoverSizeLarge:     fmt.Sprintf("%s/b/id/%d-L.jpg", c.cfg.CoversURL, coverID),
	}
}
