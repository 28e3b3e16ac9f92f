package resolve

import (
	"context"

	"github.com/robinjoseph08/golib/logger"
	"github.com/shelfmark/shelfmark/pkg/booksearch"
	"github.com/shelfmark/shelfmark/pkg/lookupcache"
)

// cachedSearcher memoizes provider lookups, including misses. The cache
// is an optimization only: any cache error falls through to the live
// searcher.
type cachedSearcher struct {
	next  Searcher
	cache *lookupcache.Cache
}

// WithCache wraps a searcher with lookup memoization.
func WithCache(next Searcher, cache *lookupcache.Cache) Searcher {
	if cache == nil {
		return next
	}
	return &cachedSearcher{next: next, cache: cache}
}

func (s *cachedSearcher) SearchISBN(ctx context.Context, isbn string) (*booksearch.Hit, error) {
	return s.lookup(ctx, lookupcache.Key("isbn", isbn), func() (*booksearch.Hit, error) {
		return s.next.SearchISBN(ctx, isbn)
	})
}

func (s *cachedSearcher) SearchText(ctx context.Context, title, author string) (*booksearch.Hit, error) {
	return s.lookup(ctx, lookupcache.Key("text", title, author), func() (*booksearch.Hit, error) {
		return s.next.SearchText(ctx, title, author)
	})
}

func (s *cachedSearcher) SearchFreeText(ctx context.Context, query string) (*booksearch.Hit, error) {
	return s.lookup(ctx, lookupcache.Key("free", query), func() (*booksearch.Hit, error) {
		return s.next.SearchFreeText(ctx, query)
	})
}

func (s *cachedSearcher) lookup(ctx context.Context, key string, fn func() (*booksearch.Hit, error)) (*booksearch.Hit, error) {
	log := logger.FromContext(ctx)

	meta, score, found, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Err(err).Warn("lookup cache read failed", logger.Data{"key": key})
	} else if found {
		if meta == nil {
			return nil, nil
		}
		return &booksearch.Hit{Meta: *meta, Score: score}, nil
	}

	hit, err := fn()
	if err != nil {
		return hit, err
	}

	if hit == nil {
		err = s.cache.Set(ctx, key, nil, 0)
	} else {
		err = s.cache.Set(ctx, key, &hit.Meta, hit.Score)
	}
	if err != nil {
		log.Err(err).Warn("lookup cache write failed", logger.Data{"key": key})
	}
	return hit, nil
}
