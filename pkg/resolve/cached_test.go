package resolve

import (
	"testing"

	"github.com/shelfmark/shelfmark/pkg/lookupcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithCacheMemoizesHits(t *testing.T) {
	cache, err := lookupcache.NewMemory()
	require.NoError(t, err)
	defer cache.Close()

	next := &stubSearcher{textHit: hit("The Shining", "Stephen King", 0.9)}
	s := WithCache(next, cache)
	ctx := testCtx()

	first, err := s.SearchText(ctx, "The Shining", "Stephen King")
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := s.SearchText(ctx, "The Shining", "Stephen King")
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.Meta.Title, second.Meta.Title)
	assert.Equal(t, 1, next.textCalls, "second lookup must come from the cache")
}

func TestWithCacheMemoizesMisses(t *testing.T) {
	cache, err := lookupcache.NewMemory()
	require.NoError(t, err)
	defer cache.Close()

	next := &stubSearcher{}
	s := WithCache(next, cache)
	ctx := testCtx()

	h, err := s.SearchFreeText(ctx, "completely unknown thing")
	require.NoError(t, err)
	assert.Nil(t, h)

	h, err = s.SearchFreeText(ctx, "completely unknown thing")
	require.NoError(t, err)
	assert.Nil(t, h)
	assert.Equal(t, 1, next.freeCalls)
}

func TestWithCacheNilCachePassesThrough(t *testing.T) {
	next := &stubSearcher{}
	assert.Equal(t, Searcher(next), WithCache(next, nil))
}
