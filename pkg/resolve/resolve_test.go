package resolve

import (
	"context"
	"testing"

	"github.com/robinjoseph08/golib/logger"
	"github.com/shelfmark/shelfmark/pkg/booksearch"
	"github.com/shelfmark/shelfmark/pkg/mediafile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLocal struct {
	isbn      string
	meta      mediafile.ParsedMetadata
	isbnCalls int
	readCalls int
}

func (s *stubLocal) Read(path, ext string) mediafile.ParsedMetadata {
	s.readCalls++
	return s.meta
}

func (s *stubLocal) ExtractISBN(path string) string {
	s.isbnCalls++
	return s.isbn
}

type stubSearcher struct {
	isbnHit *booksearch.Hit
	textHit *booksearch.Hit
	freeHit *booksearch.Hit

	isbnCalls int
	textCalls int
	freeCalls int
}

func (s *stubSearcher) SearchISBN(ctx context.Context, isbn string) (*booksearch.Hit, error) {
	s.isbnCalls++
	return s.isbnHit, nil
}

func (s *stubSearcher) SearchText(ctx context.Context, title, author string) (*booksearch.Hit, error) {
	s.textCalls++
	return s.textHit, nil
}

func (s *stubSearcher) SearchFreeText(ctx context.Context, query string) (*booksearch.Hit, error) {
	s.freeCalls++
	return s.freeHit, nil
}

func testCtx() context.Context {
	return logger.New().WithContext(context.Background())
}

func hit(title, author string, score float64) *booksearch.Hit {
	return &booksearch.Hit{
		Meta: mediafile.ParsedMetadata{
			Title:   title,
			Authors: []string{author},
			Source:  mediafile.SourceExternalSearch,
			Score:   score,
		},
		Score: score,
	}
}

func TestResolveISBNStageWins(t *testing.T) {
	local := &stubLocal{
		isbn: "9780385121675",
		meta: mediafile.ParsedMetadata{Title: "Misleading Local Title", Authors: []string{"Wrong Person"}},
	}
	search := &stubSearcher{
		isbnHit: hit("The Shining", "Stephen King", 1.0),
		textHit: hit("Something Else", "Someone Else", 0.9),
	}
	r := New(local, search, nil)

	res, err := r.Resolve(testCtx(), "/books/whatever.epub")
	require.NoError(t, err)
	require.True(t, res.Resolved)
	assert.Equal(t, "The Shining", res.Meta.Title)
	assert.Equal(t, "9780385121675", res.ISBN)

	// Later stages must not even be invoked.
	assert.Equal(t, 1, search.isbnCalls)
	assert.Equal(t, 0, local.readCalls)
	assert.Equal(t, 0, search.textCalls)
	assert.Equal(t, 0, search.freeCalls)
}

func TestResolveRejectedISBNIsNotReused(t *testing.T) {
	local := &stubLocal{
		isbn: "9780385121675",
		meta: mediafile.ParsedMetadata{Title: "The Stand", Authors: []string{"Stephen King"}},
	}
	search := &stubSearcher{
		isbnHit: hit("Wrong Book", "Nobody", 0.5),
		textHit: hit("The Stand", "Stephen King", 0.9),
	}
	r := New(local, search, nil)

	res, err := r.Resolve(testCtx(), "/books/the stand.epub")
	require.NoError(t, err)
	require.True(t, res.Resolved)
	assert.Equal(t, "The Stand", res.Meta.Title)
	assert.Equal(t, "", res.ISBN, "rejected isbn must not tag the result")
	assert.Equal(t, 1, search.isbnCalls)
	assert.Equal(t, 1, search.textCalls)
}

func TestResolveLocalStageMergesHit(t *testing.T) {
	local := &stubLocal{
		meta: mediafile.ParsedMetadata{
			Title:         "Shining",
			Authors:       []string{"Stephen King"},
			PublishedDate: "1977",
			Source:        mediafile.SourceLocalContainer,
		},
	}
	search := &stubSearcher{
		textHit: hit("The Shining", "Stephen King", 0.8),
	}
	r := New(local, search, nil)

	res, err := r.Resolve(testCtx(), "/books/shining.epub")
	require.NoError(t, err)
	require.True(t, res.Resolved)
	assert.Equal(t, "The Shining", res.Meta.Title, "longer provider title wins the merge")
	assert.Equal(t, []string{"Stephen King"}, res.Meta.Authors)
	assert.Equal(t, 0, search.freeCalls)
}

func TestResolveLocalStageBelowConfidenceFallsThrough(t *testing.T) {
	local := &stubLocal{
		meta: mediafile.ParsedMetadata{Title: "Some Local Title", Authors: []string{"A Person"}},
	}
	search := &stubSearcher{
		textHit: hit("Weak Match", "Other", 0.35),
	}
	r := New(local, search, nil)

	res, err := r.Resolve(testCtx(), "/books/Stephen King - It.epub")
	require.NoError(t, err)
	// 0.35 is usable for the filename stage but below the cascaded
	// floor for the local stage.
	require.True(t, res.Resolved)
	assert.Equal(t, "Weak Match", res.Meta.Title)
	assert.Equal(t, 2, search.textCalls)
}

func TestResolveFilenameStageFreeTextFallback(t *testing.T) {
	local := &stubLocal{}
	search := &stubSearcher{
		freeHit: hit("Dom Casmurro", "Machado de Assis", 0.6),
	}
	r := New(local, search, nil)

	res, err := r.Resolve(testCtx(), "/books/dom casmurro completo.pdf")
	require.NoError(t, err)
	require.True(t, res.Resolved)
	assert.Equal(t, "Dom Casmurro", res.Meta.Title)
	assert.Equal(t, 1, search.textCalls)
	assert.Equal(t, 1, search.freeCalls)
}

func TestResolveUnresolved(t *testing.T) {
	local := &stubLocal{}
	search := &stubSearcher{}
	r := New(local, search, nil)

	res, err := r.Resolve(testCtx(), "/books/garbage scan.pdf")
	require.NoError(t, err)
	assert.False(t, res.Resolved)
	assert.Equal(t, ReasonNoMetadata, res.Reason)
}

func TestResolveValidatorRejectsDenylistedHit(t *testing.T) {
	local := &stubLocal{}
	search := &stubSearcher{
		textHit: hit("Untitled Collection", "Real Person", 0.9),
	}
	r := New(local, search, nil)

	res, err := r.Resolve(testCtx(), "/books/some real name.pdf")
	require.NoError(t, err)
	assert.False(t, res.Resolved)
}

func TestResolveCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(testCtx())
	cancel()

	r := New(&stubLocal{}, &stubSearcher{}, nil)
	_, err := r.Resolve(ctx, "/books/x.pdf")
	assert.Error(t, err)
}
