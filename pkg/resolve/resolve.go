// Package resolve runs the per-file resolution cascade: embedded ISBN,
// then container metadata, then filename heuristics, each confirmed
// against the external providers. A file either leaves fully resolved
// or fully unresolved; rejected candidates from one stage never leak
// into the next.
package resolve

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/robinjoseph08/golib/logger"
	"github.com/shelfmark/shelfmark/pkg/booksearch"
	"github.com/shelfmark/shelfmark/pkg/filename"
	"github.com/shelfmark/shelfmark/pkg/mediafile"
	"github.com/shelfmark/shelfmark/pkg/textutil"
)

const (
	// isbnAcceptScore is the floor for trusting an ISBN-sourced hit.
	isbnAcceptScore = 0.8
	// cascadeAcceptScore is the floor for trusting a candidate built
	// from local metadata confirmed by a provider search.
	cascadeAcceptScore = 0.4
)

// ReasonNoMetadata is the unresolved reason when every stage came up
// empty or failed validation.
const ReasonNoMetadata = "no valid metadata"

// LocalReader reads container metadata and embedded identifiers.
// Implementations must be best-effort: failures surface as empty
// results, never as errors.
type LocalReader interface {
	Read(path, ext string) mediafile.ParsedMetadata
	ExtractISBN(path string) string
}

// Searcher queries the external provider cascade.
type Searcher interface {
	SearchISBN(ctx context.Context, isbn string) (*booksearch.Hit, error)
	SearchText(ctx context.Context, title, author string) (*booksearch.Hit, error)
	SearchFreeText(ctx context.Context, query string) (*booksearch.Hit, error)
}

// Result is the terminal state of one file's resolution.
type Result struct {
	Path     string
	Resolved bool
	Meta     mediafile.ParsedMetadata
	// ISBN is set when the winning candidate came from an ISBN lookup.
	ISBN string
	// Reason explains an unresolved result.
	Reason string
}

// Resolver orchestrates the cascade. Safe for concurrent use: all
// mutable state lives in the collaborators.
type Resolver struct {
	local  LocalReader
	search Searcher
	parser *filename.Parser
}

func New(local LocalReader, search Searcher, parser *filename.Parser) *Resolver {
	if parser == nil {
		parser = filename.New(filename.DefaultConfig())
	}
	return &Resolver{local: local, search: search, parser: parser}
}

// Resolve runs the cascade for one file. It returns an error only for
// context cancellation; every other failure degrades to the next stage.
func (r *Resolver) Resolve(ctx context.Context, path string) (*Result, error) {
	log := logger.FromContext(ctx)

	if res, err := r.isbnStage(ctx, path); err != nil || res != nil {
		return res, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if res, err := r.localStage(ctx, path); err != nil || res != nil {
		return res, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if res, err := r.filenameStage(ctx, path); err != nil || res != nil {
		return res, err
	}

	log.Warn("resolution exhausted", logger.Data{"path": path})
	return &Result{Path: path, Reason: ReasonNoMetadata}, nil
}

func (r *Resolver) isbnStage(ctx context.Context, path string) (*Result, error) {
	log := logger.FromContext(ctx)

	found := r.local.ExtractISBN(path)
	if found == "" {
		return nil, nil
	}
	log.Info("isbn extracted", logger.Data{"path": path, "isbn": found})

	hit, err := r.search.SearchISBN(ctx, found)
	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if hit == nil || hit.Score < isbnAcceptScore {
		// The extracted ISBN is not carried into later stages.
		log.Warn("isbn lookup rejected", logger.Data{"path": path, "isbn": found})
		return nil, nil
	}
	if !ValidateCandidate(&hit.Meta) {
		log.Warn("isbn candidate failed validation", logger.Data{"path": path, "isbn": found})
		return nil, nil
	}

	log.Info("resolved via isbn", logger.Data{"path": path, "isbn": found, "title": hit.Meta.Title})
	return &Result{Path: path, Resolved: true, Meta: hit.Meta, ISBN: found}, nil
}

func (r *Resolver) localStage(ctx context.Context, path string) (*Result, error) {
	log := logger.FromContext(ctx)

	local := r.local.Read(path, filepath.Ext(path))
	title := textutil.CleanQuery(local.Title)
	if len(title) < 2 {
		return nil, nil
	}
	author := textutil.CleanQuery(local.FirstAuthor())
	log.Info("local metadata found", logger.Data{"path": path, "title": title, "author": author})

	hit, err := r.search.SearchText(ctx, title, author)
	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if hit == nil || hit.Score < cascadeAcceptScore {
		log.Warn("local metadata unconfirmed", logger.Data{"path": path, "title": title})
		return nil, nil
	}

	merged := mediafile.Merge(local, hit.Meta)
	if !ValidateCandidate(&merged) {
		log.Warn("local candidate failed validation", logger.Data{"path": path, "title": merged.Title})
		return nil, nil
	}

	log.Info("resolved via local metadata", logger.Data{"path": path, "title": merged.Title})
	return &Result{Path: path, Resolved: true, Meta: merged}, nil
}

func (r *Resolver) filenameStage(ctx context.Context, path string) (*Result, error) {
	log := logger.FromContext(ctx)

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	cleaned := textutil.CleanFilenameQuery(base)
	if cleaned == "" {
		return nil, nil
	}

	title, author := r.parser.Parse(cleaned)
	log.Info("filename parsed", logger.Data{"path": path, "title": title, "author": author})

	hit, err := r.search.SearchText(ctx, title, author)
	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if !hit.Usable() {
		hit, err = r.search.SearchFreeText(ctx, cleaned)
		if err != nil && ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	if !hit.Usable() {
		return nil, nil
	}
	if !ValidateCandidate(&hit.Meta) {
		log.Warn("filename candidate failed validation", logger.Data{"path": path, "title": hit.Meta.Title})
		return nil, nil
	}

	log.Info("resolved via filename", logger.Data{"path": path, "title": hit.Meta.Title})
	return &Result{Path: path, Resolved: true, Meta: hit.Meta}, nil
}
