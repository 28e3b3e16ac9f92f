// Package filer moves resolved files into the organized library tree
// and unresolved files into quarantine. Every operation produces an
// ActionRecord for the audit log; a file that vanished between
// resolution and filing yields a skipped record, not an error.
package filer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shelfmark/shelfmark/pkg/mediafile"
	"github.com/shelfmark/shelfmark/pkg/resolve"
	"github.com/shelfmark/shelfmark/pkg/sortname"
	"github.com/shelfmark/shelfmark/pkg/textutil"
)

// Status classifies the outcome of one filing operation.
type Status string

const (
	StatusMoved          Status = "moved"
	StatusMovedToUnknown Status = "moved_to_unknown"
	StatusError          Status = "error"
	StatusSkipped        Status = "skipped"
)

// OrganizeMode selects the top-level grouping of the library tree.
type OrganizeMode string

const (
	OrganizeByAuthor OrganizeMode = "author"
	OrganizeByGenre  OrganizeMode = "genre"
)

// ActionRecord is one row of the filing audit log.
type ActionRecord struct {
	Source     string
	Dest       string
	Status     Status
	Title      string
	Author     string
	AuthorSort string
	Year       string
	ISBN       string
	Reason     string
	Timestamp  time.Time
}

// Config controls destination layout and naming.
type Config struct {
	LibraryDir string
	Mode       OrganizeMode
	// Pattern names the destination file with {author}, {title} and
	// {year} placeholders.
	Pattern        string
	MaxFilenameLen int
	DownloadCovers bool

	// StripAccents and CleanCharacters normalize accepted metadata
	// before any names are derived from it.
	StripAccents    bool
	CleanCharacters bool

	// Directory names under the library root for quarantined files,
	// duplicate editions and downloaded covers.
	QuarantineDir string
	DuplicatesDir string
	CoversDir     string
}

func DefaultConfig(libraryDir string) Config {
	return Config{
		LibraryDir:      libraryDir,
		Mode:            OrganizeByAuthor,
		Pattern:         "{author} - {title} ({year})",
		MaxFilenameLen:  180,
		StripAccents:    true,
		CleanCharacters: true,
		QuarantineDir:   "Unknown",
		DuplicatesDir:   "Duplicates",
		CoversDir:       "covers",
	}
}

// Filer performs the moves. Safe for concurrent use; the audit log
// serializes internally.
type Filer struct {
	cfg    Config
	audit  *AuditLog
	covers *coverFetcher
}

func New(cfg Config, audit *AuditLog, httpc Doer) *Filer {
	if cfg.QuarantineDir == "" {
		cfg.QuarantineDir = "Unknown"
	}
	if cfg.DuplicatesDir == "" {
		cfg.DuplicatesDir = "Duplicates"
	}
	if cfg.CoversDir == "" {
		cfg.CoversDir = "covers"
	}
	f := &Filer{cfg: cfg, audit: audit}
	if cfg.DownloadCovers {
		f.covers = newCoverFetcher(httpc, cfg.CoversDir)
	}
	return f
}

// FileResolved moves a resolved file to its organized destination.
func (f *Filer) FileResolved(ctx context.Context, res *resolve.Result) ActionRecord {
	log := logger.FromContext(ctx)
	meta := f.normalizeMeta(res.Meta)
	rec := ActionRecord{
		Source:    res.Path,
		Title:     meta.Title,
		Author:    PrimaryAuthor(&meta),
		Year:      YearFromDate(meta.PublishedDate),
		ISBN:      res.ISBN,
		Timestamp: time.Now().UTC(),
	}
	if rec.Author != UnknownAuthor {
		rec.AuthorSort = sortname.ForPerson(rec.Author)
	} else {
		rec.AuthorSort = rec.Author
	}

	if _, err := os.Stat(res.Path); os.IsNotExist(err) {
		rec.Status = StatusSkipped
		rec.Reason = "source file no longer exists"
		return f.record(ctx, rec)
	}

	destDir := filepath.Join(f.cfg.LibraryDir, f.groupDir(&meta))
	name := DestinationName(f.cfg.Pattern, &meta, f.cfg.MaxFilenameLen) + filepath.Ext(res.Path)
	dest := filepath.Join(destDir, name)

	// An identical name already in place means this edition is filed;
	// the newcomer goes to the duplicates area instead of overwriting.
	if _, err := os.Stat(dest); err == nil {
		destDir = filepath.Join(f.cfg.LibraryDir, f.cfg.DuplicatesDir)
		dest = uniquePath(filepath.Join(destDir, name))
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		rec.Status = StatusError
		rec.Reason = err.Error()
		return f.record(ctx, rec)
	}
	if err := moveFile(res.Path, dest); err != nil {
		rec.Status = StatusError
		rec.Reason = err.Error()
		return f.record(ctx, rec)
	}

	rec.Dest = dest
	rec.Status = StatusMoved

	if f.covers != nil && len(meta.CoverURLs) > 0 {
		if err := f.covers.fetch(ctx, &meta, dest); err != nil {
			log.Err(err).Warn("cover download failed", logger.Data{"path": dest})
		}
	}

	log.Info("file organized", logger.Data{"source": res.Path, "dest": dest})
	return f.record(ctx, rec)
}

// FileUnresolved moves a file the cascade gave up on into quarantine,
// keeping most of its original name for manual triage.
func (f *Filer) FileUnresolved(ctx context.Context, path, reason string) ActionRecord {
	log := logger.FromContext(ctx)
	rec := ActionRecord{
		Source:    path,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		rec.Status = StatusSkipped
		rec.Reason = "source file no longer exists"
		return f.record(ctx, rec)
	}

	destDir := filepath.Join(f.cfg.LibraryDir, f.cfg.QuarantineDir)
	dest := uniquePath(filepath.Join(destDir, textutil.QuarantineName(filepath.Base(path))))

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		rec.Status = StatusError
		rec.Reason = err.Error()
		return f.record(ctx, rec)
	}
	if err := moveFile(path, dest); err != nil {
		rec.Status = StatusError
		rec.Reason = err.Error()
		return f.record(ctx, rec)
	}

	rec.Dest = dest
	rec.Status = StatusMovedToUnknown
	log.Info("file quarantined", logger.Data{"source": path, "dest": dest, "reason": reason})
	return f.record(ctx, rec)
}

// normalizeMeta applies the configured text normalization to an
// accepted record before any names are derived from it. All-caps and
// all-lowercase titles are recased; authors emptied by cleaning are
// dropped.
func (f *Filer) normalizeMeta(meta mediafile.ParsedMetadata) mediafile.ParsedMetadata {
	meta.Title = textutil.SmartTitleCase(f.normalizeField(meta.Title))
	var authors []string
	for _, a := range meta.Authors {
		if a = f.normalizeField(a); a != "" {
			authors = append(authors, a)
		}
	}
	meta.Authors = authors
	return meta
}

func (f *Filer) normalizeField(s string) string {
	if f.cfg.StripAccents {
		s = textutil.StripAccents(s)
	}
	if f.cfg.CleanCharacters {
		s = textutil.CleanSpecialChars(s)
	}
	return strings.TrimSpace(s)
}

func (f *Filer) groupDir(meta *mediafile.ParsedMetadata) string {
	var group string
	switch f.cfg.Mode {
	case OrganizeByGenre:
		group = PrimaryGenre(meta)
	default:
		group = PrimaryAuthor(meta)
	}
	return textutil.SanitizeFilename(group, 80)
}

func (f *Filer) record(ctx context.Context, rec ActionRecord) ActionRecord {
	if f.audit == nil {
		return rec
	}
	if err := f.audit.Append(rec); err != nil {
		logger.FromContext(ctx).Err(errors.WithStack(err)).Warn("audit log write failed")
	}
	return rec
}
