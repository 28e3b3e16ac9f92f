// Package worker drives a library run: it enumerates candidate files,
// resolves each one through the cascade and hands the outcome to the
// filer. Files are independent, so a small pool processes them
// concurrently; the audit log is the only shared sink.
package worker

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shelfmark/shelfmark/pkg/filer"
	"github.com/shelfmark/shelfmark/pkg/localmeta"
	"github.com/shelfmark/shelfmark/pkg/resolve"
)

// Progress receives one notification per finished file. It must be
// fast; it runs on the worker goroutine.
type Progress func(done, total int, rec filer.ActionRecord)

// Summary aggregates one run.
type Summary struct {
	Total      int
	Organized  int
	Quarantine int
	Skipped    int
	Errors     int
}

type Worker struct {
	resolver  *resolve.Resolver
	filer     *filer.Filer
	processes int

	log      logger.Logger
	progress Progress

	mu      sync.Mutex
	summary Summary
	done    int
}

func New(resolver *resolve.Resolver, f *filer.Filer, processes int, progress Progress) *Worker {
	if processes < 1 {
		processes = 1
	}
	return &Worker{
		resolver:  resolver,
		filer:     f,
		processes: processes,
		log:       logger.New(),
		progress:  progress,
	}
}

// Run processes every supported file directly under sourceDir. It stops
// starting new files once ctx is cancelled; in-flight files finish.
func (w *Worker) Run(ctx context.Context, sourceDir string) (Summary, error) {
	files, err := listCandidates(sourceDir)
	if err != nil {
		return Summary{}, err
	}

	w.mu.Lock()
	w.summary = Summary{Total: len(files)}
	w.done = 0
	w.mu.Unlock()

	w.log.Info("run started", logger.Data{"source": sourceDir, "files": len(files), "processes": w.processes})

	queue := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < w.processes; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range queue {
				w.processFile(ctx, path, len(files))
			}
		}()
	}

feed:
	for _, path := range files {
		select {
		case <-ctx.Done():
			break feed
		case queue <- path:
		}
	}
	close(queue)
	wg.Wait()

	w.mu.Lock()
	summary := w.summary
	w.mu.Unlock()

	w.log.Info("run finished", logger.Data{
		"organized":  summary.Organized,
		"quarantine": summary.Quarantine,
		"skipped":    summary.Skipped,
		"errors":     summary.Errors,
	})
	return summary, ctx.Err()
}

func (w *Worker) processFile(ctx context.Context, path string, total int) {
	id, err := uuid.NewRandom()
	if err != nil {
		w.log.Err(err).Error("new uuid error")
		return
	}
	log := w.log.ID(id.String()).Root(logger.Data{"file": filepath.Base(path)})
	ctx = log.WithContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic while processing file", logger.Data{"panic": r})
			w.finish(filer.ActionRecord{Source: path, Status: filer.StatusError}, total)
		}
	}()

	res, err := w.resolver.Resolve(ctx, path)
	if err != nil {
		// Cancellation mid-file: leave it in place for the next run.
		log.Warn("resolution cancelled")
		w.finish(filer.ActionRecord{Source: path, Status: filer.StatusSkipped}, total)
		return
	}

	var rec filer.ActionRecord
	if res.Resolved {
		rec = w.filer.FileResolved(ctx, res)
	} else {
		rec = w.filer.FileUnresolved(ctx, path, res.Reason)
	}
	w.finish(rec, total)
}

func (w *Worker) finish(rec filer.ActionRecord, total int) {
	w.mu.Lock()
	switch rec.Status {
	case filer.StatusMoved:
		w.summary.Organized++
	case filer.StatusMovedToUnknown:
		w.summary.Quarantine++
	case filer.StatusSkipped:
		w.summary.Skipped++
	default:
		w.summary.Errors++
	}
	w.done++
	done := w.done
	progress := w.progress
	w.mu.Unlock()

	if progress != nil {
		progress(done, total, rec)
	}
}

// listCandidates returns the supported files directly under dir, sorted
// so runs are deterministic.
func listCandidates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if localmeta.SupportedExtensions[ext] {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
