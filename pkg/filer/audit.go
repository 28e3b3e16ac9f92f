package filer

import (
	"encoding/csv"
	"os"
	"sync"

	"github.com/pkg/errors"
)

var auditHeader = []string{
	"timestamp", "status", "source", "destination",
	"title", "author", "author_sort", "year", "isbn", "reason",
}

// AuditLog appends filing records to a CSV file. Rows are a set, not a
// sequence: concurrent workers interleave freely.
type AuditLog struct {
	mu sync.Mutex
	f  *os.File
	w  *csv.Writer
}

// OpenAuditLog opens or creates the log at path, writing the header row
// only on creation.
func OpenAuditLog(path string) (*AuditLog, error) {
	info, statErr := os.Stat(path)
	fresh := os.IsNotExist(statErr) || (statErr == nil && info.Size() == 0)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	log := &AuditLog{f: f, w: csv.NewWriter(f)}
	if fresh {
		if err := log.w.Write(auditHeader); err != nil {
			f.Close()
			return nil, errors.WithStack(err)
		}
		log.w.Flush()
	}
	return log, nil
}

func (l *AuditLog) Append(rec ActionRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	row := []string{
		rec.Timestamp.Format("2006-01-02T15:04:05Z"),
		string(rec.Status),
		rec.Source,
		rec.Dest,
		rec.Title,
		rec.Author,
		rec.AuthorSort,
		rec.Year,
		rec.ISBN,
		rec.Reason,
	}
	if err := l.w.Write(row); err != nil {
		return errors.WithStack(err)
	}
	l.w.Flush()
	return errors.WithStack(l.w.Error())
}

func (l *AuditLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Flush()
	return errors.WithStack(l.f.Close())
}
