// Package lookupcache persists provider lookup results in SQLite so a
// re-run over the same library does not hit the network again. The
// cache stores full resolution results keyed by normalized query, with
// negative entries so known misses are also remembered.
package lookupcache

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/shelfmark/shelfmark/pkg/mediafile"
	"github.com/shelfmark/shelfmark/pkg/textutil"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// Entry is one cached lookup row. Payload is the JSON-encoded metadata
// record; a row with empty payload is a remembered miss.
type Entry struct {
	bun.BaseModel `bun:"table:lookup_cache"`

	Key        string    `bun:"key,pk"`
	Payload    []byte    `bun:"payload"`
	Score      float64   `bun:"score"`
	CreatedAt  time.Time `bun:"created_at,notnull"`
	AccessedAt time.Time `bun:"accessed_at,notnull"`
}

// Cache wraps the bun handle. The zero value is not usable; use Open or
// NewMemory.
type Cache struct {
	db *bun.DB
}

// Open opens or creates the cache database at path.
func Open(path string) (*Cache, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, errors.Wrap(err, "failed to enable WAL mode")
	}

	c := &Cache{db: db}
	if err := c.migrate(context.Background()); err != nil {
		return nil, err
	}
	return c, nil
}

// NewMemory opens an in-memory cache. Used by tests and by runs with
// caching disabled.
func NewMemory() (*Cache, error) {
	return Open("file::memory:?cache=shared")
}

func (c *Cache) migrate(ctx context.Context) error {
	_, err := c.db.NewCreateTable().
		Model((*Entry)(nil)).
		IfNotExists().
		Exec(ctx)
	return errors.WithStack(err)
}

func (c *Cache) Close() error {
	return errors.WithStack(c.db.Close())
}

// Key builds the cache key for a lookup: kind prefix plus the
// normalized query terms.
func Key(kind string, terms ...string) string {
	parts := make([]string, 0, len(terms)+1)
	parts = append(parts, kind)
	for _, t := range terms {
		parts = append(parts, strings.ToLower(textutil.StripAccents(strings.TrimSpace(t))))
	}
	return strings.Join(parts, "|")
}

// Get returns the cached record for key. found distinguishes a cache
// miss from a remembered provider miss (found with nil meta).
func (c *Cache) Get(ctx context.Context, key string) (meta *mediafile.ParsedMetadata, score float64, found bool, err error) {
	entry := new(Entry)
	err = c.db.NewSelect().Model(entry).Where("key = ?", key).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, false, nil
	}
	if err != nil {
		return nil, 0, false, errors.WithStack(err)
	}
	c.touch(ctx, key)
	if len(entry.Payload) == 0 {
		return nil, 0, true, nil
	}

	meta = new(mediafile.ParsedMetadata)
	if err := json.Unmarshal(entry.Payload, meta); err != nil {
		// A corrupt row is treated as a miss and overwritten on the
		// next Set.
		return nil, 0, false, nil
	}
	return meta, entry.Score, true, nil
}

// touch refreshes the access time of a row. Best effort: a failed
// touch never turns a hit into an error.
func (c *Cache) touch(ctx context.Context, key string) {
	_, _ = c.db.NewUpdate().
		Model((*Entry)(nil)).
		Set("accessed_at = ?", time.Now().UTC()).
		Where("key = ?", key).
		Exec(ctx)
}

// Set stores a lookup result. Pass nil meta to remember a miss.
func (c *Cache) Set(ctx context.Context, key string, meta *mediafile.ParsedMetadata, score float64) error {
	now := time.Now().UTC()
	entry := &Entry{
		Key:        key,
		Score:      score,
		CreatedAt:  now,
		AccessedAt: now,
	}
	if meta != nil {
		payload, err := json.Marshal(meta)
		if err != nil {
			return errors.WithStack(err)
		}
		entry.Payload = payload
	}

	_, err := c.db.NewInsert().
		Model(entry).
		On("CONFLICT (key) DO UPDATE").
		Set("payload = EXCLUDED.payload").
		Set("score = EXCLUDED.score").
		Set("created_at = EXCLUDED.created_at").
		Set("accessed_at = EXCLUDED.accessed_at").
		Exec(ctx)
	return errors.WithStack(err)
}
