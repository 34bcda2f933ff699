package geocode

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Cache stores batch geocode results keyed by the exact batch content,
// so repeated pipeline runs never re-issue the same service request.
// Implementations are single-process; pipeline runs are not expected to
// share a cache directory concurrently.
type Cache interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, val []byte) error
	Close() error
}

// BatchKey returns the SHA-256 hex of a batch's exact content.
func BatchKey(batch []LocalityInput) string {
	var b strings.Builder
	for _, in := range batch {
		b.WriteString(strings.ToLower(strings.TrimSpace(in.Name)))
		b.WriteByte('|')
		b.WriteString(strings.ToLower(strings.TrimSpace(in.State)))
		b.WriteByte('\n')
	}
	return fmt.Sprintf("%x", sha256.Sum256([]byte(b.String())))
}

// SQLiteCache persists batches to a SQLite file, bounded by a byte
// budget with least-recently-used eviction.
type SQLiteCache struct {
	db       *sql.DB
	maxBytes int64
}

const cacheMigration = `
CREATE TABLE IF NOT EXISTS geocode_cache (
	batch_key  TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	bytes      INTEGER NOT NULL,
	last_used  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_geocode_cache_last_used ON geocode_cache(last_used);
`

// NewSQLiteCache opens (creating if needed) the cache database at path
// with the given byte budget.
func NewSQLiteCache(path string, maxBytes int64) (*SQLiteCache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrap(err, "geocode: create cache dir")
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: open cache")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck,gosec
			return nil, eris.Wrapf(err, "geocode: exec %s", pragma)
		}
	}
	if _, err := db.Exec(cacheMigration); err != nil {
		db.Close() //nolint:errcheck,gosec
		return nil, eris.Wrap(err, "geocode: migrate cache")
	}
	return &SQLiteCache{db: db, maxBytes: maxBytes}, nil
}

// Get returns the payload for key and refreshes its recency.
func (c *SQLiteCache) Get(key string) ([]byte, bool, error) {
	var payload []byte
	err := c.db.QueryRow("SELECT payload FROM geocode_cache WHERE batch_key = ?", key).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "geocode: cache get")
	}
	if _, err := c.db.Exec("UPDATE geocode_cache SET last_used = ? WHERE batch_key = ?", time.Now().UTC(), key); err != nil {
		return nil, false, eris.Wrap(err, "geocode: cache touch")
	}
	return payload, true, nil
}

// Put stores the payload and evicts least-recently-used entries until
// the cache fits its byte budget again. Entries are never deleted
// otherwise.
func (c *SQLiteCache) Put(key string, val []byte) error {
	_, err := c.db.Exec(`
		INSERT INTO geocode_cache (batch_key, payload, bytes, last_used)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (batch_key) DO UPDATE SET
			payload = excluded.payload,
			bytes = excluded.bytes,
			last_used = excluded.last_used`,
		key, val, int64(len(val)), time.Now().UTC(),
	)
	if err != nil {
		return eris.Wrap(err, "geocode: cache put")
	}
	return c.evict()
}

func (c *SQLiteCache) evict() error {
	if c.maxBytes <= 0 {
		return nil
	}
	for {
		var total int64
		if err := c.db.QueryRow("SELECT COALESCE(SUM(bytes), 0) FROM geocode_cache").Scan(&total); err != nil {
			return eris.Wrap(err, "geocode: cache size")
		}
		if total <= c.maxBytes {
			return nil
		}
		res, err := c.db.Exec(`
			DELETE FROM geocode_cache WHERE batch_key IN (
				SELECT batch_key FROM geocode_cache ORDER BY last_used ASC LIMIT 1
			)`)
		if err != nil {
			return eris.Wrap(err, "geocode: cache evict")
		}
		n, err := res.RowsAffected()
		if err != nil || n == 0 {
			return eris.Wrap(err, "geocode: cache evict affected")
		}
	}
}

// Close closes the underlying database.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

// MemoryCache is the in-memory Cache used in tests and when no cache
// directory is configured.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]byte)}
}

// Get implements Cache.
func (c *MemoryCache) Get(key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok, nil
}

// Put implements Cache.
func (c *MemoryCache) Put(key string, val []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = val
	return nil
}

// Close implements Cache.
func (c *MemoryCache) Close() error { return nil }

// CachingClient wraps a Client with batch-level caching.
type CachingClient struct {
	client Client
	cache  Cache
}

// NewCachingClient wraps client so identical batches hit the cache
// instead of the service.
func NewCachingClient(client Client, cache Cache) *CachingClient {
	return &CachingClient{client: client, cache: cache}
}

// BatchLookup implements Client.
func (c *CachingClient) BatchLookup(ctx context.Context, batch []LocalityInput) ([]Result, error) {
	if len(batch) == 0 {
		return nil, nil
	}
	key := BatchKey(batch)

	if payload, ok, err := c.cache.Get(key); err == nil && ok {
		var results []Result
		if jsonErr := json.Unmarshal(payload, &results); jsonErr == nil && len(results) == len(batch) {
			return results, nil
		}
	}

	results, err := c.client.BatchLookup(ctx, batch)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(results); err == nil {
		_ = c.cache.Put(key, payload) // cache failures never fail the lookup
	}
	return results, nil
}
