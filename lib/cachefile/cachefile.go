// Package cachefile implements a TTL-keyed cache persisted as a single
// JSON file. Stale entries are silently treated as misses and a corrupt
// or missing file yields an empty cache, never a startup failure.
package cachefile

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

type entry[T any] struct {
	Data      T         `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

type Cache[T any] struct {
	path    string
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry[T]
}

func New[T any](path string, ttl time.Duration) *Cache[T] {
	c := &Cache[T]{
		path:    path,
		ttl:     ttl,
		now:     func() time.Time { return time.Now().UTC() },
		entries: map[string]entry[T]{},
	}
	c.load()
	return c
}

func (c *Cache[T]) load() {
	contents, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to read cache file", "path", c.path, "err", err)
		}
		return
	}
	err = json.Unmarshal(contents, &c.entries)
	if err != nil {
		slog.Warn("ignoring corrupt cache file", "path", c.path, "err", err)
		c.entries = map[string]entry[T]{}
	}
}

// Get returns the cached data for key, or false when the key is
// missing or its entry has outlived the ttl. Expired entries are never
// evicted, only overwritten by the next Set.
func (c *Cache[T]) Get(key string) (T, bool) {
	e, ok := c.entries[key]
	if !ok {
		var zero T
		return zero, false
	}
	if c.now().Sub(e.Timestamp) >= c.ttl {
		var zero T
		return zero, false
	}
	return e.Data, true
}

// Set stores data under key and persists the full entry set to disk.
func (c *Cache[T]) Set(key string, data T) error {
	c.entries[key] = entry[T]{Data: data, Timestamp: c.now()}

	contents, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return err
	}
	err = os.MkdirAll(filepath.Dir(c.path), 0777)
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, contents, 0600)
}
