// Package cache keeps small JSON values on disk with an expiry, so that
// repeated runs avoid calling remote APIs.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spiffcs/slaclock/internal/log"
)

// Version should be incremented when the entry format changes so that old
// entries are ignored.
const Version = 1

// entry is one cached value with its bookkeeping.
type entry struct {
	Value    json.RawMessage `json:"value"`
	CachedAt time.Time       `json:"cachedAt"`
	Version  int             `json:"version"`
}

// Cache stores entries as one file per key in a directory.
type Cache struct {
	dir string
	now func() time.Time
}

// New returns a cache under the user cache directory.
func New(name string) (*Cache, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return nil, err
	}
	return NewAt(filepath.Join(cacheDir, "slaclock", name))
}

// NewAt returns a cache stored in dir, creating it if needed.
func NewAt(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{dir: dir, now: time.Now}, nil
}

// path generates a file name for key
func (c *Cache) path(key string) string {
	// Replace slashes with underscores to avoid path issues while preserving uniqueness
	safe := strings.NewReplacer("/", "_", string(filepath.Separator), "_").Replace(key)
	return filepath.Join(c.dir, safe+".json")
}

// Get decodes the value stored under key into v. It reports false when the
// entry is missing, unreadable, from another Version or older than ttl.
func (c *Cache) Get(key string, ttl time.Duration, v any) bool {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return false
	}

	// Invalidate if cache version doesn't match (format/schema changed)
	if e.Version != Version {
		log.Debug("cache version mismatch", "cached", e.Version, "current", Version, "key", key)
		return false
	}

	if c.now().Sub(e.CachedAt) > ttl {
		return false
	}

	if err := json.Unmarshal(e.Value, v); err != nil {
		return false
	}
	return true
}

// Set stores v under key.
func (c *Cache) Set(key string, v any) error {
	value, err := json.Marshal(v)
	if err != nil {
		return err
	}

	data, err := json.Marshal(entry{
		Value:    value,
		CachedAt: c.now(),
		Version:  Version,
	})
	if err != nil {
		return err
	}

	return os.WriteFile(c.path(key), data, 0600)
}

// Clear removes all cached entries
func (c *Cache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			return err
		}
	}

	return nil
}
