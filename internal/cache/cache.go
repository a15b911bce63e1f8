// Package cache holds the most recently loaded table keyed by its content.
package cache

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/lacquerai/rankview/internal/dataset"
)

// LoadFunc parses raw upload content into a table.
type LoadFunc func(data []byte) (*dataset.Table, error)

// TableCache is a single-slot cache. Loading new content replaces the
// previous entry wholesale; a failed load leaves the cache empty.
type TableCache struct {
	mu    sync.RWMutex
	key   uint64
	table *dataset.Table
}

// New creates an empty cache.
func New() *TableCache {
	return &TableCache{}
}

// Key returns the content key for data.
func Key(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// GetOrLoad returns the cached table when data matches the cached content,
// otherwise it loads data and caches the result. hit reports whether the
// cached table was reused. A hit under a different source name renames the
// cached entry.
func (c *TableCache) GetOrLoad(data []byte, source string, load LoadFunc) (table *dataset.Table, hit bool, err error) {
	key := Key(data)

	c.mu.RLock()
	if c.table != nil && c.key == key {
		table = c.table
		c.mu.RUnlock()
		if table.Source != source {
			table = c.rename(key, source)
		}
		return table, true, nil
	}
	c.mu.RUnlock()

	table, err = load(data)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.key, c.table = 0, nil
		return nil, false, err
	}

	c.key, c.table = key, table
	return table, false, nil
}

func (c *TableCache) rename(key uint64, source string) *dataset.Table {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.table != nil && c.key == key && c.table.Source != source {
		c.table = c.table.WithSource(source)
	}
	return c.table
}

// Current returns the cached table, or nil when the cache is empty.
func (c *TableCache) Current() *dataset.Table {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.table
}

// Set replaces the cached entry with table loaded from data.
func (c *TableCache) Set(data []byte, table *dataset.Table) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.key, c.table = Key(data), table
}

// Invalidate empties the cache.
func (c *TableCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.key, c.table = 0, nil
}
