// Package treecache stores the most recent parsed tree for each open file.
// It has its own mutex, distinct from the file table's, and SPEC_FULL.md §5
// fixes the acquisition order at file-table-then-tree-cache to prevent
// deadlock between the two coarse locks.
package treecache

import (
	"sync"
	"sync/atomic"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/TodayNightt/branchy-text-editor/internal/editorerr"
	"github.com/TodayNightt/branchy-text-editor/internal/filetable"
)

// Entry is the cached parse result for one file: the tree itself and the
// exact buffer snapshot it was parsed from, needed as the "source" argument
// to node.Content and query cursor iteration on subsequent highlight
// requests.
type Entry struct {
	Tree   *sitter.Tree
	Source []byte
}

// Cache is the mutex-guarded map from file id to its latest parsed tree.
type Cache struct {
	mu      sync.Mutex
	entries map[filetable.FileID]*Entry

	hits   atomic.Int64
	misses atomic.Int64
}

// New returns an empty tree cache.
func New() *Cache {
	return &Cache{entries: make(map[filetable.FileID]*Entry)}
}

// Store installs tree as the current entry for id, closing and replacing
// whatever tree was previously cached for that id. Ownership of tree passes
// to the cache; callers must not close it themselves.
func (c *Cache) Store(id filetable.FileID, tree *sitter.Tree, source []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[id]; ok && old.Tree != nil {
		old.Tree.Close()
	}

	c.entries[id] = &Entry{Tree: tree, Source: source}
}

// Get returns the cached entry for id, or NotFoundError if nothing has been
// parsed for it yet (e.g. the file is open but in an unsupported language,
// or has not been parsed since being opened).
func (c *Cache) Get(id filetable.FileID) (*Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[id]
	if !ok {
		return nil, editorerr.NotFound("no parsed tree for file")
	}

	return entry, nil
}

// Take removes and returns the previous tree for id without closing it, so
// the caller can hand it to the parser as the previous tree for an
// incremental reparse. Returns (nil, nil, false) if nothing is cached.
func (c *Cache) Take(id filetable.FileID) (tree *sitter.Tree, source []byte, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, found := c.entries[id]
	if !found {
		c.misses.Add(1)

		return nil, nil, false
	}

	c.hits.Add(1)

	delete(c.entries, id)

	return entry.Tree, entry.Source, true
}

// CacheHits returns the cumulative count of Take calls that found a
// previously parsed tree to reuse as an incremental reparse hint.
// Implements observability.CacheStatsProvider.
func (c *Cache) CacheHits() int64 { return c.hits.Load() }

// CacheMisses returns the cumulative count of Take calls that found nothing
// cached, meaning the next parse must start from scratch. Implements
// observability.CacheStatsProvider.
func (c *Cache) CacheMisses() int64 { return c.misses.Load() }

// Evict removes and closes the cached tree for id, if any.
func (c *Cache) Evict(id filetable.FileID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[id]; ok {
		if entry.Tree != nil {
			entry.Tree.Close()
		}

		delete(c.entries, id)
	}
}

// Clear evicts and closes every cached tree, used by the reset command.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, entry := range c.entries {
		if entry.Tree != nil {
			entry.Tree.Close()
		}
	}

	c.entries = make(map[filetable.FileID]*Entry)
}
