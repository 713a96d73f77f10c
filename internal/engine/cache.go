// cache.go provides an in-memory cache for compiled field selectors. It
// avoids re-parsing the same mapping paths on every request. Paths are
// immutable strings, so entries never go stale; the cache is simply reset
// when it grows past its limit.
package engine

import (
	"log/slog"
	"sync"

	"github.com/andybalholm/cascadia"

	"lightwork/internal/selector"
)

// maxSelectors bounds the cache; mappings rarely hold more than a few
// hundred distinct paths.
const maxSelectors = 1024

// compiled is a cached compile result. Failed compiles are cached too so
// a broken path is not re-parsed on every render.
type compiled struct {
	sel cascadia.Sel
	err error
}

// selectorCache is a concurrency-safe in-memory cache of compiled selectors.
type selectorCache struct {
	mu      sync.RWMutex
	entries map[string]compiled
}

// newSelectorCache creates an empty selector cache.
func newSelectorCache() *selectorCache {
	return &selectorCache{entries: make(map[string]compiled)}
}

// compile returns the matcher for path, compiling and caching it on a miss.
func (c *selectorCache) compile(path string) (cascadia.Sel, error) {
	c.mu.RLock()
	e, ok := c.entries[path]
	c.mu.RUnlock()
	if ok {
		return e.sel, e.err
	}

	sel, err := selector.Compile(path)

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= maxSelectors {
		c.entries = make(map[string]compiled)
		slog.Debug("selector cache reset", "limit", maxSelectors)
	}
	c.entries[path] = compiled{sel: sel, err: err}
	return sel, err
}

// len reports the number of cached paths.
func (c *selectorCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
