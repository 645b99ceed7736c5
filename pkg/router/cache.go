package router

import (
	"context"
	"runtime"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
)

// DefaultCacheSize is the number of files a CachedLoader remembers.
const DefaultCacheSize = 4096

type loadResult struct {
	module *Module
	err    error
}

// CachedLoader memoizes another ModuleLoader by file path.
//
// A scan consults the loader to detect empty files and the transform loads
// the same files again; the cache makes the second pass free. Failed loads
// are cached as well so a broken file is reported consistently.
// CachedLoader is safe for concurrent use.
type CachedLoader struct {
	next  ModuleLoader
	cache *lru.Cache[string, loadResult]
}

// NewCachedLoader wraps next with an LRU cache of size entries
// (DefaultCacheSize when size <= 0).
func NewCachedLoader(next ModuleLoader, size int) (*CachedLoader, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, loadResult](size)
	if err != nil {
		return nil, err
	}
	return &CachedLoader{next: next, cache: cache}, nil
}

// LoadModule implements ModuleLoader.
func (c *CachedLoader) LoadModule(file string) (*Module, error) {
	if res, ok := c.cache.Get(file); ok {
		return res.module, res.err
	}
	mod, err := c.next.LoadModule(file)
	c.cache.Add(file, loadResult{module: mod, err: err})
	return mod, err
}

// Preload loads files concurrently so that a following scan and transform
// run without touching the underlying loader. Load failures are cached, not
// returned; Preload only fails when ctx is done.
func (c *CachedLoader) Preload(ctx context.Context, files []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, file := range files {
		if c.cache.Contains(file) {
			continue
		}
		file := file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, _ = c.LoadModule(file)
			return nil
		})
	}
	return g.Wait()
}

// Purge drops every cached result.
func (c *CachedLoader) Purge() {
	c.cache.Purge()
}

// Len returns the number of cached files.
func (c *CachedLoader) Len() int {
	return c.cache.Len()
}
