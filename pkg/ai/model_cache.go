package ai

import (
	"path/filepath"
	"sync"
)

// ModelCache keeps at most one loaded model, keyed by its path. It replaces a
// process-wide singleton: the owner creates it and passes it to callers.
type ModelCache struct {
	mu      sync.RWMutex
	load    Loader
	path    string
	current Model
}

// NewModelCache creates an empty cache that loads models with load.
func NewModelCache(load Loader) *ModelCache {
	return &ModelCache{load: load}
}

// Get returns the cached model when cfg names the same path, loading it otherwise.
func (c *ModelCache) Get(cfg ModelConfig) (Model, error) {
	wanted := filepath.Clean(cfg.Path)

	c.mu.RLock()
	if c.current != nil && c.path == wanted {
		model := c.current
		c.mu.RUnlock()
		return model, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil && c.path == wanted {
		return c.current, nil
	}

	model, err := c.load(cfg)
	if err != nil {
		return nil, err
	}

	c.path = wanted
	c.current = model
	return model, nil
}

// Invalidate drops the cached model so the next Get reloads.
func (c *ModelCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.path = ""
	c.current = nil
}
