// Package repocache persists repository enrichment records across
// runs as a single JSON object keyed by repository full name. The file
// is read once at startup and written once at the end of a run.

package repocache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/surepl/commit-census/internal/model"
)

type Cache struct {
	path    string
	entries map[string]model.Repo
}

// Load reads the cache file at path. A missing, unreadable or corrupt
// file degrades to an empty cache, never an error. An empty path gives
// an in-memory cache that Save will skip.
func Load(path string) *Cache {
	cache := &Cache{
		path:    path,
		entries: make(map[string]model.Repo),
	}
	if path == "" {
		return cache
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cache
	}

	entries := make(map[string]model.Repo)
	if err := json.Unmarshal(data, &entries); err != nil {
		return cache
	}

	cache.entries = entries
	return cache
}

func (c *Cache) Has(name string) bool {
	_, ok := c.entries[name]
	return ok
}

func (c *Cache) Get(name string) (model.Repo, bool) {
	repo, ok := c.entries[name]
	return repo, ok
}

func (c *Cache) Put(name string, repo model.Repo) {
	c.entries[name] = repo
}

func (c *Cache) Len() int {
	return len(c.entries)
}

// Save writes the whole cache back via a temp-file rename so a crash
// mid-write cannot corrupt the previous copy.
func (c *Cache) Save() error {
	if c.path == "" {
		return nil
	}

	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal repo cache: %w", err)
	}

	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write repo cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close repo cache: %w", err)
	}

	if err := os.Rename(tmp.Name(), c.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace repo cache: %w", err)
	}

	return nil
}
