// Package geocache persists resolved address coordinates between runs so the
// geocoding provider is never asked the same question twice.
package geocache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/kanishkseth/APTeachersTransfers/internal/domain"
)

// Cache is a durable address→coordinates store backed by a JSON document.
// Entries are never evicted; the file grows monotonically across runs.
type Cache struct {
	path string

	mu      sync.Mutex
	entries map[string]domain.Coordinates
}

// Load reads the cache file at path. A missing file yields an empty cache;
// any other read or decode failure is an error, since overwriting a cache we
// could not read would throw away paid-for lookups.
func Load(path string) (*Cache, error) {
	c := &Cache{
		path:    path,
		entries: make(map[string]domain.Coordinates),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read geocode cache: %w", err)
	}

	if err := json.Unmarshal(data, &c.entries); err != nil {
		return nil, fmt.Errorf("decode geocode cache %s: %w", path, err)
	}
	return c, nil
}

// Get returns the cached coordinates for an address, if present.
func (c *Cache) Get(address string) (domain.Coordinates, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	coords, ok := c.entries[address]
	return coords, ok
}

// Put records the coordinates for an address, replacing any previous entry.
func (c *Cache) Put(address string, coords domain.Coordinates) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[address] = coords
}

// Len reports the number of cached addresses.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Save writes the cache back to its file. The document is written to a
// temporary file in the same directory and renamed into place, so a failed
// save leaves the previous cache file intact rather than truncated.
func (c *Cache) Save() error {
	c.mu.Lock()
	data, err := json.MarshalIndent(c.entries, "", "  ")
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encode geocode cache: %w", err)
	}

	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp cache file: %w", err)
	}

	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace geocode cache: %w", err)
	}
	return nil
}
