package channel

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const cacheFile = "channel_cache.json"

// Entry is a cached channel manifest lookup
type Entry struct {
	LastChecked time.Time `json:"last_checked"`
	Release     string    `json:"release"`
	Date        string    `json:"date"`
}

// Cache stores manifest lookups in a JSON file. A nil *Cache stores nothing.
type Cache struct {
	dir    string
	expiry time.Duration
	mu     sync.Mutex
}

// NewCache creates a cache under dir, defaulting to ~/.get-rust
func NewCache(dir string) (*Cache, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".get-rust")
	}
	return &Cache{dir: dir, expiry: cacheExpiry}, nil
}

// Path is the cache file location
func (c *Cache) Path() string {
	return filepath.Join(c.dir, cacheFile)
}

// Key identifies a channel on one dist server
func Key(baseURL, channel string) string {
	return strings.TrimSuffix(baseURL, "/") + "/" + channel
}

// Get returns the entry for key if it is younger than the expiry
func (c *Cache) Get(key string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.load()[key]
	if !ok || time.Since(entry.LastChecked) > c.expiry {
		return Entry{}, false
	}
	return entry, true
}

// Set stores the entry for key
func (c *Cache) Set(key string, entry Entry) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := c.load()
	entries[key] = entry

	if err := os.MkdirAll(c.dir, 0750); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling cache: %w", err)
	}

	return os.WriteFile(c.Path(), data, 0600)
}

// load returns an empty map when the file is missing or unreadable
func (c *Cache) load() map[string]Entry {
	entries := map[string]Entry{}

	data, err := os.ReadFile(c.Path())
	if err != nil {
		return entries
	}
	if err := json.Unmarshal(data, &entries); err != nil || entries == nil {
		// a file holding null decodes without error into a nil map
		return map[string]Entry{}
	}
	return entries
}
