package backend

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

type cacheEntry struct {
	Data       map[string]string `json:"data"`
	LastUpdate time.Time         `json:"last_update"`
}

// VersionCache is a small JSON file backed cache with a TTL.
type VersionCache struct {
	mu       sync.RWMutex
	data     map[string]cacheEntry
	ttl      time.Duration
	filePath string
	now      func() time.Time
}

// DefaultCacheDir is $XDG_CACHE_HOME/pms, falling back to the temp dir.
func DefaultCacheDir() string {
	if userCache, err := os.UserCacheDir(); err == nil {
		return filepath.Join(userCache, "pms")
	}
	return filepath.Join(os.TempDir(), "pms")
}

func NewVersionCache(dir string, ttl time.Duration) *VersionCache {
	if err := os.MkdirAll(dir, 0750); err != nil {
		zap.S().Warnw("could not create cache dir", "dir", dir, "err", err)
	}

	c := &VersionCache{
		data:     make(map[string]cacheEntry),
		ttl:      ttl,
		filePath: filepath.Join(dir, "aur_cache.json"),
		now:      time.Now,
	}
	c.load()
	return c
}

func (c *VersionCache) load() {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.filePath)
	if err != nil {
		return
	}

	if err := json.Unmarshal(data, &c.data); err != nil {
		zap.S().Warnw("could not parse json cache", "filePath", c.filePath, "err", err)
		c.data = make(map[string]cacheEntry)
	}
}

func (c *VersionCache) save() {
	data, err := json.Marshal(c.data)
	if err != nil {
		return
	}
	if err := os.WriteFile(c.filePath, data, 0600); err != nil {
		zap.S().Warnw("could not write to cache file", "filePath", c.filePath, "err", err)
	}
}

func (c *VersionCache) Get(key string) (map[string]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.data[key]
	if !ok || c.now().Sub(entry.LastUpdate) > c.ttl {
		return nil, false
	}
	return entry.Data, true
}

func (c *VersionCache) Set(key string, data map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = cacheEntry{
		Data:       data,
		LastUpdate: c.now(),
	}
	c.save()
}

func (c *VersionCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = make(map[string]cacheEntry)
	if err := os.Remove(c.filePath); err != nil && !os.IsNotExist(err) {
		zap.S().Warnw("could not remove cache file", "err", err)
	}
}
