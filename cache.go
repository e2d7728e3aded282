package magickit

import (
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/gobeaver/magickit/native"
)

// ============================================================================
// Cache Interface
// ============================================================================

// Cache stores descriptions by key.
// This interface is designed to be simple and backend-agnostic,
// allowing implementations for in-memory, Redis, Memcached, etc.
//
// Implementations should be thread-safe.
type Cache interface {
	// Get retrieves a description from the cache.
	// Returns the description and true if found, "" and false otherwise.
	Get(key string) (string, bool)

	// Set stores a description in the cache with the given TTL.
	// A TTL of 0 means no expiration.
	Set(key string, value string, ttl time.Duration)

	// Delete removes a description from the cache.
	Delete(key string)

	// Clear removes all descriptions from the cache.
	Clear()
}

// CacheStats provides statistics about cache usage.
// Implementations may optionally support this interface.
type CacheStats interface {
	// Stats returns cache statistics.
	Stats() CacheStatistics
}

// CacheStatistics contains cache performance metrics.
type CacheStatistics struct {
	Hits    int64
	Misses  int64
	Size    int64
	HitRate float64
}

// ============================================================================
// In-Memory Cache Implementation
// ============================================================================

type cacheEntry struct {
	value      string
	expiration time.Time
	hasExpiry  bool
}

// MemoryCache is a simple in-memory cache implementation.
// It is thread-safe and supports TTL-based expiration.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	hits    int64
	misses  int64
}

// NewMemoryCache creates a new in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]*cacheEntry),
	}
}

// Get retrieves a description from the cache.
func (c *MemoryCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		c.misses++
		return "", false
	}

	if entry.hasExpiry && time.Now().After(entry.expiration) {
		delete(c.entries, key)
		c.misses++
		return "", false
	}

	c.hits++
	return entry.value, true
}

// Set stores a description in the cache.
func (c *MemoryCache) Set(key string, value string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &cacheEntry{value: value}
	if ttl > 0 {
		entry.expiration = time.Now().Add(ttl)
		entry.hasExpiry = true
	}
	c.entries[key] = entry
}

// Delete removes a description from the cache.
func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes all descriptions from the cache.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// Stats returns cache statistics.
func (c *MemoryCache) Stats() CacheStatistics {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := c.hits + c.misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}

	return CacheStatistics{
		Hits:    c.hits,
		Misses:  c.misses,
		Size:    int64(len(c.entries)),
		HitRate: hitRate,
	}
}

// Cleanup removes expired entries from the cache.
// Call this periodically to prevent memory leaks from expired entries.
func (c *MemoryCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, entry := range c.entries {
		if entry.hasExpiry && now.After(entry.expiration) {
			delete(c.entries, key)
		}
	}
}

var (
	_ Cache      = (*MemoryCache)(nil)
	_ CacheStats = (*MemoryCache)(nil)
)

// ============================================================================
// Describer
// ============================================================================

// Describer describes files, buffers and streams. *Loaded and *CachedDescriber
// implement it.
type Describer interface {
	File(name string) (string, error)
	Buffer(data []byte) (string, error)
	Reader(r io.Reader, maxBytes int64) (string, error)
	Close() error
}

var (
	_ Describer = (*Loaded)(nil)
	_ Describer = (*CachedDescriber)(nil)
)

// CachedDescriber wraps a loaded cookie and remembers its results. Buffers are
// keyed by an xxhash digest of their content; files by path, size and
// modification time, so an edited file is described again.
//
// Results depend on the cookie's flags and databases. Clear the cache after
// changing either, or use a separate cache per configuration.
//
// Example:
//
//	loaded, err := magickit.New(cfg)
//	if err != nil {
//	    return err
//	}
//	d := magickit.NewCachedDescriber(loaded, magickit.NewMemoryCache(), 5*time.Minute)
//	defer d.Close()
//
//	desc, err := d.File("upload.bin")
type CachedDescriber struct {
	loaded *Loaded
	cache  Cache
	ttl    time.Duration
}

// NewCachedDescriber wraps loaded. It takes over closing loaded.
func NewCachedDescriber(loaded *Loaded, cache Cache, ttl time.Duration) *CachedDescriber {
	return &CachedDescriber{loaded: loaded, cache: cache, ttl: ttl}
}

// Loaded returns the wrapped cookie.
func (d *CachedDescriber) Loaded() *Loaded {
	return d.loaded
}

// Cache returns the underlying cache.
func (d *CachedDescriber) Cache() Cache {
	return d.cache
}

// File describes the named file, from the cache when the file is unchanged.
// Files that cannot be stat'ed are passed to the cookie uncached. Once the cookie
// is closed or stale, File fails like the cookie does, cached or not.
func (d *CachedDescriber) File(name string) (string, error) {
	if err := d.loaded.alive(native.FuncFile); err != nil {
		return "", err
	}
	info, err := os.Stat(name)
	if err != nil {
		return d.loaded.File(name)
	}

	key := "file:" + name + ":" + strconv.FormatInt(info.Size(), 10) + ":" +
		strconv.FormatInt(info.ModTime().UnixNano(), 10)
	if desc, ok := d.cache.Get(key); ok {
		return desc, nil
	}

	desc, err := d.loaded.File(name)
	if err != nil {
		return "", err
	}
	d.cache.Set(key, desc, d.ttl)
	return desc, nil
}

// Buffer describes data, from the cache when the same content was seen before.
func (d *CachedDescriber) Buffer(data []byte) (string, error) {
	if err := d.loaded.alive(native.FuncBuffer); err != nil {
		return "", err
	}
	key := bufferKey(data)
	if desc, ok := d.cache.Get(key); ok {
		return desc, nil
	}

	desc, err := d.loaded.Buffer(data)
	if err != nil {
		return "", err
	}
	d.cache.Set(key, desc, d.ttl)
	return desc, nil
}

// Reader describes the first maxBytes of r through Buffer.
func (d *CachedDescriber) Reader(r io.Reader, maxBytes int64) (string, error) {
	data, err := d.loaded.readLimited(r, maxBytes)
	if err != nil {
		return "", err
	}
	return d.Buffer(data)
}

// Close closes the wrapped cookie. The cache is left intact.
func (d *CachedDescriber) Close() error {
	return d.loaded.Close()
}

func bufferKey(data []byte) string {
	return "buffer:" + strconv.FormatUint(xxhash.Sum64(data), 16) + ":" + strconv.Itoa(len(data))
}
