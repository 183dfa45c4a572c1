package assets

import (
	"fmt"
	"os"
	"sync"
)

// Cache is a simple in-memory cache of raw file contents, so loading the same
// path twice reads the disk once.
type Cache struct {
	data map[string][]byte
	mu   sync.RWMutex

	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// ReadFile returns the contents of path, going through the cache.
func (c *Cache) ReadFile(path string) ([]byte, error) {
	if data, ok := c.Get(path); ok {
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	c.Set(path, data)
	return data, nil
}

// Decoder turns raw bytes into an asset.
type Decoder[T any] func(data []byte) (T, error)

// LoadAsync reserves a handle in store and fills it from path on a background
// goroutine. The returned channel is closed once the handle is loaded or failed.
func LoadAsync[T any](store *Store[T], cache *Cache, path string, decode Decoder[T]) (Handle[T], <-chan struct{}) {
	h := store.Reserve()
	done := make(chan struct{})

	go func() {
		defer close(done)

		data, err := cache.ReadFile(path)
		if err != nil {
			store.Fail(h, err)
			return
		}
		value, err := decode(data)
		if err != nil {
			store.Fail(h, fmt.Errorf("decoding %s: %w", path, err))
			return
		}
		if err := store.Insert(h, value); err != nil {
			store.Fail(h, err)
		}
	}()

	return h, done
}
