package probe

import (
	"sync"
	"time"
)

type HeadersCacheConfig struct {
	MaxCacheEntries int
	TTL             time.Duration
}

type headersCacheEntry struct {
	response Response
	storedAt time.Time
	lastUsed time.Time
}

// HeadersCache keeps recent probe responses. Entries expire after TTL and the
// least recently used entry is evicted once MaxCacheEntries is exceeded.
type HeadersCache struct {
	cache   map[string]*headersCacheEntry
	mutex   sync.Mutex
	config  HeadersCacheConfig
	metrics *Metrics
	now     func() time.Time
}

func (hc *HeadersCache) Get(url string) (Response, bool) {
	hc.mutex.Lock()
	defer hc.mutex.Unlock()

	entry, exists := hc.cache[url]
	if exists && hc.now().Sub(entry.storedAt) > hc.config.TTL {
		delete(hc.cache, url)
		hc.setSizeUnsafe()
		exists = false
	}

	if !exists {
		if hc.metrics != nil {
			hc.metrics.cacheMisses.Inc()
		}
		return Response{}, false
	}

	if hc.metrics != nil {
		hc.metrics.cacheHits.Inc()
	}

	entry.lastUsed = hc.now()
	return entry.response.clone(), true
}

func (hc *HeadersCache) Set(url string, resp Response) {
	hc.mutex.Lock()
	defer hc.mutex.Unlock()

	now := hc.now()
	hc.cache[url] = &headersCacheEntry{
		response: resp.clone(),
		storedAt: now,
		lastUsed: now,
	}

	for hc.freeUnsafe() {
	}

	hc.setSizeUnsafe()
}

func (hc *HeadersCache) Len() int {
	hc.mutex.Lock()
	defer hc.mutex.Unlock()

	return len(hc.cache)
}

func (hc *HeadersCache) Clear() {
	hc.mutex.Lock()
	defer hc.mutex.Unlock()

	hc.cache = make(map[string]*headersCacheEntry, hc.config.MaxCacheEntries)
	hc.setSizeUnsafe()
}

// Purge drops expired entries and returns how many were removed.
func (hc *HeadersCache) Purge() int {
	hc.mutex.Lock()
	defer hc.mutex.Unlock()

	now := hc.now()
	removed := 0
	for url, entry := range hc.cache {
		if now.Sub(entry.storedAt) > hc.config.TTL {
			delete(hc.cache, url)
			removed++
		}
	}
	hc.setSizeUnsafe()

	return removed
}

func (hc *HeadersCache) freeUnsafe() (updated bool) {
	if len(hc.cache) <= hc.config.MaxCacheEntries {
		return false
	}

	var oldestURL string
	var oldestTime time.Time
	for url, entry := range hc.cache {
		if oldestURL == "" || entry.lastUsed.Before(oldestTime) {
			oldestURL = url
			oldestTime = entry.lastUsed
		}
	}

	delete(hc.cache, oldestURL)
	if hc.metrics != nil {
		hc.metrics.cacheEvicts.Inc()
	}

	return true
}

func (hc *HeadersCache) setSizeUnsafe() {
	if hc.metrics != nil {
		hc.metrics.cachedEntries.Set(float64(len(hc.cache)))
	}
}

func NewHeadersCache(maxCacheEntries int, ttl time.Duration) *HeadersCache {
	if maxCacheEntries <= 0 {
		maxCacheEntries = 1000
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &HeadersCache{
		cache: make(map[string]*headersCacheEntry, maxCacheEntries),
		config: HeadersCacheConfig{
			MaxCacheEntries: maxCacheEntries,
			TTL:             ttl,
		},
		now: time.Now,
	}
}

func (hc *HeadersCache) WithMetrics(m *Metrics) *HeadersCache {
	hc.metrics = m
	return hc
}

func (r Response) clone() Response {
	r.Header = r.Header.Clone()
	return r
}
