package suggest

import (
	"math"
	"sync"

	"github.com/bastiangx/tstserve/pkg/tst"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

type cacheEntry struct {
	limit   int
	results []tst.Result
}

// HotCache keeps the results of recent prefix lookups in a patricia trie.
// Entries are evicted least recently used first.
type HotCache struct {
	hotTrie     *patricia.Trie
	accessTime  map[string]int64
	accessCount int64
	maxEntries  int
	hits        int64
	misses      int64
	mu          sync.Mutex
}

// NewHotCache returns a cache holding at most maxEntries prefixes.
// A size of zero disables caching.
func NewHotCache(maxEntries int) *HotCache {
	return &HotCache{
		hotTrie:    patricia.NewTrie(),
		accessTime: make(map[string]int64, maxEntries),
		maxEntries: maxEntries,
	}
}

// Get returns up to limit cached results for prefix. An entry stored with a
// smaller limit is still usable when it already held every match.
func (hc *HotCache) Get(prefix string, limit int) ([]tst.Result, bool) {
	hc.mu.Lock()
	defer hc.mu.Unlock()

	item := hc.hotTrie.Get(patricia.Prefix(prefix))
	if item == nil {
		hc.misses++
		return nil, false
	}
	entry := item.(*cacheEntry)
	exhaustive := len(entry.results) < entry.limit
	if entry.limit < limit && !exhaustive {
		hc.misses++
		return nil, false
	}

	hc.hits++
	hc.markAccessed(prefix)
	n := min(limit, len(entry.results))
	return entry.results[:n:n], true
}

// Put stores results for prefix. The empty prefix is never cached.
func (hc *HotCache) Put(prefix string, limit int, results []tst.Result) {
	if prefix == "" || hc.maxEntries <= 0 {
		return
	}
	hc.mu.Lock()
	defer hc.mu.Unlock()

	if _, exists := hc.accessTime[prefix]; !exists && len(hc.accessTime) >= hc.maxEntries {
		hc.evictLRU()
	}
	hc.hotTrie.Set(patricia.Prefix(prefix), &cacheEntry{limit: limit, results: results})
	hc.markAccessed(prefix)
}

// Invalidate drops every cached prefix of key, since adding key can change
// the results for each of them.
func (hc *HotCache) Invalidate(key string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()

	var stale []string
	err := hc.hotTrie.VisitPrefixes(patricia.Prefix(key), func(p patricia.Prefix, _ patricia.Item) error {
		stale = append(stale, string(p))
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting hot cache prefixes: %v", err)
	}

	for _, p := range stale {
		hc.hotTrie.Delete(patricia.Prefix(p))
		delete(hc.accessTime, p)
	}
	if len(stale) > 0 {
		log.Debugf("Invalidated %d cached prefixes of '%s'", len(stale), key)
	}
}

// Clear drops every entry. Hit and miss counters are kept.
func (hc *HotCache) Clear() {
	hc.mu.Lock()
	defer hc.mu.Unlock()

	hc.hotTrie = patricia.NewTrie()
	clear(hc.accessTime)
}

// Len is the number of cached prefixes.
func (hc *HotCache) Len() int {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	return len(hc.accessTime)
}

func (hc *HotCache) Stats() map[string]int {
	hc.mu.Lock()
	defer hc.mu.Unlock()

	return map[string]int{
		"hotCacheEntries": len(hc.accessTime),
		"maxHotEntries":   hc.maxEntries,
		"hotCacheHits":    int(hc.hits),
		"hotCacheMisses":  int(hc.misses),
	}
}

func (hc *HotCache) markAccessed(prefix string) {
	hc.accessCount++
	hc.accessTime[prefix] = hc.accessCount
}

func (hc *HotCache) evictLRU() {
	var oldest string
	var oldestTime int64 = math.MaxInt64

	for prefix, t := range hc.accessTime {
		if t < oldestTime {
			oldestTime = t
			oldest = prefix
		}
	}

	if oldest != "" {
		hc.hotTrie.Delete(patricia.Prefix(oldest))
		delete(hc.accessTime, oldest)
		log.Debugf("Evicted prefix '%s' from hot cache", oldest)
	}
}
