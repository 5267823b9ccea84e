package suggest

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/bastiangx/tstserve/internal/utils"
	"github.com/bastiangx/tstserve/pkg/mapping"
	"github.com/bastiangx/tstserve/pkg/tst"
	"github.com/charmbracelet/log"
)

// Suggestion is one completion as returned to clients.
type Suggestion struct {
	Word   string
	Weight int64
}

// Options configure a Completer.
type Options struct {
	RankByWeight  bool
	HotCacheSize  int
	CharMap       *mapping.NormalizeCharMap
	LowercaseKeys bool
}

// Completer serves completions from a tst.Lookup. Writers (BuildFrom,
// AddWord, Restore) are serialized against readers by an RWMutex; the
// lookup itself does no locking.
type Completer struct {
	mu     sync.RWMutex
	lookup *tst.Lookup
	cache  *HotCache
	opts   Options
}

func NewCompleter(opts Options) *Completer {
	return &Completer{
		lookup: tst.New(),
		cache:  NewHotCache(opts.HotCacheSize),
		opts:   opts,
	}
}

// normalize turns a word or prefix into the form keys are stored under.
func (c *Completer) normalize(s string) string {
	if c.opts.LowercaseKeys {
		s = strings.ToLower(s)
	}
	return c.opts.CharMap.Map(s)
}

// capitalPositions marks the upper-case runes of prefix as they line up
// with key. The char map runs on the cased prefix first, since rules can
// change the rune count. When lowercasing and mapping disagree on length
// there is nothing to line up and no positions are returned.
func (c *Completer) capitalPositions(prefix, key string) []bool {
	cased := c.opts.CharMap.Map(prefix)
	if utf8.RuneCountInString(cased) != utf8.RuneCountInString(key) {
		return nil
	}
	return utils.CapitalPositions(cased)
}

// BuildFrom replaces the dictionary with the entries of it.
func (c *Completer) BuildFrom(it tst.InputIterator) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.lookup.Build(&normalizingIterator{src: it, normalize: c.normalize}); err != nil {
		return err
	}
	c.cache.Clear()
	log.Debugf("Built dictionary with %s words", utils.FormatWithCommas(c.lookup.Count()))
	return nil
}

// AddWord inserts word or replaces its weight. Empty words are ignored.
func (c *Completer) AddWord(word string, weight int64) bool {
	key := c.normalize(word)
	if key == "" {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	added := c.lookup.Add(key, weight)
	c.cache.Invalidate(key)
	return added
}

// Weight returns the weight stored for word.
func (c *Completer) Weight(word string) (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lookup.Get(c.normalize(word))
}

// Complete returns up to limit suggestions for prefix, in traversal order
// or by descending weight depending on RankByWeight. Upper-case runes typed
// in prefix are carried over to the suggestions.
func (c *Completer) Complete(prefix string, limit int) []Suggestion {
	if limit <= 0 {
		return []Suggestion{}
	}
	key := c.normalize(prefix)

	c.mu.RLock()
	defer c.mu.RUnlock()

	results, ok := c.cache.Get(key, limit)
	if !ok {
		var err error
		results, err = c.lookup.Lookup(key, nil, limit, c.opts.RankByWeight)
		if err != nil {
			log.Errorf("Lookup failed for prefix '%s': %v", prefix, err)
			return []Suggestion{}
		}
		c.cache.Put(key, limit, results)
	}

	capitalPositions := c.capitalPositions(prefix, key)
	suggestions := make([]Suggestion, len(results))
	for i, r := range results {
		suggestions[i] = Suggestion{
			Word:   ApplyCapitalization(r.Key, capitalPositions),
			Weight: r.Weight,
		}
	}
	return suggestions
}

// Save writes a snapshot of the dictionary to path.
func (c *Completer) Save(path string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := utils.WriteFileAtomic(path, c.lookup.Store); err != nil {
		return fmt.Errorf("saving snapshot %s: %w", path, err)
	}
	log.Debugf("Saved snapshot to %s", path)
	return nil
}

// Restore replaces the dictionary with the snapshot at path. On failure the
// current dictionary is kept.
func (c *Completer) Restore(path string) error {
	fresh := tst.New()
	if err := fresh.LoadFile(path); err != nil {
		return fmt.Errorf("restoring snapshot %s: %w", path, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.lookup = fresh
	c.cache.Clear()
	log.Debugf("Restored snapshot from %s", path)
	return nil
}

// Count is the number of entries of the last build.
func (c *Completer) Count() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lookup.Count()
}

func (c *Completer) Stats() map[string]int {
	c.mu.RLock()
	stats := map[string]int{
		"totalWords": int(c.lookup.Count()),
		"sizeBytes":  int(c.lookup.SizeInBytes()),
	}
	c.mu.RUnlock()

	for k, v := range c.cache.Stats() {
		stats[k] = v
	}
	return stats
}

// normalizingIterator applies the completer's key normalization to a corpus.
// It never claims to be sorted, since normalizing can reorder keys.
type normalizingIterator struct {
	src       tst.InputIterator
	normalize func(string) string
}

func (n *normalizingIterator) Next() (tst.Entry, error) {
	e, err := n.src.Next()
	if err != nil {
		return e, err
	}
	e.Key = []byte(n.normalize(string(e.Key)))
	return e, nil
}

func (n *normalizingIterator) HasPayloads() bool { return n.src.HasPayloads() }
func (n *normalizingIterator) HasContexts() bool { return n.src.HasContexts() }
