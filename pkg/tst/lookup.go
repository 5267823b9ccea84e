package tst

import (
	"fmt"
	"sync"
	"unsafe"
)

// Result is a single completion: the stored key and its weight.
type Result struct {
	Key    string
	Weight int64
}

// Lookup is a ternary search tree suggester.
//
// Build, Add, Get and Lookup do no locking. Callers that mix writers and
// readers across goroutines must coordinate themselves; the intended pattern
// is to build offline and only serve reads afterwards. Store and Load share a
// mutex, which keeps snapshots consistent with respect to each other only.
type Lookup struct {
	mu    sync.Mutex
	root  *node
	count int64
}

// New returns an empty Lookup whose root is a placeholder node.
func New() *Lookup {
	return &Lookup{root: &node{}}
}

// Build replaces the tree with one built from it. Prior contents are
// discarded, not merged. Sources declaring payloads or contexts are refused
// before anything is touched, and a read error leaves the old tree in place.
func (l *Lookup) Build(it InputIterator) error {
	if it.HasPayloads() {
		return fmt.Errorf("%w: payloads", ErrUnsupportedFeature)
	}
	if it.HasContexts() {
		return fmt.Errorf("%w: contexts", ErrUnsupportedFeature)
	}

	entries, err := readAll(SortUTF16(it))
	if err != nil {
		return fmt.Errorf("reading corpus: %w", err)
	}

	keys := make([]string, 0, len(entries))
	weights := make([]int64, 0, len(entries))
	for _, e := range entries {
		if len(e.Key) == 0 {
			continue
		}
		keys = append(keys, normalizeKey(string(e.Key)))
		weights = append(weights, e.Weight)
	}

	root := &node{}
	buildBalanced(keys, weights, 0, len(keys)-1, root)
	l.root = root
	l.count = int64(len(keys))
	return nil
}

// Add inserts key or replaces the weight of an existing key. Count is not
// changed: it only reflects the last Build. Invalid UTF-8 in key is stored
// as U+FFFD.
func (l *Lookup) Add(key string, weight int64) bool {
	key = normalizeKey(key)
	insert(l.root, encodeKey(key), key, weight, 0)
	return true
}

// Get returns the weight stored for exactly key.
func (l *Lookup) Get(key string) (int64, bool) {
	if key == "" {
		return 0, false
	}
	key = normalizeKey(key)
	for _, n := range prefixCompletion(l.root, encodeKey(key)) {
		if n.token == key {
			return n.weight, true
		}
	}
	return 0, false
}

// Lookup returns up to num completions of prefix. With rankByWeight the
// results are the num heaviest, heaviest first; otherwise they are the first
// num in ascending key order, regardless of weight.
func (l *Lookup) Lookup(prefix string, contexts []string, num int, rankByWeight bool) ([]Result, error) {
	if len(contexts) > 0 {
		return nil, fmt.Errorf("%w: contexts", ErrUnsupportedFeature)
	}
	if num <= 0 {
		return []Result{}, nil
	}

	matches := prefixCompletion(l.root, encodeKey(prefix))

	if !rankByWeight {
		n := min(num, len(matches))
		out := make([]Result, n)
		for i := 0; i < n; i++ {
			out[i] = Result{Key: matches[i].token, Weight: matches[i].weight}
		}
		return out, nil
	}

	q := newTopK(num)
	for _, m := range matches {
		q.insertWithOverflow(Result{Key: m.token, Weight: m.weight})
	}
	return q.drain(), nil
}

// Count is the number of entries given to the last Build.
func (l *Lookup) Count() int64 {
	return l.count
}

// SizeInBytes estimates the memory held by the tree. Advisory only.
func (l *Lookup) SizeInBytes() int64 {
	size := int64(unsafe.Sizeof(Lookup{}))
	nodeSize := int64(unsafe.Sizeof(node{}))

	stack := []*node{l.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil {
			continue
		}
		size += nodeSize + int64(len(n.token))
		stack = append(stack, n.loKid, n.eqKid, n.hiKid)
	}
	return size
}
