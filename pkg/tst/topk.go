package tst

import "container/heap"

// topK keeps the n highest-weight candidates seen so far.
// Internally it is a min-heap, so the weakest candidate sits at index 0.
type topK struct {
	n     int
	items []Result
}

func newTopK(n int) *topK {
	if n < 0 {
		n = 0
	}
	return &topK{n: n, items: make([]Result, 0, min(n, 64))}
}

// weaker reports whether a ranks below b: lower weight, or equal weight
// with the larger UTF-16 key.
func weaker(a, b Result) bool {
	if a.Weight != b.Weight {
		return a.Weight < b.Weight
	}
	return CompareUTF16(a.Key, b.Key) > 0
}

func (t *topK) Len() int           { return len(t.items) }
func (t *topK) Less(i, j int) bool { return weaker(t.items[i], t.items[j]) }
func (t *topK) Swap(i, j int)      { t.items[i], t.items[j] = t.items[j], t.items[i] }
func (t *topK) Push(x any)         { t.items = append(t.items, x.(Result)) }
func (t *topK) Pop() any {
	last := t.items[len(t.items)-1]
	t.items = t.items[:len(t.items)-1]
	return last
}

// insertWithOverflow adds r, evicting the weakest element once more than n
// are held.
func (t *topK) insertWithOverflow(r Result) {
	if t.n == 0 {
		return
	}
	if len(t.items) < t.n {
		heap.Push(t, r)
		return
	}
	if weaker(t.items[0], r) {
		t.items[0] = r
		heap.Fix(t, 0)
	}
}

// drain empties the collector and returns its elements strongest first.
func (t *topK) drain() []Result {
	out := make([]Result, len(t.items))
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(t).(Result)
	}
	return out
}
