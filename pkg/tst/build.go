package tst

// insert walks from n, creating nodes as needed, until the code unit at the
// last index of key is matched, and stores token/weight on that node.
// Re-inserting a key always lands on the same node and replaces its weight.
func insert(n *node, key []uint16, token string, weight int64, charIndex int) {
	if len(key) == 0 || charIndex >= len(key) {
		return
	}
	for {
		c := key[charIndex]
		if !n.set {
			n.splitchar = c
			n.set = true
		}
		switch {
		case c < n.splitchar:
			if n.loKid == nil {
				n.loKid = &node{}
			}
			n = n.loKid
		case c > n.splitchar:
			if n.hiKid == nil {
				n.hiKid = &node{}
			}
			n = n.hiKid
		default:
			if charIndex == len(key)-1 {
				n.setTerminal(token, weight)
				return
			}
			if n.eqKid == nil {
				n.eqKid = &node{}
			}
			n = n.eqKid
			charIndex++
		}
	}
}

// buildBalanced inserts keys[lo..hi] into root median-first, so the lateral
// lo/hi depth stays near log2(n) even though keys arrive sorted.
// keys must be sorted ascending by UTF-16 code units.
func buildBalanced(keys []string, weights []int64, lo, hi int, root *node) {
	if lo > hi {
		return
	}
	mid := (lo + hi) / 2
	insert(root, encodeKey(keys[mid]), keys[mid], weights[mid], 0)
	buildBalanced(keys, weights, lo, mid-1, root)
	buildBalanced(keys, weights, mid+1, hi, root)
}
