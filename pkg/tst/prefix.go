package tst

// prefixCompletion returns every terminal whose key starts with prefix, in
// ascending UTF-16 order. An empty prefix matches the whole tree.
func prefixCompletion(root *node, prefix []uint16) []*node {
	if root == nil {
		return nil
	}
	if len(prefix) == 0 {
		var out []*node
		return collect(root, out)
	}

	p := root
	i := 0
	for p != nil {
		if !p.set {
			return nil
		}
		c := prefix[i]
		switch {
		case c < p.splitchar:
			p = p.loKid
		case c > p.splitchar:
			p = p.hiKid
		default:
			if i == len(prefix)-1 {
				return collectMatch(p)
			}
			i++
			p = p.eqKid
		}
	}
	return nil
}

// collectMatch gathers the prefix node itself plus everything spelled
// below it through eqKid. Its own lo/hi siblings carry a different code
// unit at the last prefix position and are skipped.
func collectMatch(p *node) []*node {
	var out []*node
	if p.terminal {
		out = append(out, p)
	}
	return collect(p.eqKid, out)
}

// collect appends the terminals of the subtree at n in order: lo, self, eq, hi.
func collect(n *node, out []*node) []*node {
	// explicit stack; long keys make eq chains deep
	type frame struct {
		n       *node
		emitted bool
	}
	stack := []frame{}
	if n != nil {
		stack = append(stack, frame{n: n})
	}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if !top.emitted {
			top.emitted = true
			if top.n.loKid != nil {
				stack = append(stack, frame{n: top.n.loKid})
			}
			continue
		}
		cur := top.n
		stack = stack[:len(stack)-1]
		if cur.terminal {
			out = append(out, cur)
		}
		// hi is pushed first so eq is visited before it
		if cur.hiKid != nil {
			stack = append(stack, frame{n: cur.hiKid})
		}
		if cur.eqKid != nil {
			stack = append(stack, frame{n: cur.eqKid})
		}
	}
	return out
}
