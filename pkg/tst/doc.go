/*
Package tst implements an in-memory suggester backed by a ternary search tree.

A Lookup is built in bulk from a weighted corpus, can take single-key
updates afterwards, and answers prefix queries either in key order or ranked
by weight:

	l := tst.New()
	err := l.Build(tst.FromMap(map[string]int64{"apple": 10, "apply": 7}))
	results, err := l.Lookup("app", nil, 5, true)

Keys are compared by UTF-16 code units. Bulk construction inserts the
median of every sorted span first, which keeps the lateral lo/hi depth of
the tree close to log2(n) whatever order the corpus arrived in.

# Snapshots

Store and Load move the tree through a compact pre-order binary stream:

	Stream := Count:uvarint Node
	Node   := SplitChar Mask [Token] [Weight] [lo] [eq] [hi]

SplitChar is a uvarint length and one code unit in modified UTF-8; length
zero marks the placeholder root of an empty tree. Mask bit 0..4 flag lo, eq,
hi, token and weight. Token is a uvarint length plus UTF-8 bytes and Weight
is eight bytes little-endian.

# Concurrency

Only Store and Load take a lock. Build, Add, Get and Lookup are not
synchronized; build first, then serve reads, or guard the Lookup yourself.
*/
package tst
