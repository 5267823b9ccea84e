package tst

import (
	"unicode/utf16"
	"unicode/utf8"
)

// node is a single cell of the ternary tree.
// Children are owned exclusively by their parent.
type node struct {
	splitchar uint16
	set       bool

	loKid *node
	eqKid *node
	hiKid *node

	token    string
	weight   int64
	terminal bool
}

func (n *node) setTerminal(token string, weight int64) {
	n.token = token
	n.weight = weight
	n.terminal = true
}

// encodeKey converts a key into UTF-16 code units, which is the unit
// every comparison in the tree works on.
func encodeKey(key string) []uint16 {
	return utf16.Encode([]rune(key))
}

// normalizeKey returns the string a key is stored under. Each invalid
// UTF-8 byte becomes U+FFFD, exactly as encodeKey sees it, so the token on
// a terminal always spells the path that leads to it.
func normalizeKey(key string) string {
	if utf8.ValidString(key) {
		return key
	}
	return string([]rune(key))
}

// CompareUTF16 orders two strings by their UTF-16 code units.
// It differs from plain Go string comparison for runes above U+FFFF.
func CompareUTF16(a, b string) int {
	ua, ub := encodeKey(a), encodeKey(b)
	n := min(len(ua), len(ub))
	for i := 0; i < n; i++ {
		if ua[i] != ub[i] {
			if ua[i] < ub[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(ua) < len(ub):
		return -1
	case len(ua) > len(ub):
		return 1
	}
	return 0
}
