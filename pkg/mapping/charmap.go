package mapping

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// NormalizeCharMap replaces source strings with their destinations,
// preferring the longest source that matches at each position.
type NormalizeCharMap struct {
	rules     map[string]string
	maxSource int // in runes
}

// Builder collects rules for a NormalizeCharMap.
type Builder struct {
	rules map[string]string
}

func NewBuilder() *Builder {
	return &Builder{rules: make(map[string]string)}
}

// Add registers a mapping. Sources must be non-empty and unique.
func (b *Builder) Add(src, dst string) error {
	if src == "" {
		return errors.New("source must not be empty")
	}
	if _, exists := b.rules[src]; exists {
		return fmt.Errorf("duplicate source %q", src)
	}
	b.rules[src] = dst
	return nil
}

func (b *Builder) Build() *NormalizeCharMap {
	m := &NormalizeCharMap{rules: make(map[string]string, len(b.rules))}
	for src, dst := range b.rules {
		m.rules[src] = dst
		if n := utf8.RuneCountInString(src); n > m.maxSource {
			m.maxSource = n
		}
	}
	return m
}

// Len is the number of rules.
func (m *NormalizeCharMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.rules)
}

// Map applies the rules to s. Replaced text is not scanned again.
// A nil map returns s unchanged.
func (m *NormalizeCharMap) Map(s string) string {
	if m.Len() == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		// byte offsets of the next maxSource rune boundaries
		end := i
		ends := make([]int, 0, m.maxSource)
		for k := 0; k < m.maxSource && end < len(s); k++ {
			_, size := utf8.DecodeRuneInString(s[end:])
			end += size
			ends = append(ends, end)
		}

		matched := false
		for k := len(ends) - 1; k >= 0; k-- {
			if dst, ok := m.rules[s[i:ends[k]]]; ok {
				b.WriteString(dst)
				i = ends[k]
				matched = true
				break
			}
		}
		if !matched {
			_, size := utf8.DecodeRuneInString(s[i:])
			b.WriteString(s[i : i+size])
			i += size
		}
	}
	return b.String()
}
