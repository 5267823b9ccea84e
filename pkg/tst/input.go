package tst

import (
	"errors"
	"io"
	"slices"
)

// Entry is one (key, weight) pair of a corpus. Key holds UTF-8 text.
type Entry struct {
	Key    []byte
	Weight int64
}

// InputIterator feeds a corpus to Build. Next returns io.EOF once the
// stream is exhausted.
type InputIterator interface {
	Next() (Entry, error)
	HasPayloads() bool
	HasContexts() bool
}

// Sorted is implemented by iterators that know their own ordering.
// Build only trusts an iterator that reports UTF16Sorted() == true;
// anything else goes through SortUTF16 first.
type Sorted interface {
	UTF16Sorted() bool
}

// SliceIterator serves entries from memory.
type SliceIterator struct {
	entries  []Entry
	pos      int
	payloads bool
	contexts bool
}

// NewSliceIterator returns an iterator over entries, in the given order.
func NewSliceIterator(entries []Entry) *SliceIterator {
	return &SliceIterator{entries: entries}
}

// FromMap builds a SliceIterator from a word → weight map.
func FromMap(m map[string]int64) *SliceIterator {
	entries := make([]Entry, 0, len(m))
	for k, v := range m {
		entries = append(entries, Entry{Key: []byte(k), Weight: v})
	}
	return NewSliceIterator(entries)
}

// WithPayloads marks the iterator as carrying payloads.
func (s *SliceIterator) WithPayloads() *SliceIterator {
	s.payloads = true
	return s
}

// WithContexts marks the iterator as carrying contexts.
func (s *SliceIterator) WithContexts() *SliceIterator {
	s.contexts = true
	return s
}

func (s *SliceIterator) Next() (Entry, error) {
	if s.pos >= len(s.entries) {
		return Entry{}, io.EOF
	}
	e := s.entries[s.pos]
	s.pos++
	return e, nil
}

func (s *SliceIterator) HasPayloads() bool { return s.payloads }
func (s *SliceIterator) HasContexts() bool { return s.contexts }

type sortedIterator struct {
	InputIterator
	entries []Entry
	pos     int
	err     error
}

// SortUTF16 wraps it so entries come out in ascending UTF-16 key order.
// The source is read fully on the first call to Next. Equal keys keep
// their original relative order.
func SortUTF16(it InputIterator) InputIterator {
	if s, ok := it.(Sorted); ok && s.UTF16Sorted() {
		return it
	}
	return &sortedIterator{InputIterator: it, pos: -1}
}

func (s *sortedIterator) UTF16Sorted() bool { return true }

func (s *sortedIterator) Next() (Entry, error) {
	if s.pos < 0 {
		s.pos = 0
		s.entries, s.err = readAll(s.InputIterator)
		if s.err == nil {
			slices.SortStableFunc(s.entries, func(a, b Entry) int {
				return CompareUTF16(string(a.Key), string(b.Key))
			})
		}
	}
	if s.err != nil {
		return Entry{}, s.err
	}
	if s.pos >= len(s.entries) {
		return Entry{}, io.EOF
	}
	e := s.entries[s.pos]
	s.pos++
	return e, nil
}

func readAll(it InputIterator) ([]Entry, error) {
	var out []Entry
	for {
		e, err := it.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
}
