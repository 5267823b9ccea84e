package dictionary

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bastiangx/tstserve/pkg/tst"
)

// TextIterator reads a plain text dictionary, one "word weight" pair per
// line. A missing weight counts as 1. Blank lines and '#' comments are
// skipped. Entries come out in file order.
type TextIterator struct {
	scanner *bufio.Scanner
	line    int
}

func NewTextIterator(r io.Reader) *TextIterator {
	return &TextIterator{scanner: bufio.NewScanner(r)}
}

func (it *TextIterator) Next() (tst.Entry, error) {
	for it.scanner.Scan() {
		it.line++
		line := strings.TrimSpace(it.scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		word, weight, err := parseTextLine(line)
		if err != nil {
			return tst.Entry{}, fmt.Errorf("line %d: %w", it.line, err)
		}
		return tst.Entry{Key: []byte(word), Weight: weight}, nil
	}
	if err := it.scanner.Err(); err != nil {
		return tst.Entry{}, err
	}
	return tst.Entry{}, io.EOF
}

func (it *TextIterator) HasPayloads() bool { return false }
func (it *TextIterator) HasContexts() bool { return false }

func parseTextLine(line string) (string, int64, error) {
	fields := strings.Fields(line)
	switch len(fields) {
	case 1:
		return fields[0], 1, nil
	case 2:
		weight, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return "", 0, fmt.Errorf("invalid weight %q for %q", fields[1], fields[0])
		}
		return fields[0], weight, nil
	}
	return "", 0, fmt.Errorf("expected \"word [weight]\", got %q", line)
}
