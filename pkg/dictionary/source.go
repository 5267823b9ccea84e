package dictionary

import (
	"fmt"
	"io"
	"os"

	"github.com/bastiangx/tstserve/pkg/tst"
)

// OpenSource opens the corpus at path for tst.Lookup.Build. A directory is
// read as a set of chunk files, limited by chunkCount and maxWords; a .txt
// file is read as a text dictionary. The returned closer must be closed once
// the iterator is drained. Snapshots are not a corpus and are rejected.
func OpenSource(path string, chunkCount, maxWords int) (tst.InputIterator, io.Closer, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open dictionary %s: %w", path, err)
	}
	if info.IsDir() {
		it, err := NewChunkIterator(path, chunkCount, maxWords)
		if err != nil {
			return nil, nil, err
		}
		return it, it, nil
	}

	format, err := DetectFileFormat(path)
	if err != nil {
		return nil, nil, err
	}
	switch format {
	case FormatText:
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open dictionary %s: %w", path, err)
		}
		return NewTextIterator(f), f, nil
	default:
		return nil, nil, fmt.Errorf("%s is a %s, not a corpus", path, format)
	}
}
