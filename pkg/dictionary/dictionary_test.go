package dictionary

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bastiangx/tstserve/internal/utils"
	"github.com/bastiangx/tstserve/pkg/tst"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

func drain(t *testing.T, it tst.InputIterator) []tst.Entry {
	t.Helper()
	var out []tst.Entry
	for {
		e, err := it.Next()
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, e)
	}
}

func TestTextIterator(t *testing.T) {
	input := "# comment\nhello 120\n\nworld\n  help   7  \n"
	entries := drain(t, NewTextIterator(strings.NewReader(input)))

	require.Len(t, entries, 3)
	assert.Equal(t, "hello", string(entries[0].Key))
	assert.Equal(t, int64(120), entries[0].Weight)
	assert.Equal(t, "world", string(entries[1].Key))
	assert.Equal(t, int64(1), entries[1].Weight)
	assert.Equal(t, "help", string(entries[2].Key))
	assert.Equal(t, int64(7), entries[2].Weight)
}

func TestTextIteratorBadLine(t *testing.T) {
	it := NewTextIterator(strings.NewReader("ok 1\nbad weight here\n"))
	_, err := it.Next()
	require.NoError(t, err)
	_, err = it.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func writeChunks(t *testing.T, dir string, chunks ...[]string) {
	t.Helper()
	rank := uint16(0)
	for i, words := range chunks {
		ranks := utils.CreateRankList(len(words))
		for j := range ranks {
			ranks[j] += rank
		}
		rank += uint16(len(words))
		require.NoError(t, WriteChunk(ChunkFilename(dir, i+1), words, ranks))
	}
}

func TestChunkIteratorReadsInOrder(t *testing.T) {
	dir := t.TempDir()
	writeChunks(t, dir, []string{"the", "of"}, []string{"and", "to", "in"})

	chunks, err := GetAvailableChunks(dir)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, 2, chunks[0].WordCount)
	assert.Equal(t, 3, chunks[1].WordCount)

	it, err := NewChunkIterator(dir, 0, 0)
	require.NoError(t, err)
	entries := drain(t, it)
	require.Len(t, entries, 5)
	assert.Equal(t, "the", string(entries[0].Key))
	assert.Equal(t, int64(65535), entries[0].Weight)
	assert.Equal(t, "in", string(entries[4].Key))
	assert.Equal(t, int64(65531), entries[4].Weight)
}

func TestChunkIteratorLimits(t *testing.T) {
	dir := t.TempDir()
	writeChunks(t, dir, []string{"a", "b"}, []string{"c"})

	it, err := NewChunkIterator(dir, 1, 0)
	require.NoError(t, err)
	assert.Len(t, drain(t, it), 2)

	it, err = NewChunkIterator(dir, 0, 3)
	require.NoError(t, err)
	assert.Len(t, drain(t, it), 3)

	it, err = NewChunkIterator(dir, 0, 1)
	require.NoError(t, err)
	assert.Len(t, drain(t, it), 1)
}

func TestChunkIteratorTruncated(t *testing.T) {
	dir := t.TempDir()
	writeChunks(t, dir, []string{"alpha", "beta"})
	path := ChunkFilename(dir, 1)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data[:len(data)-3], 0644))

	it, err := NewChunkIterator(dir, 0, 0)
	require.NoError(t, err)
	_, err = it.Next()
	require.NoError(t, err)
	_, err = it.Next()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestNoChunks(t *testing.T) {
	_, err := NewChunkIterator(t.TempDir(), 0, 0)
	assert.Error(t, err)
}

func TestDetectFileFormat(t *testing.T) {
	dir := t.TempDir()
	writeChunks(t, dir, []string{"word"})

	format, err := DetectFileFormat(ChunkFilename(dir, 1))
	require.NoError(t, err)
	assert.Equal(t, FormatChunk, format)

	text := filepath.Join(dir, "words.txt")
	require.NoError(t, os.WriteFile(text, []byte("word 3\n"), 0644))
	format, err = DetectFileFormat(text)
	require.NoError(t, err)
	assert.Equal(t, FormatText, format)

	badText := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(badText, []byte("word x\n"), 0644))
	_, err = DetectFileFormat(badText)
	assert.Error(t, err)

	other := filepath.Join(dir, "words.csv")
	require.NoError(t, os.WriteFile(other, []byte("word,3\n"), 0644))
	format, err = DetectFileFormat(other)
	assert.Error(t, err)
	assert.Equal(t, FormatUnknown, format)
}

func TestBuildFromChunks(t *testing.T) {
	dir := t.TempDir()
	writeChunks(t, dir, []string{"there", "the", "their"})

	it, err := NewChunkIterator(dir, 0, 0)
	require.NoError(t, err)

	l := tst.New()
	require.NoError(t, l.Build(it))
	got, err := l.Lookup("the", nil, 3, true)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "there", got[0].Key)
}

func TestOpenSource(t *testing.T) {
	dir := t.TempDir()
	chunkDir := filepath.Join(dir, "chunks")
	require.NoError(t, os.Mkdir(chunkDir, 0755))
	writeChunks(t, chunkDir, []string{"one", "two"}, []string{"three"})

	it, closer, err := OpenSource(chunkDir, 0, 2)
	require.NoError(t, err)
	assert.Len(t, drain(t, it), 2)
	require.NoError(t, closer.Close())

	text := filepath.Join(dir, "words.txt")
	require.NoError(t, os.WriteFile(text, []byte("alpha 3\nbeta\n"), 0644))
	it, closer, err = OpenSource(text, 0, 0)
	require.NoError(t, err)
	assert.Len(t, drain(t, it), 2)
	require.NoError(t, closer.Close())

	snapshot := filepath.Join(dir, "words.tst")
	require.NoError(t, tst.New().StoreFile(snapshot))
	_, _, err = OpenSource(snapshot, 0, 0)
	assert.ErrorContains(t, err, "not a corpus")

	_, _, err = OpenSource(filepath.Join(dir, "missing.txt"), 0, 0)
	assert.Error(t, err)
}
