package dictionary

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bastiangx/tstserve/pkg/tst"
	"github.com/charmbracelet/log"
)

// ChunkInfo contains metadata about a chunk file
type ChunkInfo struct {
	ID        int
	Filename  string
	WordCount int
}

// ChunkFilename returns the conventional name of chunk id inside dir.
func ChunkFilename(dir string, id int) string {
	return filepath.Join(dir, fmt.Sprintf("dict_%04d.bin", id))
}

// GetAvailableChunks scans dir for dict_NNNN.bin files, sorted by ID.
func GetAvailableChunks(dir string) ([]ChunkInfo, error) {
	files, err := filepath.Glob(filepath.Join(dir, "dict_*.bin"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan for chunk files: %w", err)
	}

	var chunks []ChunkInfo
	for _, file := range files {
		idStr := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(file), "dict_"), ".bin")
		id, err := strconv.Atoi(idStr)
		if err != nil {
			log.Debugf("Skipping %s: not a chunk name", file)
			continue
		}
		wordCount, err := readChunkHeader(file)
		if err != nil {
			log.Warnf("Failed to get word count for chunk %s: %v", file, err)
			wordCount = 0
		}
		chunks = append(chunks, ChunkInfo{ID: id, Filename: file, WordCount: int(wordCount)})
	}

	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].ID < chunks[j].ID
	})
	return chunks, nil
}

// ChunkIterator streams the entries of a sequence of chunk files.
//
// Each chunk starts with an int32 word count followed by entries of
// uint16 length, UTF-8 word bytes and a uint16 rank, all little-endian.
// Rank 1 is the most frequent word; it is turned into weight 65536-rank.
type ChunkIterator struct {
	chunks   []ChunkInfo
	maxWords int
	emitted  int

	file      *os.File
	reader    *bufio.Reader
	remaining int32
}

// NewChunkIterator reads up to chunkCount chunks from dir (0 for all) and
// stops after maxWords words (0 for no limit).
func NewChunkIterator(dir string, chunkCount, maxWords int) (*ChunkIterator, error) {
	chunks, err := GetAvailableChunks(dir)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunk files found in %s", dir)
	}
	if chunkCount > 0 && chunkCount < len(chunks) {
		chunks = chunks[:chunkCount]
	}
	log.Debugf("Reading %d chunk files from %s", len(chunks), dir)
	return &ChunkIterator{chunks: chunks, maxWords: maxWords}, nil
}

func (it *ChunkIterator) Next() (tst.Entry, error) {
	for {
		if it.maxWords > 0 && it.emitted >= it.maxWords {
			it.Close()
			return tst.Entry{}, io.EOF
		}
		if it.reader != nil && it.remaining > 0 {
			e, err := it.readEntry()
			if err != nil {
				it.Close()
				return tst.Entry{}, err
			}
			it.remaining--
			it.emitted++
			return e, nil
		}
		if err := it.openNext(); err != nil {
			return tst.Entry{}, err
		}
	}
}

func (it *ChunkIterator) HasPayloads() bool { return false }
func (it *ChunkIterator) HasContexts() bool { return false }

// Close releases the current chunk file. Next calls it on EOF and errors.
func (it *ChunkIterator) Close() error {
	if it.file == nil {
		return nil
	}
	err := it.file.Close()
	it.file, it.reader = nil, nil
	return err
}

func (it *ChunkIterator) openNext() error {
	it.Close()
	if len(it.chunks) == 0 {
		return io.EOF
	}
	chunk := it.chunks[0]
	it.chunks = it.chunks[1:]

	file, err := os.Open(chunk.Filename)
	if err != nil {
		return fmt.Errorf("failed to open chunk file %s: %w", chunk.Filename, err)
	}
	it.file = file
	it.reader = bufio.NewReader(file)
	if err := binary.Read(it.reader, binary.LittleEndian, &it.remaining); err != nil {
		it.Close()
		return fmt.Errorf("failed to read chunk header of %s: %w", chunk.Filename, err)
	}
	if it.remaining < 0 || it.remaining > maxChunkWords {
		it.Close()
		return fmt.Errorf("invalid word count %d in %s", it.remaining, chunk.Filename)
	}
	log.Debugf("Loading chunk %d with %d words", chunk.ID, it.remaining)
	return nil
}

func (it *ChunkIterator) readEntry() (tst.Entry, error) {
	var wordLen uint16
	if err := binary.Read(it.reader, binary.LittleEndian, &wordLen); err != nil {
		return tst.Entry{}, fmt.Errorf("failed to read word length: %w", noEOF(err))
	}
	word := make([]byte, wordLen)
	if _, err := io.ReadFull(it.reader, word); err != nil {
		return tst.Entry{}, fmt.Errorf("failed to read word: %w", noEOF(err))
	}
	var rank uint16
	if err := binary.Read(it.reader, binary.LittleEndian, &rank); err != nil {
		return tst.Entry{}, fmt.Errorf("failed to read rank: %w", noEOF(err))
	}
	return tst.Entry{Key: word, Weight: RankToWeight(rank)}, nil
}

// noEOF keeps a short chunk from looking like a clean end of stream.
func noEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// RankToWeight maps rank 1 to 65535, rank 2 to 65534, and so on.
func RankToWeight(rank uint16) int64 {
	return 65536 - int64(rank)
}

// WriteChunk writes words with their ranks in chunk format.
func WriteChunk(path string, words []string, ranks []uint16) error {
	if len(words) != len(ranks) {
		return fmt.Errorf("got %d words and %d ranks", len(words), len(ranks))
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chunk file %s: %w", path, err)
	}
	w := bufio.NewWriter(file)

	write := func(v any) {
		if err == nil {
			err = binary.Write(w, binary.LittleEndian, v)
		}
	}
	write(int32(len(words)))
	for i, word := range words {
		if len(word) > 0xFFFF {
			file.Close()
			return fmt.Errorf("word %d is too long (%d bytes)", i, len(word))
		}
		write(uint16(len(word)))
		write([]byte(word))
		write(ranks[i])
	}
	if err == nil {
		err = w.Flush()
	}
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to write chunk file %s: %w", path, err)
	}
	return file.Close()
}
