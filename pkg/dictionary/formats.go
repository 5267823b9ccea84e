package dictionary

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// FileFormat represents different dictionary file formats
type FileFormat int

const (
	FormatUnknown  FileFormat = iota
	FormatChunk               // dict_NNNN.bin chunk
	FormatText                // "word weight" lines
	FormatSnapshot            // tree snapshot written by tst.Lookup.Store
)

// FormatInfo contains metadata about a dictionary file format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
	MinSize     int64 // Minimum expected file size in bytes
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatChunk: {
		Format:      FormatChunk,
		Description: "Chunked Binary Dictionary",
		Extensions:  []string{".bin"},
		MinSize:     4, // word count header
	},
	FormatText: {
		Format:      FormatText,
		Description: "Plain Text Dictionary",
		Extensions:  []string{".txt"},
		MinSize:     1,
	},
	FormatSnapshot: {
		Format:      FormatSnapshot,
		Description: "Ternary Tree Snapshot",
		Extensions:  []string{".tst"},
		MinSize:     3, // count, empty splitchar, mask
	},
}

// maxChunkWords is a sanity bound on chunk headers.
const maxChunkWords = 1000000

func (f FileFormat) String() string {
	if info, ok := supportedFormats[f]; ok {
		return info.Description
	}
	return "Unknown"
}

// ValidateFileFormat checks if a file matches the expected format
func ValidateFileFormat(filename string, expectedFormat FileFormat) error {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filename, err)
	}

	formatInfo, exists := supportedFormats[expectedFormat]
	if !exists {
		return fmt.Errorf("unknown format: %v", expectedFormat)
	}

	if fileInfo.Size() < formatInfo.MinSize {
		return fmt.Errorf("file %s is too small (%d bytes) for format %s (minimum: %d bytes)",
			filename, fileInfo.Size(), formatInfo.Description, formatInfo.MinSize)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	validExt := false
	for _, validExtension := range formatInfo.Extensions {
		if ext == validExtension {
			validExt = true
			break
		}
	}
	if !validExt {
		return fmt.Errorf("file %s has invalid extension %s for format %s (expected: %v)",
			filename, ext, formatInfo.Description, formatInfo.Extensions)
	}

	switch expectedFormat {
	case FormatChunk:
		return validateChunkFormat(filename)
	case FormatText:
		return validateTextFormat(filename)
	}
	return nil
}

// validateChunkFormat checks the word count header of a chunk file
func validateChunkFormat(filename string) error {
	wordCount, err := readChunkHeader(filename)
	if err != nil {
		return err
	}
	if wordCount < 0 {
		return fmt.Errorf("invalid word count in %s: %d (negative)", filename, wordCount)
	}
	if wordCount > maxChunkWords {
		return fmt.Errorf("suspicious word count in %s: %d (too large)", filename, wordCount)
	}

	log.Debugf("Chunk file %s validated: %d words", filename, wordCount)
	return nil
}

// validateTextFormat checks that the first line of a text dictionary parses
func validateTextFormat(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, _, err := parseTextLine(line); err != nil {
			return fmt.Errorf("text file %s: %w", filename, err)
		}
		break
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read from text file %s: %w", filename, err)
	}

	log.Debugf("Text file %s validated", filename)
	return nil
}

func readChunkHeader(filename string) (int32, error) {
	file, err := os.Open(filename)
	if err != nil {
		return 0, fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	var wordCount int32
	if err := binary.Read(file, binary.LittleEndian, &wordCount); err != nil {
		return 0, fmt.Errorf("failed to read header from %s: %w", filename, err)
	}
	return wordCount, nil
}

// DetectFileFormat attempts to detect the format of a file
func DetectFileFormat(filename string) (FileFormat, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	candidates := map[string]FileFormat{
		".bin": FormatChunk,
		".txt": FormatText,
		".tst": FormatSnapshot,
	}
	if format, ok := candidates[ext]; ok {
		err := ValidateFileFormat(filename, format)
		if err == nil {
			return format, nil
		}
		log.Debugf("File %s failed %s validation: %v", filename, format, err)
	}
	return FormatUnknown, fmt.Errorf("unable to detect format for file %s", filename)
}

// GetFormatInfo returns information about a specific format
func GetFormatInfo(format FileFormat) (FormatInfo, bool) {
	info, exists := supportedFormats[format]
	return info, exists
}
