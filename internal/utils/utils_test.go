package utils

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidInput(t *testing.T) {
	cases := map[string]bool{
		"hello":   true,
		"don't":   true,
		"e-mail":  true,
		"":        false,
		"12345":   false,
		"he$$o":   false,
		"aaaa":    false,
		"aa":      true,
		"naïve":   true,
		"ééé":     false,
		"word2ve": true,
	}
	for input, want := range cases {
		assert.Equal(t, want, IsValidInput(input), input)
	}
}

func TestFormatWithCommas(t *testing.T) {
	assert.Equal(t, "0", FormatWithCommas(0))
	assert.Equal(t, "999", FormatWithCommas(999))
	assert.Equal(t, "1,000", FormatWithCommas(1000))
	assert.Equal(t, "65,535", FormatWithCommas(65535))
	assert.Equal(t, "-1,234,567", FormatWithCommas(-1234567))
}

func TestCapitalPositions(t *testing.T) {
	assert.Equal(t, []bool{true, false, true}, CapitalPositions("HeL"))
	assert.Equal(t, []bool{true, false}, CapitalPositions("Éa"))
}

func TestCreateRankList(t *testing.T) {
	assert.Equal(t, []uint16{1, 2, 3}, CreateRankList(3))
	assert.Empty(t, CreateRankList(0))
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.bin")

	require.NoError(t, WriteFileAtomic(path, func(w io.Writer) error {
		_, err := w.Write([]byte("first"))
		return err
	}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	err = WriteFileAtomic(path, func(w io.Writer) error {
		w.Write([]byte("partial"))
		return errors.New("boom")
	})
	require.Error(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestTOMLHelpers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.toml")
	require.NoError(t, os.WriteFile(path, []byte("[dict]\nmax_words = 10\npath = \"x\"\nflag = true\n"), 0644))

	data, err := ParseTOMLWithRecovery(path)
	require.NoError(t, err)
	section, ok := ExtractSection(data, "dict")
	require.True(t, ok)

	n, ok := ExtractInt64(section, "max_words")
	assert.True(t, ok)
	assert.Equal(t, 10, n)
	s, ok := ExtractString(section, "path")
	assert.True(t, ok)
	assert.Equal(t, "x", s)
	b, ok := ExtractBool(section, "flag")
	assert.True(t, ok)
	assert.True(t, b)
	_, ok = ExtractInt64(section, "missing")
	assert.False(t, ok)
}
