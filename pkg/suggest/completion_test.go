package suggest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bastiangx/tstserve/pkg/mapping"
	"github.com/bastiangx/tstserve/pkg/tst"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

func newTestCompleter(t *testing.T, opts Options) *Completer {
	t.Helper()
	c := NewCompleter(opts)
	require.NoError(t, c.BuildFrom(tst.FromMap(map[string]int64{
		"app":    10,
		"apple":  5,
		"apply":  7,
		"banana": 3,
	})))
	return c
}

func words(s []Suggestion) []string {
	out := make([]string, len(s))
	for i, sg := range s {
		out[i] = sg.Word
	}
	return out
}

func TestCompleteRanked(t *testing.T) {
	c := newTestCompleter(t, Options{RankByWeight: true, HotCacheSize: 8, LowercaseKeys: true})

	got := c.Complete("ap", 2)
	assert.Equal(t, []Suggestion{{Word: "app", Weight: 10}, {Word: "apply", Weight: 7}}, got)
	assert.Equal(t, int64(4), c.Count())
}

func TestCompleteUnranked(t *testing.T) {
	c := newTestCompleter(t, Options{HotCacheSize: 8, LowercaseKeys: true})

	assert.Equal(t, []string{"app", "apple", "apply"}, words(c.Complete("ap", 5)))
	assert.Empty(t, c.Complete("zz", 5))
	assert.Empty(t, c.Complete("ap", 0))
}

func TestCompleteKeepsCapitalization(t *testing.T) {
	c := newTestCompleter(t, Options{RankByWeight: true, LowercaseKeys: true})

	assert.Equal(t, []string{"App", "Apply"}, words(c.Complete("Ap", 2)))
	assert.Equal(t, []string{"BANana"}, words(c.Complete("BAN", 1)))
}

func TestCompleteUsesHotCache(t *testing.T) {
	c := newTestCompleter(t, Options{RankByWeight: true, HotCacheSize: 8, LowercaseKeys: true})

	first := c.Complete("ap", 3)
	second := c.Complete("ap", 2)
	assert.Equal(t, first[:2], second)

	stats := c.Stats()
	assert.Equal(t, 1, stats["hotCacheHits"])
	assert.Equal(t, 1, stats["hotCacheEntries"])
	assert.Equal(t, 4, stats["totalWords"])
	assert.Positive(t, stats["sizeBytes"])
}

func TestAddWordInvalidatesCache(t *testing.T) {
	c := newTestCompleter(t, Options{RankByWeight: true, HotCacheSize: 8, LowercaseKeys: true})

	assert.Equal(t, []string{"app"}, words(c.Complete("ap", 1)))
	assert.Equal(t, []string{"banana"}, words(c.Complete("b", 1)))

	assert.True(t, c.AddWord("Apex", 100))
	assert.Equal(t, []string{"apex"}, words(c.Complete("ap", 1)))
	assert.Equal(t, 2, c.cache.Len())

	w, ok := c.Weight("APEX")
	assert.True(t, ok)
	assert.Equal(t, int64(100), w)
	assert.Equal(t, int64(4), c.Count())

	assert.False(t, c.AddWord("", 1))
}

func TestBuildFromAppliesMapping(t *testing.T) {
	b := mapping.NewBuilder()
	require.NoError(t, b.Add("é", "e"))
	c := NewCompleter(Options{CharMap: b.Build(), LowercaseKeys: true})

	require.NoError(t, c.BuildFrom(tst.FromMap(map[string]int64{"Café": 2, "cab": 1})))
	assert.Equal(t, []string{"cab", "cafe"}, words(c.Complete("ca", 5)))
	assert.Equal(t, []string{"cafe"}, words(c.Complete("café", 5)))
}

func TestCapitalizationFollowsMappedPrefix(t *testing.T) {
	b := mapping.NewBuilder()
	require.NoError(t, b.Add("æ", "ae"))
	c := NewCompleter(Options{CharMap: b.Build(), LowercaseKeys: true})
	require.NoError(t, c.BuildFrom(tst.FromMap(map[string]int64{"aerobic": 1})))

	assert.Equal(t, []string{"aeRobic"}, words(c.Complete("æR", 5)))
	assert.Equal(t, []string{"AErobic"}, words(c.Complete("AE", 5)))
	// no rule for the upper-case ligature, so the lengths no longer line up
	assert.Equal(t, []string{"aerobic"}, words(c.Complete("ÆR", 5)))
}

func TestBuildFromRejectsPayloads(t *testing.T) {
	c := newTestCompleter(t, Options{LowercaseKeys: true})

	err := c.BuildFrom(tst.FromMap(map[string]int64{"x": 1}).WithPayloads())
	assert.True(t, errors.Is(err, tst.ErrUnsupportedFeature))
	assert.Equal(t, int64(4), c.Count())
}

func TestSaveRestore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.tst")
	c := newTestCompleter(t, Options{RankByWeight: true, HotCacheSize: 8, LowercaseKeys: true})
	require.NoError(t, c.Save(path))

	other := NewCompleter(Options{RankByWeight: true, HotCacheSize: 8, LowercaseKeys: true})
	assert.Empty(t, other.Complete("ap", 3))
	require.NoError(t, other.Restore(path))
	assert.Equal(t, c.Complete("ap", 3), other.Complete("ap", 3))
	assert.Equal(t, int64(4), other.Count())
}

func TestRestoreFailureKeepsDictionary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.tst")
	require.NoError(t, os.WriteFile(path, []byte{0x01, 0x05}, 0644))

	c := newTestCompleter(t, Options{LowercaseKeys: true})
	err := c.Restore(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, tst.ErrMalformedStream))
	assert.Len(t, c.Complete("ap", 5), 3)
}

func TestApplyCapitalization(t *testing.T) {
	assert.Equal(t, "Hello", ApplyCapitalization("hello", []bool{true}))
	assert.Equal(t, "ÉcOle", ApplyCapitalization("école", []bool{true, false, true}))
	assert.Equal(t, "word", ApplyCapitalization("word", nil))
}
