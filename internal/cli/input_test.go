package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/bastiangx/tstserve/pkg/suggest"
	"github.com/bastiangx/tstserve/pkg/tst"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.FatalLevel)
}

func newHandler(t *testing.T) (*InputHandler, *suggest.Completer) {
	t.Helper()
	c := suggest.NewCompleter(suggest.Options{RankByWeight: true, HotCacheSize: 8, LowercaseKeys: true})
	require.NoError(t, c.BuildFrom(tst.FromMap(map[string]int64{"hello": 9, "help": 7, "helium": 3})))
	return NewInputHandler(c, 1, 5, 2, false), c
}

func TestHandleInput(t *testing.T) {
	h, _ := newHandler(t)

	got := h.handleInput("hel")
	require.Len(t, got, 2)
	assert.Equal(t, "hello", got[0].Word)
	assert.Equal(t, "help", got[1].Word)

	assert.Nil(t, h.handleInput("helloo"))
	assert.Nil(t, h.handleInput("12"))
	assert.Empty(t, h.handleInput("xyz"))
}

func TestHandleInputNoFilter(t *testing.T) {
	h, c := newHandler(t)
	h.noFilter = true
	c.AddWord("42nd", 1)

	got := h.handleInput("42")
	require.Len(t, got, 1)
	assert.Equal(t, "42nd", got[0].Word)
}

func TestHandleCommand(t *testing.T) {
	h, c := newHandler(t)
	h.WithSnapshot(filepath.Join(t.TempDir(), "cli.tst"))

	require.NoError(t, h.handleCommand(`add "hello world" 40`))
	w, ok := c.Weight("hello world")
	assert.True(t, ok)
	assert.Equal(t, int64(40), w)

	require.NoError(t, h.handleCommand("get help"))
	require.NoError(t, h.handleCommand("save"))
	require.NoError(t, h.handleCommand("load"))
	require.NoError(t, h.handleCommand("stats"))

	assert.Error(t, h.handleCommand("add word"))
	assert.Error(t, h.handleCommand("add word heavy"))
	assert.Error(t, h.handleCommand("frobnicate"))
	assert.Error(t, h.handleCommand(`add "open 1`))
	assert.Error(t, h.handleCommand(""))
}

func TestStartReadsUntilEOF(t *testing.T) {
	h, c := newHandler(t)
	input := strings.NewReader("hel\n:add helix 100\n\nhe")

	require.NoError(t, h.Start(input))
	w, ok := c.Weight("helix")
	assert.True(t, ok)
	assert.Equal(t, int64(100), w)
}
