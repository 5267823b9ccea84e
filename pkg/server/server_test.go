package server

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/bastiangx/tstserve/pkg/config"
	"github.com/bastiangx/tstserve/pkg/suggest"
	"github.com/bastiangx/tstserve/pkg/tst"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

// run feeds the messages to a fresh server and returns every response
// after the ready signal.
func run(t *testing.T, snapshot string, messages ...any) []map[string]any {
	t.Helper()

	completer := suggest.NewCompleter(suggest.Options{RankByWeight: true, HotCacheSize: 16, LowercaseKeys: true})
	require.NoError(t, completer.BuildFrom(tst.FromMap(map[string]int64{
		"amenity": 812,
		"america": 640,
		"amend":   300,
		"zebra":   10,
	})))

	var in, out bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, m := range messages {
		require.NoError(t, enc.Encode(m))
	}

	srv := NewServerWithIO(completer, config.DefaultConfig(), snapshot, &in, &out)
	require.NoError(t, srv.Start())

	dec := msgpack.NewDecoder(&out)
	var responses []map[string]any
	for {
		var resp map[string]any
		err := dec.Decode(&resp)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		responses = append(responses, resp)
	}
	require.NotEmpty(t, responses)
	assert.Equal(t, "ready", responses[0]["status"])
	return responses[1:]
}

func TestCompletionRoundTrip(t *testing.T) {
	responses := run(t, "", CompletionRequest{ID: "req_001", Prefix: "Ame", Limit: 2})
	require.Len(t, responses, 1)

	raw, err := msgpack.Marshal(responses[0])
	require.NoError(t, err)
	var resp CompletionResponse
	require.NoError(t, msgpack.Unmarshal(raw, &resp))

	assert.Equal(t, "req_001", resp.ID)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, []CompletionSuggestion{
		{Word: "Amenity", Rank: 1, Weight: 812},
		{Word: "America", Rank: 2, Weight: 640},
	}, resp.Suggestions)
}

func TestCompletionDefaultLimit(t *testing.T) {
	responses := run(t, "", map[string]any{"id": "d", "p": "am"})
	require.Len(t, responses, 1)
	assert.EqualValues(t, 3, responses[0]["c"])
}

func TestCompletionErrors(t *testing.T) {
	long := string(bytes.Repeat([]byte("a"), 61))
	responses := run(t, "",
		CompletionRequest{ID: "empty", Prefix: ""},
		CompletionRequest{ID: "long", Prefix: long},
		"not a map",
	)
	require.Len(t, responses, 3)

	assert.Equal(t, "empty", responses[0]["id"])
	assert.EqualValues(t, 400, responses[0]["c"])
	assert.Contains(t, responses[0]["e"], "at least 1")

	assert.Equal(t, "long", responses[1]["id"])
	assert.Contains(t, responses[1]["e"], "maximum length of 60")

	assert.Equal(t, "invalid msgpack request", responses[2]["e"])
}

func TestFilteredPrefixGetsNoSuggestions(t *testing.T) {
	responses := run(t, "", CompletionRequest{ID: "n", Prefix: "123"})
	require.Len(t, responses, 1)
	assert.EqualValues(t, 0, responses[0]["c"])
	assert.Empty(t, responses[0]["s"])
}

func TestAdminActions(t *testing.T) {
	snapshot := filepath.Join(t.TempDir(), "words.tst")
	responses := run(t, snapshot,
		AdminRequest{ID: "a1", Action: "add", Word: "amazing", Weight: 1000},
		CompletionRequest{ID: "c1", Prefix: "am", Limit: 1},
		AdminRequest{ID: "a2", Action: "get", Word: "amazing"},
		AdminRequest{ID: "a3", Action: "get", Word: "amaze"},
		AdminRequest{ID: "a4", Action: "save"},
		AdminRequest{ID: "a5", Action: "load"},
		AdminRequest{ID: "a6", Action: "stats"},
		AdminRequest{ID: "a7", Action: "shrink"},
		AdminRequest{ID: "a8", Action: "add"},
	)
	require.Len(t, responses, 9)

	assert.Equal(t, "ok", responses[0]["status"])

	s := responses[1]["s"].([]any)
	require.Len(t, s, 1)
	assert.Equal(t, "amazing", s[0].(map[string]any)["w"])

	assert.Equal(t, true, responses[2]["found"])
	assert.EqualValues(t, 1000, responses[2]["weight"])
	assert.Nil(t, responses[3]["found"])

	assert.Equal(t, "ok", responses[4]["status"])
	assert.FileExists(t, snapshot)
	assert.Equal(t, "ok", responses[5]["status"])

	stats := responses[6]["stats"].(map[string]any)
	assert.EqualValues(t, 4, stats["totalWords"])

	assert.EqualValues(t, 404, responses[7]["c"])
	assert.EqualValues(t, 400, responses[8]["c"])
}

func TestSaveWithoutSnapshotPath(t *testing.T) {
	responses := run(t, "", AdminRequest{ID: "s", Action: "save"})
	require.Len(t, responses, 1)
	assert.Equal(t, "no snapshot path configured", responses[0]["e"])
}
