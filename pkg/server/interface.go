/*
Package server implements msgpack IPC for the completion service.

Clients write msgpack maps to stdin and read msgpack maps from stdout. Each
message carries an ID that is echoed back. Logging goes to stderr so it
never mixes with responses.

# Completion

A completion request names a prefix and an optional limit:

	{"id": "req_001", "p": "ame", "l": 24}

The response lists suggestions with their position (1 is best) and weight,
plus the count and the time taken in microseconds:

	{"id": "req_001", "s": [{"w": "amenity", "r": 1, "f": 812}, {"w": "america", "r": 2, "f": 640}], "c": 2, "t": 145}

Failures are reported as

	{"id": "req_001", "e": "prefix exceeds maximum length of 60", "c": 400}

# Admin

Messages with an "action" field manage the dictionary:

	{"id": "a1", "action": "get", "word": "amenity"}
	{"id": "a2", "action": "add", "word": "amenity", "weight": 900}
	{"id": "a3", "action": "save", "path": "words.tst"}
	{"id": "a4", "action": "load"}
	{"id": "a5", "action": "stats"}

save and load fall back to the configured snapshot when no path is given.
*/
package server

// CompletionRequest asks for completions of a prefix.
type CompletionRequest struct {
	ID     string `msgpack:"id"`
	Prefix string `msgpack:"p"`
	Limit  int    `msgpack:"l,omitempty"`
}

// CompletionSuggestion is one ranked suggestion.
type CompletionSuggestion struct {
	Word   string `msgpack:"w"`
	Rank   uint16 `msgpack:"r"`
	Weight int64  `msgpack:"f"`
}

// CompletionResponse - completion response
type CompletionResponse struct {
	ID          string                 `msgpack:"id"`
	Suggestions []CompletionSuggestion `msgpack:"s"`
	Count       int                    `msgpack:"c"`
	TimeTaken   int64                  `msgpack:"t"`
}

// CompletionError holds basic error information for failed requests
type CompletionError struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}

// AdminRequest - dictionary management request
type AdminRequest struct {
	ID     string `msgpack:"id"`
	Action string `msgpack:"action"` // "get", "add", "save", "load", "stats"
	Word   string `msgpack:"word,omitempty"`
	Weight int64  `msgpack:"weight,omitempty"`
	Path   string `msgpack:"path,omitempty"`
}

// AdminResponse - dictionary operation response
type AdminResponse struct {
	ID     string         `msgpack:"id"`
	Status string         `msgpack:"status"`
	Error  string         `msgpack:"error,omitempty"`
	Found  bool           `msgpack:"found,omitempty"`
	Weight int64          `msgpack:"weight,omitempty"`
	Stats  map[string]int `msgpack:"stats,omitempty"`
}

// envelope is decoded first to tell completion and admin messages apart.
type envelope struct {
	ID     string `msgpack:"id"`
	Action string `msgpack:"action"`
}

const (
	codeBadRequest = 400
	codeNotFound   = 404
	codeInternal   = 500
)
