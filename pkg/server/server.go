package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/tstserve/internal/utils"
	"github.com/bastiangx/tstserve/pkg/config"
	"github.com/bastiangx/tstserve/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Server handles the IPC for word completions
type Server struct {
	completer    suggest.ICompleter
	config       *config.Config
	snapshot     string
	decoder      *msgpack.Decoder
	writer       *bufio.Writer
	encoder      *msgpack.Encoder
	requestCount int64
}

// NewServer creates a completion server using stdin/stdout for IPC
func NewServer(completer suggest.ICompleter, cfg *config.Config, snapshot string) *Server {
	return NewServerWithIO(completer, cfg, snapshot, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server reading requests from r and writing
// responses to w. snapshot is the default path for save and load.
func NewServerWithIO(completer suggest.ICompleter, cfg *config.Config, snapshot string, r io.Reader, w io.Writer) *Server {
	writer := bufio.NewWriter(w)
	return &Server{
		completer: completer,
		config:    cfg,
		snapshot:  snapshot,
		decoder:   msgpack.NewDecoder(bufio.NewReader(r)),
		writer:    writer,
		encoder:   msgpack.NewEncoder(writer),
	}
}

// Start signals readiness and serves requests until the input ends.
// A malformed message gets an error response; a broken stream ends the loop.
func (s *Server) Start() error {
	log.Debug("Starting Server.")

	if err := s.send(map[string]string{"status": "ready"}); err != nil {
		return err
	}

	for {
		raw, err := s.decoder.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				log.Debugf("Input closed after %d requests", s.requestCount)
				return nil
			}
			log.Errorf("Reading request: %v", err)
			return fmt.Errorf("reading request: %w", err)
		}
		s.requestCount++

		if err := s.handleMessage(raw); err != nil {
			log.Errorf("Writing response: %v", err)
			return fmt.Errorf("writing response: %w", err)
		}
	}
}

// handleMessage dispatches one raw msgpack value.
func (s *Server) handleMessage(raw msgpack.RawMessage) error {
	var env envelope
	if err := msgpack.Unmarshal(raw, &env); err != nil {
		log.Debugf("Unmarshaling request envelope: %v", err)
		return s.sendError("", "invalid msgpack request", codeBadRequest)
	}

	if env.Action != "" {
		var req AdminRequest
		if err := msgpack.Unmarshal(raw, &req); err != nil {
			log.Debugf("Unmarshaling admin request: %v", err)
			return s.sendError(env.ID, "invalid admin request", codeBadRequest)
		}
		return s.handleAdmin(req)
	}

	var req CompletionRequest
	if err := msgpack.Unmarshal(raw, &req); err != nil {
		log.Debugf("Unmarshaling completion request: %v", err)
		return s.sendError(env.ID, "invalid completion request", codeBadRequest)
	}
	return s.handleComplete(req)
}

// handleComplete validates the prefix against the configured bounds and
// answers with ranked suggestions. Prefixes rejected by the input filter
// get an empty answer rather than an error.
func (s *Server) handleComplete(req CompletionRequest) error {
	cfg := s.config.Server
	length := utf8.RuneCountInString(req.Prefix)

	if length < cfg.MinPrefix {
		log.Debugf("Prefix '%s' is too short", req.Prefix)
		return s.sendError(req.ID, fmt.Sprintf("prefix must be at least %d characters", cfg.MinPrefix), codeBadRequest)
	}
	if length > cfg.MaxPrefix {
		log.Debugf("Prefix '%s' is too long", req.Prefix)
		return s.sendError(req.ID, fmt.Sprintf("prefix exceeds maximum length of %d", cfg.MaxPrefix), codeBadRequest)
	}

	limit := req.Limit
	if limit < 1 {
		limit = cfg.DefaultLimit
	}
	limit = min(limit, cfg.MaxLimit)

	start := time.Now()
	var suggestions []suggest.Suggestion
	if !cfg.EnableFilter || utils.IsValidInput(req.Prefix) {
		suggestions = s.completer.Complete(req.Prefix, limit)
	}
	elapsed := time.Since(start)

	ranks := utils.CreateRankList(len(suggestions))
	out := make([]CompletionSuggestion, len(suggestions))
	for i, sg := range suggestions {
		out[i] = CompletionSuggestion{Word: sg.Word, Rank: ranks[i], Weight: sg.Weight}
	}

	return s.send(CompletionResponse{
		ID:          req.ID,
		Suggestions: out,
		Count:       len(out),
		TimeTaken:   elapsed.Microseconds(),
	})
}

// handleAdmin runs a dictionary management action.
func (s *Server) handleAdmin(req AdminRequest) error {
	resp := AdminResponse{ID: req.ID, Status: "ok"}

	switch req.Action {
	case "get":
		resp.Weight, resp.Found = s.completer.Weight(req.Word)
	case "add":
		if !s.completer.AddWord(req.Word, req.Weight) {
			return s.sendError(req.ID, "word must not be empty", codeBadRequest)
		}
		log.Debugf("Added '%s' with weight %d", req.Word, req.Weight)
	case "save", "load":
		path := req.Path
		if path == "" {
			path = s.snapshot
		}
		if path == "" {
			return s.sendError(req.ID, "no snapshot path configured", codeBadRequest)
		}
		var err error
		if req.Action == "save" {
			err = s.completer.Save(path)
		} else {
			err = s.completer.Restore(path)
		}
		if err != nil {
			log.Errorf("%s failed: %v", req.Action, err)
			return s.sendError(req.ID, err.Error(), codeInternal)
		}
	case "stats":
		resp.Stats = s.completer.Stats()
	default:
		return s.sendError(req.ID, fmt.Sprintf("unknown action: %s", req.Action), codeNotFound)
	}

	return s.send(resp)
}

// send encodes one response and flushes it to the client.
func (s *Server) send(response any) error {
	if err := s.encoder.Encode(response); err != nil {
		return err
	}
	return s.writer.Flush()
}

// sendError sends an error response
func (s *Server) sendError(id, message string, code int) error {
	return s.send(CompletionError{ID: id, Error: message, Code: code})
}
