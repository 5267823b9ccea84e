// Package cli handles cmd line input and suggestions for DBG and testing various features
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/tstserve/internal/utils"
	"github.com/bastiangx/tstserve/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/google/shlex"
)

var wordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))

// InputHandler processes user input, providing suggestions for each line.
// Lines starting with ':' are commands:
//
//	:add <word> <weight>
//	:get <word>
//	:save [path]
//	:load [path]
//	:stats
type InputHandler struct {
	completer       suggest.ICompleter
	minPrefixLength int
	maxPrefixLength int
	suggestLimit    int
	noFilter        bool
	snapshot        string
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(completer suggest.ICompleter, minLength, maxLength, limit int, noFilter bool) *InputHandler {
	return &InputHandler{
		completer:       completer,
		minPrefixLength: minLength,
		maxPrefixLength: maxLength,
		suggestLimit:    limit,
		noFilter:        noFilter,
	}
}

// WithSnapshot sets the default path for :save and :load.
func (h *InputHandler) WithSnapshot(path string) *InputHandler {
	h.snapshot = path
	return h
}

// Start runs the interface loop over r until it is exhausted.
func (h *InputHandler) Start(r io.Reader) error {
	log.Print("tstserve CLI [BETA]")
	log.Print("type something and press Enter to see the suggestions (Ctrl+C to exit):")
	reader := bufio.NewReader(r)

	for {
		log.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		line = strings.TrimSpace(line)
		if line != "" {
			if strings.HasPrefix(line, ":") {
				if cmdErr := h.handleCommand(line[1:]); cmdErr != nil {
					log.Error(cmdErr)
				}
			} else {
				h.handleInput(line)
			}
		}
		if err != nil {
			return nil
		}
	}
}

// handleInput validates a prefix and prints its suggestions.
func (h *InputHandler) handleInput(prefix string) []suggest.Suggestion {
	length := utf8.RuneCountInString(prefix)
	if length < h.minPrefixLength {
		log.Errorf("Prefix too short: %s", prefix)
		return nil
	}
	if length > h.maxPrefixLength {
		log.Errorf("Prefix too long: %s", prefix)
		return nil
	}

	// input filtering by default (unless --no-filter flag is used)
	if !h.noFilter && !utils.IsValidInput(prefix) {
		log.Infof("No results found for prefix: '%s'", prefix)
		return nil
	}

	start := time.Now()
	suggestions := h.completer.Complete(prefix, h.suggestLimit)
	log.Debugf("Took [ %v ] for prefix '%s'", time.Since(start), prefix)

	if len(suggestions) == 0 {
		log.Warnf("No suggestions found for prefix: '%s'", prefix)
		return suggestions
	}

	log.Printf("Found %d suggestions for prefix '%s':", len(suggestions), prefix)
	for i, s := range suggestions {
		log.Printf("%2d. %-40s (weight: %8s)", i+1, wordStyle.Render(s.Word), utils.FormatWithCommas(s.Weight))
	}
	return suggestions
}

// handleCommand runs one ':' command. Arguments are split shell-style so
// quoted words may contain spaces.
func (h *InputHandler) handleCommand(line string) error {
	args, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("parsing command: %w", err)
	}
	if len(args) == 0 {
		return errors.New("empty command")
	}

	switch args[0] {
	case "add":
		if len(args) != 3 {
			return errors.New("usage: :add <word> <weight>")
		}
		weight, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid weight %q: %w", args[2], err)
		}
		if !h.completer.AddWord(args[1], weight) {
			return fmt.Errorf("could not add %q", args[1])
		}
		log.Printf("added '%s' (weight: %s)", args[1], utils.FormatWithCommas(weight))
	case "get":
		if len(args) != 2 {
			return errors.New("usage: :get <word>")
		}
		weight, ok := h.completer.Weight(args[1])
		if !ok {
			log.Warnf("'%s' is not in the dictionary", args[1])
			return nil
		}
		log.Printf("%s (weight: %s)", wordStyle.Render(args[1]), utils.FormatWithCommas(weight))
	case "save", "load":
		path := h.snapshot
		if len(args) > 1 {
			path = args[1]
		}
		if path == "" {
			return errors.New("no snapshot path given")
		}
		if args[0] == "save" {
			err = h.completer.Save(path)
		} else {
			err = h.completer.Restore(path)
		}
		if err != nil {
			return err
		}
		log.Printf("%s: %s", args[0], path)
	case "stats":
		for k, v := range h.completer.Stats() {
			log.Print(k, "value", utils.FormatWithCommas(int64(v)))
		}
	default:
		return fmt.Errorf("unknown command: %s", args[0])
	}
	return nil
}
