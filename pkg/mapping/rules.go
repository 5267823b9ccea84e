// Package mapping parses character mapping rules and applies them to text
// before it reaches the suggester.
//
// A rules file holds one mapping per line:
//
//	# fold ligatures
//	"æ" => "ae"
//	"ß" => "ss"
//
// Both sides accept the escapes \\ \" \n \t \r \b \f and \uXXXX.
// Characters above U+FFFF are written as an escaped surrogate pair.
package mapping

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// ErrRuleParse is wrapped by every RuleParseError.
var ErrRuleParse = errors.New("mapping: invalid rule")

// RuleParseError names the line that could not be parsed.
type RuleParseError struct {
	Line   int
	Text   string
	Reason string
}

func (e *RuleParseError) Error() string {
	return fmt.Sprintf("mapping: line %d: %s: %q", e.Line, e.Reason, e.Text)
}

func (e *RuleParseError) Unwrap() error {
	return ErrRuleParse
}

var rulePattern = regexp.MustCompile(`^"(.*)"\s*=>\s*"(.*)"\s*$`)

// ParseRules reads every rule from r. Blank lines and lines starting with
// '#' are skipped. One bad line fails the whole load.
func ParseRules(r io.Reader) (*NormalizeCharMap, error) {
	builder := NewBuilder()
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		m := rulePattern.FindStringSubmatch(line)
		if m == nil {
			return nil, &RuleParseError{Line: lineNo, Text: line, Reason: "expected \"source\" => \"destination\""}
		}
		src, err := unescape(m[1])
		if err != nil {
			return nil, &RuleParseError{Line: lineNo, Text: line, Reason: err.Error()}
		}
		dst, err := unescape(m[2])
		if err != nil {
			return nil, &RuleParseError{Line: lineNo, Text: line, Reason: err.Error()}
		}
		if err := builder.Add(src, dst); err != nil {
			return nil, &RuleParseError{Line: lineNo, Text: line, Reason: err.Error()}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read mapping rules: %w", err)
	}
	return builder.Build(), nil
}

// LoadFile parses the rules file at path.
func LoadFile(path string) (*NormalizeCharMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mapping file %s: %w", path, err)
	}
	defer f.Close()
	return ParseRules(f)
}

func unescape(s string) (string, error) {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", errors.New("dangling escape")
		}
		switch s[i] {
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'u':
			r, n, err := unicodeEscape(s[i+1:])
			if err != nil {
				return "", err
			}
			b.WriteRune(r)
			i += n
		default:
			return "", fmt.Errorf("invalid escape \\%c", s[i])
		}
	}
	return b.String(), nil
}

// unicodeEscape decodes the hex digits after a \u. A high surrogate
// followed by an escaped low surrogate becomes one rune; any other surrogate
// has no UTF-8 form and is rejected. It returns the number of bytes consumed.
func unicodeEscape(s string) (rune, int, error) {
	unit, err := hex4(s)
	if err != nil {
		return 0, 0, err
	}
	r := rune(unit)
	if !utf16.IsSurrogate(r) {
		return r, 4, nil
	}
	if len(s) >= 10 && s[4:6] == `\u` {
		if low, err := hex4(s[6:]); err == nil {
			if pair := utf16.DecodeRune(r, rune(low)); pair != utf8.RuneError {
				return pair, 10, nil
			}
		}
	}
	return 0, 0, fmt.Errorf("unpaired surrogate \\u%s", s[:4])
}

func hex4(s string) (uint16, error) {
	if len(s) < 4 {
		return 0, errors.New("invalid unicode escape: need 4 hex digits")
	}
	v, err := strconv.ParseUint(s[:4], 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid unicode escape \\u%s", s[:4])
	}
	return uint16(v), nil
}
