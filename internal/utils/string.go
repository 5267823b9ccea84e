package utils

import (
	"strconv"
	"strings"
	"unicode"
)

// IsSeparator checks if a rune is a separator character
func IsSeparator(r rune) bool {
	return r == ' ' || r == '_' || r == '-' || r == '.' || r == '/' || r == '\''
}

// IsOnlyNumbers checks if a string consists entirely of numeric digits
func IsOnlyNumbers(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ContainsSpecialChars reports runes that are neither letters, digits nor separators
func ContainsSpecialChars(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !IsSeparator(r) {
			return true
		}
	}
	return false
}

// IsRepetitive checks for one character repeated three or more times ("aaa")
func IsRepetitive(s string) bool {
	runes := []rune(s)
	if len(runes) <= 2 {
		return false
	}
	for _, r := range runes[1:] {
		if r != runes[0] {
			return false
		}
	}
	return true
}

// IsValidInput checks if input should be processed for completions.
// Pure numbers, special characters and repetitive strings are rejected.
func IsValidInput(s string) bool {
	if len(s) == 0 {
		return false
	}
	return !IsOnlyNumbers(s) && !ContainsSpecialChars(s) && !IsRepetitive(s)
}

// CapitalPositions marks which runes of s are upper case.
func CapitalPositions(s string) []bool {
	runes := []rune(s)
	positions := make([]bool, len(runes))
	for i, r := range runes {
		positions[i] = unicode.IsUpper(r)
	}
	return positions
}

// FormatWithCommas formats an integer with comma separators
func FormatWithCommas(n int64) string {
	str := strconv.FormatInt(n, 10)
	sign := ""
	if strings.HasPrefix(str, "-") {
		sign, str = "-", str[1:]
	}
	if len(str) <= 3 {
		return sign + str
	}

	var b strings.Builder
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return sign + b.String()
}
