package suggest

import "unicode"

// ApplyCapitalization upper-cases the runes of word at the positions marked
// in capitalPositions, so "Hel" completes to "Hello" rather than "hello".
func ApplyCapitalization(word string, capitalPositions []bool) string {
	if len(capitalPositions) == 0 {
		return word
	}

	wordRunes := []rune(word)
	for i := 0; i < len(wordRunes) && i < len(capitalPositions); i++ {
		if capitalPositions[i] {
			wordRunes[i] = unicode.ToUpper(wordRunes[i])
		}
	}
	return string(wordRunes)
}
