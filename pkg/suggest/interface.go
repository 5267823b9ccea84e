// Package suggest is the core service, serving ranked completions from a
// ternary search tree with a hot prefix cache in front of it.
package suggest

// ICompleter defines the interface for word completion engines
type ICompleter interface {
	// Complete returns suggestions for a given prefix with a limit
	Complete(prefix string, limit int) []Suggestion

	// AddWord adds a word or replaces its weight
	AddWord(word string, weight int64) bool

	// Weight returns the weight stored for an exact word
	Weight(word string) (int64, bool)

	// Save writes a snapshot of the tree to path
	Save(path string) error

	// Restore replaces the tree with the snapshot at path
	Restore(path string) error

	// Stats returns statistics about the loaded dictionary
	Stats() map[string]int
}
