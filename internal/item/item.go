// Package item defines the identity of a shopping-list entry: compared
// case-insensitively, displayed exactly as the user typed it.
package item

import (
	"strings"

	"golang.org/x/text/cases"
)

// Item is a single list entry. The zero value is not a valid item.
type Item struct {
	display string
}

// New trims raw and returns the resulting item. ok is false when nothing is
// left after trimming; callers must discard such tokens.
func New(raw string) (Item, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Item{}, false
	}
	return Item{display: s}, true
}

// Parse splits a comma-separated argument string into items. Empty tokens
// (from consecutive, leading or trailing commas) are dropped silently.
func Parse(args string) []Item {
	var out []Item
	for _, tok := range strings.Split(args, ",") {
		if it, ok := New(tok); ok {
			out = append(out, it)
		}
	}
	return out
}

// String returns the item in its original casing.
func (i Item) String() string {
	return i.display
}

// Key returns the case-folded comparison key.
func (i Item) Key() string {
	return Key(i.display)
}

// Equal reports whether both items fold to the same key.
func (i Item) Equal(other Item) bool {
	return i.Key() == other.Key()
}

// Compare orders items lexicographically by their folded keys.
func Compare(a, b Item) int {
	return strings.Compare(a.Key(), b.Key())
}

// Key folds s for case-insensitive comparison. A cases.Caser is stateful,
// so a fresh one is used per call.
func Key(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
