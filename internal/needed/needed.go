// Package needed keeps track of what a conversation still has to buy.
// "/need item" puts things on the list, "/got item" takes them off again.
package needed

import (
	"fmt"
	"slices"
	"strings"

	"github.com/starford/martini/internal/item"
)

// Message fragments shared by all renderings.
const (
	HeaderNeed      = "We need:"
	HeaderStillNeed = "We still need:"
	AllDone         = "We have everything we need :-)"
)

// List is an ordered, case-insensitive set of items.
// It is not safe for concurrent use; callers serialize access per list.
type List struct {
	items []item.Item // sorted by folded key, unique
}

// New returns an empty list.
func New() *List {
	return &List{}
}

// Restore builds a list from previously persisted display strings.
// Blank entries are skipped and case-insensitive duplicates keep the first.
func Restore(items []string) *List {
	l := New()
	for _, raw := range items {
		if it, ok := item.New(raw); ok {
			l.insert(it)
		}
	}
	return l
}

// Len returns the number of items on the list.
func (l *List) Len() int {
	return len(l.items)
}

// Items returns the display strings in rendering order.
func (l *List) Items() []string {
	out := make([]string, len(l.items))
	for i, it := range l.items {
		out[i] = it.String()
	}
	return out
}

// Contains reports whether raw is on the list, ignoring case.
func (l *List) Contains(raw string) bool {
	it, ok := item.New(raw)
	if !ok {
		return false
	}
	_, found := l.find(it)
	return found
}

// Add puts every comma-separated item of args on the list and returns the
// reply for the chat. Items already present are reported and left alone.
func (l *List) Add(args string) string {
	var already []string
	for _, it := range item.Parse(args) {
		if !l.insert(it) {
			already = append(already, it.String())
		}
	}

	var b strings.Builder
	if len(already) > 0 {
		b.WriteString(quoted(already))
		b.WriteString(" already on the list!\n")
	}
	b.WriteString(HeaderNeed)
	b.WriteString("\n")
	b.WriteString(l.enumerate())
	return b.String()
}

// Remove takes every comma-separated item of args off the list and returns
// the reply for the chat. Items that were not on the list are reported.
func (l *List) Remove(args string) string {
	var notFound []string
	for _, it := range item.Parse(args) {
		if !l.delete(it) {
			notFound = append(notFound, it.String())
		}
	}

	var b strings.Builder
	if len(notFound) > 0 {
		b.WriteString(quoted(notFound))
		b.WriteString(" not on the list!\n")
	}
	if len(l.items) == 0 {
		b.WriteString(AllDone)
		return b.String()
	}
	b.WriteString(HeaderStillNeed)
	b.WriteString("\n")
	b.WriteString(l.enumerate())
	return b.String()
}

// Render shows the list without changing it.
func (l *List) Render() string {
	if len(l.items) == 0 {
		return AllDone
	}
	return HeaderNeed + "\n" + l.enumerate()
}

func (l *List) find(it item.Item) (int, bool) {
	return slices.BinarySearchFunc(l.items, it, item.Compare)
}

// insert returns false when an equal item is already present.
func (l *List) insert(it item.Item) bool {
	i, found := l.find(it)
	if found {
		return false
	}
	l.items = slices.Insert(l.items, i, it)
	return true
}

// delete returns false when no equal item is present.
func (l *List) delete(it item.Item) bool {
	i, found := l.find(it)
	if !found {
		return false
	}
	l.items = slices.Delete(l.items, i, i+1)
	return true
}

// enumerate numbers the current items from 1, one per line.
func (l *List) enumerate() string {
	lines := make([]string, len(l.items))
	for i, it := range l.items {
		lines[i] = fmt.Sprintf("%d. %s", i+1, it)
	}
	return strings.Join(lines, "\n")
}

func quoted(names []string) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = "'" + n + "'"
	}
	return Listify(parts, ", ", " and ")
}
