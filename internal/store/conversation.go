package store

import (
	"sync"

	"github.com/starford/martini/internal/needed"
)

// Conversation is the handle to one chat's list. Every method holds the
// conversation lock for the whole mutate-and-render step, so at most one
// batch per conversation is in flight.
type Conversation struct {
	id int64

	mu   sync.Mutex
	list *needed.List
}

// ID returns the conversation identifier.
func (c *Conversation) ID() int64 {
	return c.id
}

// Need adds the comma-separated items in args and returns the reply.
func (c *Conversation) Need(args string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.list.Add(args)
}

// Got removes the comma-separated items in args and returns the reply.
func (c *Conversation) Got(args string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.list.Remove(args)
}

// Show renders the list without changing it.
func (c *Conversation) Show() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.list.Render()
}

// Items returns a copy of the current items in display order.
func (c *Conversation) Items() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.list.Items()
}
