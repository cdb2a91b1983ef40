// Package store keeps every conversation's needed list in memory, loading it
// from its snapshot on first access and writing it back after each change.
package store

import (
	"errors"
	"io/fs"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/starford/martini/internal/needed"
	"github.com/starford/martini/internal/snapshot"
	"github.com/starford/martini/pkg/metrics"
)

// Backend is the durable side of the store. storage.Provider satisfies it.
type Backend interface {
	Read(chatID int64) ([]byte, error)
	Write(chatID int64, content []byte) error
}

// Store maps conversation ids to their lists. Entries are never evicted.
//
// The map is guarded by mu, which is only held for map access. Each
// Conversation carries its own lock, so unrelated conversations never wait
// on each other's disk I/O.
type Store struct {
	backend Backend
	logger  *slog.Logger

	mu      sync.Mutex
	entries map[int64]*Conversation

	hydrating singleflight.Group
}

// New creates an empty store on top of backend.
func New(backend Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		backend: backend,
		logger:  logger,
		entries: make(map[int64]*Conversation),
	}
}

// Get returns the conversation for chatID, hydrating it from its snapshot
// the first time it is asked for. It never fails: a missing or unreadable
// snapshot yields an empty list.
func (s *Store) Get(chatID int64) *Conversation {
	if c := s.lookup(chatID); c != nil {
		return c
	}
	v, _, _ := s.hydrating.Do(strconv.FormatInt(chatID, 10), func() (any, error) {
		if c := s.lookup(chatID); c != nil {
			return c, nil
		}
		c := &Conversation{id: chatID, list: s.hydrate(chatID)}

		s.mu.Lock()
		defer s.mu.Unlock()
		s.entries[chatID] = c
		metrics.ConversationsCached.Set(float64(len(s.entries)))
		return c, nil
	})
	return v.(*Conversation)
}

// Persist writes the current list of chatID to the backend, replacing the
// previous snapshot. It is a no-op for conversations never looked up.
// Failures are logged; the in-memory list stays authoritative.
func (s *Store) Persist(chatID int64) {
	c := s.lookup(chatID)
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	log := s.logger.With(slog.Int64("chat_id", chatID))
	data, err := snapshot.Encode(c.list.Items())
	if err != nil {
		metrics.RecordPersist(false)
		log.Warn("store: encode snapshot failed", slog.String("error", err.Error()))
		return
	}
	if err := s.backend.Write(chatID, data); err != nil {
		metrics.RecordPersist(false)
		log.Warn("store: write snapshot failed", slog.String("error", err.Error()))
		return
	}
	metrics.RecordPersist(true)
	log.Debug("store: snapshot written", slog.Int("items", c.list.Len()))
}

// Len returns the number of conversations held in memory.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) lookup(chatID int64) *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[chatID]
}

func (s *Store) hydrate(chatID int64) *needed.List {
	log := s.logger.With(slog.Int64("chat_id", chatID))

	data, err := s.backend.Read(chatID)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			metrics.RecordHydration("missing")
			log.Debug("store: no snapshot, starting empty")
		} else {
			metrics.RecordHydration("failed")
			log.Warn("store: read snapshot failed, starting empty", slog.String("error", err.Error()))
		}
		return needed.New()
	}

	snap, err := snapshot.Decode(data)
	if err != nil {
		metrics.RecordHydration("failed")
		log.Warn("store: corrupt snapshot, starting empty", slog.String("error", err.Error()))
		return needed.New()
	}

	list := needed.Restore(snap.Items)
	metrics.RecordHydration("restored")
	log.Debug("store: snapshot restored", slog.Int("items", list.Len()))
	return list
}
