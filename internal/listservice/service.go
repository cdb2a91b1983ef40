// Package listservice is the transport-independent facade over the command
// router, the conversation store and the snapshot index.
package listservice

import (
	"context"

	"github.com/starford/martini/internal/command"
	"github.com/starford/martini/internal/index"
	"github.com/starford/martini/internal/models"
	"github.com/starford/martini/internal/store"
)

// ListDetail is the full representation of one conversation's list.
type ListDetail struct {
	ChatID int64    `json:"chat_id"`
	Items  []string `json:"items"`
	Text   string   `json:"text"`
}

// Reply is the answer to one chat message.
type Reply struct {
	ChatID int64  `json:"chat_id"`
	Reply  string `json:"reply"`
}

// Service coordinates the store, the command router and the index.
type Service struct {
	store  *store.Store
	router *command.Router
	index  index.ListIndex
}

// NewService creates a new list service. idx may be nil, in which case the
// cross-conversation queries return empty results.
func NewService(st *store.Store, router *command.Router, idx index.ListIndex) *Service {
	return &Service{store: st, router: router, index: idx}
}

// HandleMessage runs one chat message for chatID.
func (s *Service) HandleMessage(ctx context.Context, chatID int64, text string) (*Reply, error) {
	reply, err := s.router.Handle(ctx, chatID, text)
	if err != nil {
		return nil, err
	}
	return &Reply{ChatID: chatID, Reply: reply}, nil
}

// GetList returns the current list of chatID, hydrating it if needed.
func (s *Service) GetList(_ context.Context, chatID int64) *ListDetail {
	conv := s.store.Get(chatID)
	return &ListDetail{
		ChatID: chatID,
		Items:  conv.Items(),
		Text:   conv.Show(),
	}
}

// ListSummaries returns a page of indexed lists.
func (s *Service) ListSummaries(_ context.Context, limit, offset int) ([]models.ListSummary, int, error) {
	if s.index == nil {
		return []models.ListSummary{}, 0, nil
	}
	rows, total, err := s.index.ListSummaries(limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return nonNilSlice(rows), total, nil
}

// WhoNeeds returns the conversations that have name on their list.
func (s *Service) WhoNeeds(_ context.Context, name string) ([]int64, error) {
	if s.index == nil {
		return []int64{}, nil
	}
	ids, err := s.index.WhoNeeds(name)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(ids), nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
