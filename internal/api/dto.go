package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/martini/internal/listservice"
	"github.com/starford/martini/internal/models"
)

// maxMessageLen bounds a single chat message.
const maxMessageLen = 4096

// MessageRequest is the request body for posting a chat message.
type MessageRequest struct {
	Text string `json:"text" example:"/need milk, bread" validate:"required"`
}

// Validate validates the message request.
func (r MessageRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Text, validation.Required, validation.Length(1, maxMessageLen)),
	)
}

// MessageResponse is the reply to a chat message (aliased from the domain layer).
type MessageResponse = listservice.Reply

// ListResponse is the current list of one conversation (aliased from the domain layer).
type ListResponse = listservice.ListDetail

// ListSummary is one row of the lists overview.
type ListSummary = models.ListSummary

// ListsResponse wraps paginated list summaries.
type ListsResponse struct {
	Lists []ListSummary `json:"lists" validate:"required"`
	Total int           `json:"total" example:"3" validate:"required"`
}

// SearchResponse lists the conversations needing an item.
type SearchResponse struct {
	Item    string  `json:"item" example:"milk" validate:"required"`
	ChatIDs []int64 `json:"chat_ids" validate:"required"`
}
