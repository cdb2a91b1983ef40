package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/martini/internal/apperr"
	"github.com/starford/martini/internal/listservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *listservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *listservice.Service) *Handler {
	return &Handler{svc: svc}
}

// chatID extracts the {chatID} URL parameter.
func chatID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "chatID"), 10, 64)
	if err != nil {
		return 0, apperr.ErrInvalidChatID
	}
	return id, nil
}

// PostMessage handles POST /api/chats/{chatID}/messages.
//
//	@Summary		Run a chat command for a conversation
//	@Tags			chats
//	@Accept			json
//	@Produce		json
//	@Param			chatID	path		int				true	"Conversation id"
//	@Param			body	body		MessageRequest	true	"Chat message"
//	@Success		200		{object}	MessageResponse
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/chats/{chatID}/messages [post]
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	id, err := chatID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	reply, err := h.svc.HandleMessage(r.Context(), id, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotCommand), errors.Is(err, apperr.ErrUnknownCommand):
			writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
		default:
			slog.Error("handle message failed", slog.Int64("chat_id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// GetList handles GET /api/chats/{chatID}/items.
//
//	@Summary		Get the current list of a conversation
//	@Tags			chats
//	@Produce		json
//	@Param			chatID	path		int	true	"Conversation id"
//	@Success		200		{object}	ListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/chats/{chatID}/items [get]
func (h *Handler) GetList(w http.ResponseWriter, r *http.Request) {
	id, err := chatID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, h.svc.GetList(r.Context(), id))
}

// ListChats handles GET /api/chats.
//
//	@Summary		List indexed conversations
//	@Tags			chats
//	@Produce		json
//	@Param			limit	query		int	false	"Page size"
//	@Param			offset	query		int	false	"Page offset"
//	@Success		200		{object}	ListsResponse
//	@Security		BearerAuth
//	@Router			/chats [get]
func (h *Handler) ListChats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	rows, total, err := h.svc.ListSummaries(r.Context(), limit, offset)
	if err != nil {
		slog.Error("list chats failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, ListsResponse{Lists: rows, Total: total})
}

// Search handles GET /api/search.
//
//	@Summary		Find conversations that need an item
//	@Tags			search
//	@Produce		json
//	@Param			item	query		string	true	"Item name (case-insensitive)"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("item"))
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'item' is required"))
		return
	}
	ids, err := h.svc.WhoNeeds(r.Context(), name)
	if err != nil {
		slog.Error("search failed", slog.String("item", name), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Item: name, ChatIDs: ids})
}
