package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/starford/martini/internal/listservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// rateLimit is the number of requests per minute allowed per client IP;
// zero disables limiting.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *listservice.Service, authEnabled bool, token string, rateLimit int, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	if rateLimit > 0 {
		r.Use(httprate.LimitByIP(rateLimit, time.Minute))
	}
	r.Use(AuthMiddleware(authEnabled, token))

	// Conversations.
	r.Get("/chats", h.ListChats)
	r.Get("/chats/{chatID}/items", h.GetList)
	r.Post("/chats/{chatID}/messages", h.PostMessage)

	// Cross-conversation search.
	r.Get("/search", h.Search)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
