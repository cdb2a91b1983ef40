// Package command turns chat text such as "/need milk, bread" into calls on
// the conversation store.
package command

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/martini/internal/apperr"
	"github.com/starford/martini/internal/store"
	"github.com/starford/martini/pkg/metrics"
)

// HelpText is the reply to /help and /start.
const HelpText = `I keep track of what we need to buy.
/need milk, bread - put things on the list
/got milk - take things off the list
/list - show the list`

// Command is a parsed chat command.
type Command struct {
	Name string // lower-case keyword without the leading slash or @bot suffix
	Args string // everything after the keyword, untrimmed
}

// Parse splits text into keyword and argument string. Text that does not
// start with "/" yields apperr.ErrNotCommand.
func Parse(text string) (Command, error) {
	text = strings.TrimLeft(text, " \t")
	if !strings.HasPrefix(text, "/") {
		return Command{}, apperr.ErrNotCommand
	}
	keyword, args, _ := strings.Cut(text[1:], " ")
	if i := strings.IndexAny(keyword, "\n\t"); i >= 0 {
		args = keyword[i+1:] + " " + args
		keyword = keyword[:i]
	}
	// "/need@martini_bot milk" addresses a specific bot in group chats.
	keyword, _, _ = strings.Cut(keyword, "@")
	if keyword == "" {
		return Command{}, apperr.ErrNotCommand
	}
	return Command{Name: strings.ToLower(keyword), Args: args}, nil
}

// Router dispatches commands to the conversation store.
type Router struct {
	store  *store.Store
	logger *slog.Logger
}

// NewRouter creates a router on top of st.
func NewRouter(st *store.Store, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{store: st, logger: logger}
}

// Handle runs one chat message for chatID and returns the reply to send back.
func (r *Router) Handle(_ context.Context, chatID int64, text string) (string, error) {
	cmd, err := Parse(text)
	if err != nil {
		return "", err
	}

	switch cmd.Name {
	case "need", "weneed":
		return r.mutate(chatID, cmd, (*store.Conversation).Need), nil
	case "got":
		return r.mutate(chatID, cmd, (*store.Conversation).Got), nil
	case "list":
		metrics.RecordCommand(cmd.Name, "ok")
		return r.store.Get(chatID).Show(), nil
	case "help", "start":
		metrics.RecordCommand(cmd.Name, "ok")
		return HelpText, nil
	}

	metrics.RecordCommand("unknown", "rejected")
	r.logger.Warn("command: unknown command",
		slog.Int64("chat_id", chatID),
		slog.String("command", cmd.Name))
	return "", fmt.Errorf("%w: /%s", apperr.ErrUnknownCommand, cmd.Name)
}

// mutate applies op to the conversation and persists the result.
func (r *Router) mutate(chatID int64, cmd Command, op func(*store.Conversation, string) string) string {
	conv := r.store.Get(chatID)
	reply := op(conv, cmd.Args)
	r.store.Persist(chatID)

	metrics.RecordCommand(cmd.Name, "ok")
	r.logger.Debug("command: handled",
		slog.Int64("chat_id", chatID),
		slog.String("command", cmd.Name))
	return reply
}
