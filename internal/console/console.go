// Package console is a line-based chat transport: it reads one message per
// line and writes each reply back, processing messages strictly in order.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/starford/martini/internal/apperr"
)

// Handler answers one chat message. *command.Router satisfies it.
type Handler interface {
	Handle(ctx context.Context, chatID int64, text string) (string, error)
}

// Run feeds every line of in to h as a message of chatID until in is
// exhausted or ctx is cancelled. Plain text is ignored; unknown commands get
// a short hint.
func Run(ctx context.Context, in io.Reader, out io.Writer, chatID int64, h Handler, logger *slog.Logger) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}

		reply, err := h.Handle(ctx, chatID, scanner.Text())
		switch {
		case errors.Is(err, apperr.ErrNotCommand):
			logger.Debug("console: ignoring plain text", slog.Int64("chat_id", chatID))
			continue
		case errors.Is(err, apperr.ErrUnknownCommand):
			reply = "Sorry, I don't know that one. Try /help."
		case err != nil:
			return fmt.Errorf("console: handle: %w", err)
		}

		if _, err := fmt.Fprintln(out, reply); err != nil {
			return fmt.Errorf("console: write reply: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("console: read: %w", err)
	}
	return nil
}
