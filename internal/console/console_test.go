package console

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/starford/martini/internal/command"
	"github.com/starford/martini/internal/storage"
	"github.com/starford/martini/internal/store"
)

func TestRun_ProcessesLinesInOrder(t *testing.T) {
	fs, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	st := store.New(fs, logger)
	router := command.NewRouter(st, logger)

	in := strings.NewReader("/need Milk, Bread, milk\nhello\n/dance\n/got bread\n")
	var out bytes.Buffer
	if err := Run(context.Background(), in, &out, 1, router, logger); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := "'milk' already on the list!\nWe need:\n1. Bread\n2. Milk\n" +
		"Sorry, I don't know that one. Try /help.\n" +
		"We still need:\n1. Milk\n"
	if out.String() != want {
		t.Errorf("output =\n%q\nwant\n%q", out.String(), want)
	}
}

func TestRun_StopsOnCancelledContext(t *testing.T) {
	fs, _ := storage.NewFS(t.TempDir())
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	router := command.NewRouter(store.New(fs, logger), logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	if err := Run(ctx, strings.NewReader("/need tea\n"), &out, 1, router, logger); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("expected no output, got %q", out.String())
	}
}
