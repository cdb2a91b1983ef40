package command

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/starford/martini/internal/apperr"
	"github.com/starford/martini/internal/storage"
	"github.com/starford/martini/internal/store"
)

func testRouter(t *testing.T) (*Router, *storage.FS) {
	t.Helper()
	fs, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewRouter(store.New(fs, logger), logger), fs
}

func TestParse(t *testing.T) {
	cases := []struct {
		text string
		name string
		args string
	}{
		{"/need milk, bread", "need", "milk, bread"},
		{"  /NEED Milk", "need", "Milk"},
		{"/need@martini_bot eggs", "need", "eggs"},
		{"/list", "list", ""},
		{"/got\tmilk", "got", "milk "},
	}
	for _, c := range cases {
		cmd, err := Parse(c.text)
		if err != nil {
			t.Errorf("Parse(%q): %v", c.text, err)
			continue
		}
		if cmd.Name != c.name || cmd.Args != c.args {
			t.Errorf("Parse(%q) = %+v, want {%s %q}", c.text, cmd, c.name, c.args)
		}
	}
}

func TestParse_NotCommand(t *testing.T) {
	for _, text := range []string{"", "hello", "/", "/@bot"} {
		if _, err := Parse(text); !errors.Is(err, apperr.ErrNotCommand) {
			t.Errorf("Parse(%q) err = %v, want ErrNotCommand", text, err)
		}
	}
}

func TestHandle_NeedGotFlow(t *testing.T) {
	r, _ := testRouter(t)
	ctx := context.Background()

	reply, err := r.Handle(ctx, 1, "/need Milk, Bread, milk")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if want := "'milk' already on the list!\nWe need:\n1. Bread\n2. Milk"; reply != want {
		t.Errorf("need reply = %q, want %q", reply, want)
	}

	reply, err = r.Handle(ctx, 1, "/got bread")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if want := "We still need:\n1. Milk"; reply != want {
		t.Errorf("got reply = %q, want %q", reply, want)
	}
}

func TestHandle_PersistsAfterMutation(t *testing.T) {
	r, fs := testRouter(t)
	if _, err := r.Handle(context.Background(), 42, "/weneed Bread, eggs"); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	data, err := fs.Read(42)
	if err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}
	if len(data) == 0 {
		t.Error("empty snapshot")
	}

	restarted := NewRouter(store.New(fs, nil), nil)
	reply, _ := restarted.Handle(context.Background(), 42, "/list")
	if reply != "We need:\n1. Bread\n2. eggs" {
		t.Errorf("list after restart = %q", reply)
	}
}

func TestHandle_ListDoesNotPersist(t *testing.T) {
	r, fs := testRouter(t)
	if _, err := r.Handle(context.Background(), 3, "/list"); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if _, err := fs.Read(3); err == nil {
		t.Error("/list should not write a snapshot")
	}
}

func TestHandle_Help(t *testing.T) {
	r, _ := testRouter(t)
	reply, err := r.Handle(context.Background(), 1, "/start")
	if err != nil || reply != HelpText {
		t.Errorf("reply = %q, err = %v", reply, err)
	}
}

func TestHandle_UnknownCommand(t *testing.T) {
	r, _ := testRouter(t)
	_, err := r.Handle(context.Background(), 1, "/dance now")
	if !errors.Is(err, apperr.ErrUnknownCommand) {
		t.Errorf("err = %v, want ErrUnknownCommand", err)
	}
}

func TestHandle_PlainText(t *testing.T) {
	r, _ := testRouter(t)
	_, err := r.Handle(context.Background(), 1, "just chatting")
	if !errors.Is(err, apperr.ErrNotCommand) {
		t.Errorf("err = %v, want ErrNotCommand", err)
	}
}
