// Package testutil provides shared test helpers for setting up data
// directories, stores and index databases.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/starford/martini/internal/command"
	"github.com/starford/martini/internal/index"
	"github.com/starford/martini/internal/listservice"
	"github.com/starford/martini/internal/storage"
	"github.com/starford/martini/internal/store"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "martini-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestDataDir creates a temporary data directory with a storage provider.
func TestDataDir(t *testing.T) (string, *storage.FS) {
	t.Helper()
	fs, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return fs.Root(), fs
}

// Env bundles a fully wired service over temporary storage.
type Env struct {
	FS      *storage.FS
	DB      *index.DB
	Store   *store.Store
	Service *listservice.Service
}

// TestEnv wires storage, index, store, router and service for a test.
func TestEnv(t *testing.T) *Env {
	t.Helper()
	_, fs := TestDataDir(t)
	db := TestDB(t)
	logger := Logger()
	st := store.New(fs, logger)
	return &Env{
		FS:      fs,
		DB:      db,
		Store:   st,
		Service: listservice.NewService(st, command.NewRouter(st, logger), db),
	}
}

// Sync brings the index of env up to date with its data directory.
func (e *Env) Sync(t *testing.T) {
	t.Helper()
	if err := index.Sync(e.DB, e.FS, Logger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
}
