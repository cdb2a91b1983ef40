package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/starford/martini/internal/models"
)

// Ext is the file extension of snapshot files.
const Ext = ".yaml"

const tmpPattern = ".martini-tmp-*"

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to the data directory
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute data directory.
func (f *FS) Root() string {
	return f.root
}

// FileName returns the snapshot file name for chatID, e.g. "-1001.yaml".
func FileName(chatID int64) string {
	return strconv.FormatInt(chatID, 10) + Ext
}

// ChatIDFromName is the inverse of FileName. Any directory component is ignored.
func ChatIDFromName(name string) (int64, bool) {
	base := filepath.Base(name)
	if !strings.HasSuffix(base, Ext) {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSuffix(base, Ext), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (f *FS) path(chatID int64) string {
	return filepath.Join(f.root, FileName(chatID))
}

// List returns metadata for every snapshot file directly under root.
func (f *FS) List() ([]models.SnapshotMeta, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	var out []models.SnapshotMeta
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		id, ok := ChatIDFromName(e.Name())
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("storage: list: %w", err)
		}
		data, err := os.ReadFile(filepath.Join(f.root, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("storage: list: %w", err)
		}
		out = append(out, models.SnapshotMeta{
			ChatID:    id,
			Checksum:  Checksum(data),
			UpdatedAt: info.ModTime(),
		})
	}
	return out, nil
}

// Read returns the raw bytes of a snapshot.
func (f *FS) Read(chatID int64) ([]byte, error) {
	data, err := os.ReadFile(f.path(chatID))
	if err != nil {
		return nil, fmt.Errorf("storage: read %d: %w", chatID, err)
	}
	return data, nil
}

// Write atomically writes content: tmp file → fsync → rename.
func (f *FS) Write(chatID int64, content []byte) error {
	tmp, err := os.CreateTemp(f.root, tmpPattern)
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, f.path(chatID)); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Delete removes a snapshot.
func (f *FS) Delete(chatID int64) error {
	if err := os.Remove(f.path(chatID)); err != nil {
		return fmt.Errorf("storage: delete %d: %w", chatID, err)
	}
	return nil
}

// Checksum returns the hex-encoded SHA-256 digest of data.
func Checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
