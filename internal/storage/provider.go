// Package storage persists one list snapshot per conversation in the data directory.
package storage

import "github.com/starford/martini/internal/models"

// Provider is the interface for snapshot file operations.
type Provider interface {
	// List returns metadata for every snapshot in the data directory.
	List() ([]models.SnapshotMeta, error)
	// Read returns the raw snapshot of chatID. A missing snapshot yields an
	// error matching fs.ErrNotExist.
	Read(chatID int64) ([]byte, error)
	// Write atomically replaces the snapshot of chatID.
	Write(chatID int64, content []byte) error
	// Delete removes the snapshot of chatID.
	Delete(chatID int64) error
}
