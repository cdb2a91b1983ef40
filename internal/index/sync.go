package index

import (
	"log/slog"
	"time"

	"github.com/starford/martini/internal/snapshot"
	"github.com/starford/martini/internal/storage"
)

// Sync walks the data directory and brings the index up to date:
//   - new/changed snapshots are decoded and upserted
//   - snapshots removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List()
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[int64]struct{}, len(metas))
	for _, m := range metas {
		disk[m.ChatID] = struct{}{}

		if checksums[m.ChatID] == m.Checksum {
			continue
		}

		data, err := store.Read(m.ChatID)
		if err != nil {
			logger.Warn("sync: read failed", slog.Int64("chat_id", m.ChatID), slog.String("error", err.Error()))
			continue
		}
		if err := indexSnapshot(db, m.ChatID, data, m.UpdatedAt); err != nil {
			logger.Warn("sync: index failed", slog.Int64("chat_id", m.ChatID), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.Int64("chat_id", m.ChatID))
		}
	}

	// Remove stale entries.
	for id := range checksums {
		if _, ok := disk[id]; !ok {
			if err := db.DeleteList(id); err != nil {
				logger.Warn("sync: delete failed", slog.Int64("chat_id", id), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.Int64("chat_id", id))
			}
		}
	}

	return nil
}

// indexSnapshot decodes data and upserts it into the DB.
func indexSnapshot(db *DB, chatID int64, data []byte, updatedAt time.Time) error {
	snap, err := snapshot.Decode(data)
	if err != nil {
		return err
	}
	return db.UpsertList(ListRow{
		ChatID:    chatID,
		Checksum:  storage.Checksum(data),
		UpdatedAt: updatedAt,
	}, snap.Items)
}
