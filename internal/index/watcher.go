package index

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/martini/internal/storage"
)

// Event kinds passed to EventCallback.
const (
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// EventCallback is called after a watcher-driven index change.
type EventCallback func(kind string, chatID int64)

// Watch starts an fsnotify watcher on the data directory and keeps the
// index in step with snapshot files until ctx is cancelled. It calls cb (if
// non-nil) after each successful index mutation.
//
// Snapshots are replaced by renaming a temp file over them, which shows up
// as a Create on the snapshot name. Rename events on a snapshot name trigger
// a debounced reconciliation pass.
func Watch(ctx context.Context, db *DB, store storage.Provider, dataDir string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dataDir); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", dataDir))

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcile(db, store, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			chatID, isSnapshot := storage.ChatIDFromName(ev.Name)
			if !isSnapshot {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				data, readErr := store.Read(chatID)
				if readErr != nil {
					logger.Warn("watcher: read failed", slog.Int64("chat_id", chatID), slog.String("error", readErr.Error()))
					continue
				}
				cs := storage.Checksum(data)
				if prev, _ := db.GetChecksum(chatID); prev == cs {
					continue
				}
				if idxErr := indexSnapshot(db, chatID, data, time.Now()); idxErr != nil {
					logger.Warn("watcher: index failed", slog.Int64("chat_id", chatID), slog.String("error", idxErr.Error()))
					continue
				}
				logger.Debug("watcher: indexed", slog.Int64("chat_id", chatID))
				if cb != nil {
					cb(EventUpdated, chatID)
				}

			case ev.Op&fsnotify.Remove != 0:
				if delErr := db.DeleteList(chatID); delErr != nil {
					logger.Warn("watcher: delete failed", slog.Int64("chat_id", chatID), slog.String("error", delErr.Error()))
					continue
				}
				logger.Debug("watcher: deleted", slog.Int64("chat_id", chatID))
				if cb != nil {
					cb(EventDeleted, chatID)
				}

			case ev.Op&fsnotify.Rename != 0:
				// The snapshot was moved away; whatever replaced it (if
				// anything) is picked up by the reconciliation pass.
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reconcile removes index entries without a snapshot on disk and indexes
// snapshots whose checksum changed.
func reconcile(db *DB, store storage.Provider, logger *slog.Logger, cb EventCallback) {
	checksums, err := db.AllChecksums()
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}

	metas, err := store.List()
	if err != nil {
		logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[int64]string, len(metas))
	for _, m := range metas {
		disk[m.ChatID] = m.Checksum
	}

	for id := range checksums {
		if _, ok := disk[id]; !ok {
			if delErr := db.DeleteList(id); delErr == nil {
				logger.Debug("reconcile: removed stale", slog.Int64("chat_id", id))
				if cb != nil {
					cb(EventDeleted, id)
				}
			}
		}
	}

	for _, m := range metas {
		if checksums[m.ChatID] == m.Checksum {
			continue
		}
		data, readErr := store.Read(m.ChatID)
		if readErr != nil {
			continue
		}
		if idxErr := indexSnapshot(db, m.ChatID, data, m.UpdatedAt); idxErr == nil {
			logger.Debug("reconcile: indexed", slog.Int64("chat_id", m.ChatID))
			if cb != nil {
				cb(EventUpdated, m.ChatID)
			}
		}
	}
}
