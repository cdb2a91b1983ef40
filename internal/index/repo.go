package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/martini/internal/item"
	"github.com/starford/martini/internal/models"
)

// ListRow represents a row in the lists table.
type ListRow struct {
	ChatID    int64
	Checksum  string
	UpdatedAt time.Time
}

// UpsertList replaces the indexed items of a conversation within a transaction.
func (db *DB) UpsertList(row ListRow, items []string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = time.Now()
	}

	_, err = tx.Exec(`
		INSERT INTO lists (chat_id, checksum, item_count, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET
			checksum   = excluded.checksum,
			item_count = excluded.item_count,
			updated_at = excluded.updated_at
	`, row.ChatID, row.Checksum, len(items), row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert list: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM list_items WHERE chat_id = ?`, row.ChatID); err != nil {
		return fmt.Errorf("index: clear items: %w", err)
	}
	if len(items) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO list_items (chat_id, item, item_key) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare item insert: %w", err)
		}
		defer stmt.Close()
		for _, it := range items {
			if _, err := stmt.Exec(row.ChatID, it, item.Key(it)); err != nil {
				return fmt.Errorf("index: insert item: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteList removes a conversation and its items from the index.
func (db *DB) DeleteList(chatID int64) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, _ = tx.Exec(`DELETE FROM list_items WHERE chat_id = ?`, chatID)
	_, _ = tx.Exec(`DELETE FROM lists WHERE chat_id = ?`, chatID)

	return tx.Commit()
}

// GetChecksum returns the stored checksum of a list, or empty string if not indexed.
func (db *DB) GetChecksum(chatID int64) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM lists WHERE chat_id = ?`, chatID).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns the checksum of every indexed list keyed by chat id.
func (db *DB) AllChecksums() (map[int64]string, error) {
	rows, err := db.conn.Query(`SELECT chat_id, checksum FROM lists`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[int64]string)
	for rows.Next() {
		var id int64
		var cs string
		if err := rows.Scan(&id, &cs); err != nil {
			return nil, err
		}
		out[id] = cs
	}
	return out, rows.Err()
}

// ListSummaries returns a page of indexed lists, most recently updated first,
// together with the total number of lists.
func (db *DB) ListSummaries(limit, offset int) ([]models.ListSummary, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM lists`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count lists: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT chat_id, item_count, updated_at
		FROM lists
		ORDER BY updated_at DESC, chat_id
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list summaries: %w", err)
	}
	defer rows.Close()

	var out []models.ListSummary
	for rows.Next() {
		var s models.ListSummary
		if err := rows.Scan(&s.ChatID, &s.ItemCount, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

// WhoNeeds returns the conversations whose list holds name, ignoring case.
func (db *DB) WhoNeeds(name string) ([]int64, error) {
	rows, err := db.conn.Query(`
		SELECT chat_id FROM list_items WHERE item_key = ? ORDER BY chat_id
	`, item.Key(name))
	if err != nil {
		return nil, fmt.Errorf("index: who needs: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
