// Package models defines the domain types shared across martini packages.
package models

import "time"

// SnapshotMeta describes one persisted list file in the data directory.
type SnapshotMeta struct {
	ChatID    int64     `json:"chat_id"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListSummary is the indexed view of one conversation's list.
type ListSummary struct {
	ChatID    int64     `json:"chat_id"`
	ItemCount int       `json:"item_count"`
	UpdatedAt time.Time `json:"updated_at"`
}
