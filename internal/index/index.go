package index

import "github.com/starford/martini/internal/models"

// ListIndex is the query side of the index used by the API and MCP layers.
type ListIndex interface {
	UpsertList(row ListRow, items []string) error
	DeleteList(chatID int64) error
	GetChecksum(chatID int64) (string, error)
	AllChecksums() (map[int64]string, error)
	ListSummaries(limit, offset int) ([]models.ListSummary, int, error)
	WhoNeeds(item string) ([]int64, error)
	Close() error
}

// Verify *DB satisfies ListIndex at compile time.
var _ ListIndex = (*DB)(nil)
