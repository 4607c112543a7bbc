// Package export writes catalog snapshots.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/models"
)

// Snapshot is the exported document.
type Snapshot struct {
	ExportedAt time.Time     `json:"exportedAt"`
	Count      int           `json:"count"`
	Foods      []models.Food `json:"foods"`
}

// WriteSnapshot encodes foods to w as an indented Snapshot.
func WriteSnapshot(w io.Writer, foods []models.Food, now time.Time) error {
	if foods == nil {
		foods = []models.Food{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Snapshot{
		ExportedAt: now.UTC(),
		Count:      len(foods),
		Foods:      foods,
	}); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// ObjectKey names a snapshot object when no key is given.
func ObjectKey(now time.Time) string {
	return "food-catalog/snapshot-" + now.UTC().Format("20060102T150405Z") + ".json"
}
