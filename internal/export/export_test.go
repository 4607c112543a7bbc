package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/models"
)

func TestWriteSnapshot(t *testing.T) {
	now := time.Date(2025, 6, 1, 14, 30, 0, 0, time.FixedZone("AEST", 10*3600))
	foods := []models.Food{
		{ID: "1", Name: "Pasta", Status: models.StatusOpen},
		{ID: "2", Name: "Sushi", Status: models.StatusClosed},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, foods, now))

	var snap Snapshot
	require.NoError(t, json.Unmarshal(buf.Bytes(), &snap))
	assert.Equal(t, 2, snap.Count)
	assert.Equal(t, foods, snap.Foods)
	assert.True(t, snap.ExportedAt.Equal(now))
	assert.Equal(t, time.UTC, snap.ExportedAt.Location())
}

func TestWriteSnapshot_EmptyList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, nil, time.Now()))
	assert.Contains(t, buf.String(), `"foods": []`)
	assert.Contains(t, buf.String(), `"count": 0`)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteSnapshot_WriterError(t *testing.T) {
	assert.Error(t, WriteSnapshot(failingWriter{}, nil, time.Now()))
}

func TestObjectKey(t *testing.T) {
	now := time.Date(2025, 6, 1, 4, 5, 6, 0, time.UTC)
	assert.Equal(t, "food-catalog/snapshot-20250601T040506Z.json", ObjectKey(now))
}
