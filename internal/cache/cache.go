// Package cache holds fetched food lists keyed by search term.
package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/models"
)

// FoodsPrefix is the key prefix shared by every food list entry.
const FoodsPrefix = "foods"

var ErrUnknownDriver = errors.New("unknown cache driver")

// FoodsKey derives the cache key for a search term.
func FoodsKey(term string) string {
	return FoodsPrefix + ":" + term
}

// Entry is one cached list read.
type Entry struct {
	Foods     []models.Food `json:"foods"`
	FetchedAt time.Time     `json:"fetchedAt"`
}

// Age returns how old the entry is at now.
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.FetchedAt)
}

// Cache is the query cache consumed by the service layer.
type Cache interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, entry Entry) error
	Invalidate(ctx context.Context, prefix string) error
}

// Memory is a process-local Cache. Entries older than ttl are dropped on
// read; a zero ttl keeps entries until invalidated.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory creates an in-memory cache.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		entries: make(map[string]Entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *Memory) Get(ctx context.Context, key string) (Entry, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return Entry{}, false, nil
	}

	if m.ttl > 0 && entry.Age(m.now()) > m.ttl {
		m.mu.Lock()
		if current, still := m.entries[key]; still && current.FetchedAt.Equal(entry.FetchedAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return Entry{}, false, nil
	}
	return cloneEntry(entry), true, nil
}

func (m *Memory) Set(ctx context.Context, key string, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = cloneEntry(entry)
	return nil
}

func (m *Memory) Invalidate(ctx context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}

// Len returns the number of live entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func cloneEntry(e Entry) Entry {
	foods := make([]models.Food, len(e.Foods))
	copy(foods, e.Foods)
	return Entry{Foods: foods, FetchedAt: e.FetchedAt}
}
