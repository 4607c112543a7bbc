// Package events publishes catalog change notifications after successful
// mutations.
package events

import (
	"context"
	"time"

	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/models"
)

// Type names a catalog change.
type Type string

const (
	FoodCreated Type = "food.created"
	FoodUpdated Type = "food.updated"
	FoodDeleted Type = "food.deleted"
)

// Event describes one successful mutation. Food is nil for deletions.
type Event struct {
	Type       Type         `json:"type"`
	FoodID     string       `json:"foodId"`
	Food       *models.Food `json:"food,omitempty"`
	OccurredAt time.Time    `json:"occurredAt"`
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }
