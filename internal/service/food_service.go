package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/cache"
	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/events"
	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/metrics"
	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/repository"
)

const maxRetryDelay = 30 * time.Second

// Options tunes read caching and retry.
type Options struct {
	// StaleTime is how long a cached list is served without re-fetching.
	StaleTime time.Duration
	// RetryCount is the number of extra attempts for failed reads.
	RetryCount int
	// RetryDelay is the first backoff delay; it doubles per attempt.
	RetryDelay time.Duration
}

// DefaultOptions mirror the catalog UI: 30s stale window, two read retries.
func DefaultOptions() Options {
	return Options{
		StaleTime:  30 * time.Second,
		RetryCount: 2,
		RetryDelay: time.Second,
	}
}

// FoodService reads food lists through the cache and runs mutations that
// invalidate it.
type FoodService struct {
	repo      repository.FoodRepository
	cache     cache.Cache
	publisher events.Publisher
	logger    *slog.Logger
	opts      Options
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error

	flights singleflight.Group

	mu         sync.Mutex
	generation uint64
}

// NewFoodService creates a new food service
func NewFoodService(repo repository.FoodRepository, c cache.Cache, publisher events.Publisher, logger *slog.Logger, opts Options) *FoodService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.RetryCount < 0 {
		opts.RetryCount = 0
	}
	return &FoodService{
		repo:      repo,
		cache:     c,
		publisher: publisher,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
		sleep:     sleepContext,
	}
}

// ListFoods returns the food list for a search term. An empty term lists
// everything. Fresh cached lists are served directly; otherwise one fetch per
// key is shared by concurrent callers and retried on failure.
func (s *FoodService) ListFoods(ctx context.Context, term string) ([]models.Food, error) {
	key := cache.FoodsKey(term)

	entry, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.RecordCacheLookup("error")
		s.logger.Warn("cache read failed", "key", key, "error", err)
	case ok && entry.Age(s.now()) < s.opts.StaleTime:
		metrics.RecordCacheLookup("hit")
		return entry.Foods, nil
	case ok:
		metrics.RecordCacheLookup("stale")
	default:
		metrics.RecordCacheLookup("miss")
	}

	gen := s.currentGeneration()
	flightKey := fmt.Sprintf("%s#%d", key, gen)

	// The flight is shared by every caller of this key, so it runs detached
	// from any one caller's cancellation. Each caller stops waiting on its own ctx.
	flightCtx := context.WithoutCancel(ctx)
	ch := s.flights.DoChan(flightKey, func() (interface{}, error) {
		started := s.now()
		foods, err := s.fetchWithRetry(flightCtx, term)
		if err != nil {
			return nil, err
		}
		s.store(flightCtx, key, gen, cache.Entry{Foods: foods, FetchedAt: started})
		return foods, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return cloneFoods(res.Val.([]models.Food)), nil
	}
}

// CreateFood creates a meal. Mutations are attempted once.
func (s *FoodService) CreateFood(ctx context.Context, in models.FoodInput) (models.Food, error) {
	food, err := s.repo.Create(ctx, in)
	metrics.RecordStoreCall("create", err)
	if err != nil {
		return models.Food{}, err
	}

	s.afterMutation(ctx, events.Event{Type: events.FoodCreated, FoodID: food.ID, Food: &food})
	s.logger.Info("food created", "food_id", food.ID, "name", food.Name)
	return food, nil
}

// UpdateFood applies a partial update.
func (s *FoodService) UpdateFood(ctx context.Context, id string, patch models.FoodPatch) (models.Food, error) {
	food, err := s.repo.Update(ctx, id, patch)
	metrics.RecordStoreCall("update", err)
	if err != nil {
		return models.Food{}, err
	}

	s.afterMutation(ctx, events.Event{Type: events.FoodUpdated, FoodID: id, Food: &food})
	s.logger.Info("food updated", "food_id", id)
	return food, nil
}

// DeleteFood removes a meal.
func (s *FoodService) DeleteFood(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	metrics.RecordStoreCall("delete", err)
	if err != nil {
		return err
	}

	s.afterMutation(ctx, events.Event{Type: events.FoodDeleted, FoodID: id})
	s.logger.Info("food deleted", "food_id", id)
	return nil
}

// Invalidate marks every cached food list as stale. Reads already in flight
// will not write their result back.
func (s *FoodService) Invalidate(ctx context.Context) error {
	s.mu.Lock()
	s.generation++
	s.mu.Unlock()

	if err := s.cache.Invalidate(ctx, cache.FoodsPrefix); err != nil {
		return fmt.Errorf("failed to invalidate food lists: %w", err)
	}
	return nil
}

func (s *FoodService) afterMutation(ctx context.Context, event events.Event) {
	if err := s.Invalidate(ctx); err != nil {
		s.logger.Warn("cache invalidation failed", "error", err)
	}

	event.OccurredAt = s.now().UTC()
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", "type", event.Type, "food_id", event.FoodID, "error", err)
	}
}

func (s *FoodService) fetch(ctx context.Context, term string) ([]models.Food, error) {
	if term == "" {
		foods, err := s.repo.List(ctx)
		metrics.RecordStoreCall("list", err)
		return foods, err
	}
	foods, err := s.repo.Search(ctx, term)
	metrics.RecordStoreCall("search", err)
	return foods, err
}

func (s *FoodService) fetchWithRetry(ctx context.Context, term string) ([]models.Food, error) {
	var lastErr error
	for attempt := 0; attempt <= s.opts.RetryCount; attempt++ {
		if attempt > 0 {
			delay := backoff(s.opts.RetryDelay, attempt)
			s.logger.Warn("retrying food list fetch",
				"term", term,
				"attempt", attempt,
				"delay_ms", delay.Milliseconds(),
				"error", lastErr,
			)
			if err := s.sleep(ctx, delay); err != nil {
				return nil, lastErr
			}
		}

		foods, err := s.fetch(ctx, term)
		if err == nil {
			return foods, nil
		}
		lastErr = err
	}

	s.logger.Error("failed to fetch food list", "term", term, "attempts", s.opts.RetryCount+1, "error", lastErr)
	return nil, lastErr
}

// store writes an entry unless an invalidation happened since the fetch began.
func (s *FoodService) store(ctx context.Context, key string, gen uint64, entry cache.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		s.logger.Debug("discarding superseded food list", "key", key)
		return
	}
	if err := s.cache.Set(ctx, key, entry); err != nil {
		s.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

func (s *FoodService) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// cloneFoods gives each caller of a shared flight its own slice.
func cloneFoods(foods []models.Food) []models.Food {
	out := make([]models.Food, len(foods))
	copy(out, foods)
	return out
}

func backoff(base time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	if d > maxRetryDelay || d < 0 {
		return maxRetryDelay
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
