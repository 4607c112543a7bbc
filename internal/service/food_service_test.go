package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/cache"
	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/events"
	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/food-catalog/pkg/logger"
)

var errStore = errors.New("store unavailable")

// fakeRepo is a scripted FoodRepository.
type fakeRepo struct {
	mu       sync.Mutex
	foods    []models.Food
	listErrs []error
	writeErr error

	listCalls   int
	searchTerms []string
	creates     int
	updates     int
	deletes     int

	// gate, when set, blocks List until it is closed.
	gate chan struct{}
}

func (f *fakeRepo) nextListErr() error {
	if len(f.listErrs) == 0 {
		return nil
	}
	err := f.listErrs[0]
	f.listErrs = f.listErrs[1:]
	return err
}

func (f *fakeRepo) List(ctx context.Context) ([]models.Food, error) {
	f.mu.Lock()
	f.listCalls++
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.nextListErr(); err != nil {
		return nil, err
	}
	out := make([]models.Food, len(f.foods))
	copy(out, f.foods)
	return out, nil
}

func (f *fakeRepo) Search(ctx context.Context, query string) ([]models.Food, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchTerms = append(f.searchTerms, query)
	if err := f.nextListErr(); err != nil {
		return nil, err
	}
	var out []models.Food
	for _, food := range f.foods {
		if food.Name == query {
			out = append(out, food)
		}
	}
	return out, nil
}

func (f *fakeRepo) Create(ctx context.Context, in models.FoodInput) (models.Food, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.writeErr != nil {
		return models.Food{}, f.writeErr
	}
	food := models.Food{ID: "new", Name: in.Name, Status: models.StatusOpen}
	f.foods = append(f.foods, food)
	return food, nil
}

func (f *fakeRepo) Update(ctx context.Context, id string, patch models.FoodPatch) (models.Food, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if f.writeErr != nil {
		return models.Food{}, f.writeErr
	}
	for i := range f.foods {
		if f.foods[i].ID == id {
			if patch.Name != nil {
				f.foods[i].Name = *patch.Name
			}
			return f.foods[i], nil
		}
	}
	return models.Food{}, errStore
}

func (f *fakeRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if f.writeErr != nil {
		return f.writeErr
	}
	for i := range f.foods {
		if f.foods[i].ID == id {
			f.foods = append(f.foods[:i], f.foods[i+1:]...)
			return nil
		}
	}
	return errStore
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	svc    *FoodService
	repo   *fakeRepo
	cache  *cache.Memory
	pub    *recordingPublisher
	clock  *testClock
	sleeps []time.Duration
}

func newFixture(t *testing.T, foods ...models.Food) *fixture {
	t.Helper()
	f := &fixture{
		repo:  &fakeRepo{foods: foods},
		cache: cache.NewMemory(0),
		pub:   &recordingPublisher{},
		clock: &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
	}
	f.svc = NewFoodService(f.repo, f.cache, f.pub, logger.New("error"), DefaultOptions())
	f.svc.now = f.clock.Now
	f.svc.sleep = func(ctx context.Context, d time.Duration) error {
		f.sleeps = append(f.sleeps, d)
		return nil
	}
	return f
}

func TestListFoods_ServesFreshCache(t *testing.T) {
	f := newFixture(t, models.Food{ID: "1", Name: "Pasta"})
	ctx := context.Background()

	first, err := f.svc.ListFoods(ctx, "")
	require.NoError(t, err)
	require.Len(t, first, 1)

	f.clock.Advance(29 * time.Second)
	_, err = f.svc.ListFoods(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, f.repo.listCalls)

	f.clock.Advance(2 * time.Second)
	_, err = f.svc.ListFoods(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, f.repo.listCalls)
}

func TestListFoods_SearchUsesSeparateKey(t *testing.T) {
	f := newFixture(t, models.Food{ID: "1", Name: "Pasta"}, models.Food{ID: "2", Name: "Sushi"})
	ctx := context.Background()

	all, err := f.svc.ListFoods(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	found, err := f.svc.ListFoods(ctx, "Sushi")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "2", found[0].ID)

	assert.Equal(t, []string{"Sushi"}, f.repo.searchTerms)
	assert.Equal(t, 2, f.cache.Len())
}

func TestListFoods_RetriesTwiceThenFails(t *testing.T) {
	f := newFixture(t)
	f.repo.listErrs = []error{errStore, errStore, errStore, errStore}

	_, err := f.svc.ListFoods(context.Background(), "")
	require.ErrorIs(t, err, errStore)

	assert.Equal(t, 3, f.repo.listCalls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, f.sleeps)
	assert.Equal(t, 0, f.cache.Len())
}

func TestListFoods_RecoversWithinRetryBound(t *testing.T) {
	f := newFixture(t, models.Food{ID: "1"})
	f.repo.listErrs = []error{errStore, errStore}

	foods, err := f.svc.ListFoods(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, foods, 1)
	assert.Equal(t, 3, f.repo.listCalls)
}

func TestListFoods_StopsRetryingWhenContextDone(t *testing.T) {
	f := newFixture(t)
	f.repo.listErrs = []error{errStore, errStore, errStore}
	f.svc.sleep = func(ctx context.Context, d time.Duration) error { return context.Canceled }

	_, err := f.svc.ListFoods(context.Background(), "")
	require.ErrorIs(t, err, errStore)
	assert.Equal(t, 1, f.repo.listCalls)
}

func TestListFoods_DeduplicatesConcurrentReads(t *testing.T) {
	f := newFixture(t, models.Food{ID: "1"})
	gate := make(chan struct{})
	f.repo.gate = gate

	var wg sync.WaitGroup
	var failures atomic.Int32
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.ListFoods(context.Background(), ""); err != nil {
				failures.Add(1)
			}
		}()
	}

	// Let the goroutines join the flight before releasing it.
	require.Eventually(t, func() bool {
		f.repo.mu.Lock()
		defer f.repo.mu.Unlock()
		return f.repo.listCalls == 1
	}, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, int32(0), failures.Load())
	assert.LessOrEqual(t, f.repo.listCalls, 5)
	assert.Equal(t, 1, f.cache.Len())
}

func TestListFoods_CancelledCallerDoesNotFailJoinedReaders(t *testing.T) {
	f := newFixture(t, models.Food{ID: "1", Name: "Pasta"})
	gate := make(chan struct{})
	f.repo.gate = gate

	ctxA, cancelA := context.WithCancel(context.Background())
	defer cancelA()
	doneA := make(chan error, 1)
	go func() {
		_, err := f.svc.ListFoods(ctxA, "")
		doneA <- err
	}()

	require.Eventually(t, func() bool {
		f.repo.mu.Lock()
		defer f.repo.mu.Unlock()
		return f.repo.listCalls == 1
	}, time.Second, time.Millisecond)

	type result struct {
		foods []models.Food
		err   error
	}
	doneB := make(chan result, 1)
	go func() {
		foods, err := f.svc.ListFoods(context.Background(), "")
		doneB <- result{foods, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	select {
	case err := <-doneA:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting on the shared fetch")
	}

	close(gate)
	res := <-doneB
	require.NoError(t, res.err)
	require.Len(t, res.foods, 1)
	assert.Equal(t, "Pasta", res.foods[0].Name)

	assert.Equal(t, 1, f.repo.listCalls)
	assert.Equal(t, 1, f.cache.Len())
}

func TestListFoods_JoinedReadersGetIndependentSlices(t *testing.T) {
	f := newFixture(t, models.Food{ID: "1", Name: "Pasta"})
	gate := make(chan struct{})
	f.repo.gate = gate

	results := make(chan []models.Food, 2)
	for i := 0; i < 2; i++ {
		go func() {
			foods, err := f.svc.ListFoods(context.Background(), "")
			assert.NoError(t, err)
			results <- foods
		}()
	}

	require.Eventually(t, func() bool {
		f.repo.mu.Lock()
		defer f.repo.mu.Unlock()
		return f.repo.listCalls == 1
	}, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(gate)

	first := <-results
	second := <-results
	require.Len(t, first, 1)
	require.Len(t, second, 1)

	first[0].Name = "Changed"
	assert.Equal(t, "Pasta", second[0].Name)

	cached, err := f.svc.ListFoods(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "Pasta", cached[0].Name)
}

func TestListFoods_InvalidatedFetchDoesNotWriteCache(t *testing.T) {
	f := newFixture(t, models.Food{ID: "1"})
	gate := make(chan struct{})
	f.repo.gate = gate

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.ListFoods(context.Background(), "")
		done <- err
	}()

	require.Eventually(t, func() bool {
		f.repo.mu.Lock()
		defer f.repo.mu.Unlock()
		return f.repo.listCalls == 1
	}, time.Second, time.Millisecond)

	require.NoError(t, f.svc.Invalidate(context.Background()))
	close(gate)
	require.NoError(t, <-done)

	assert.Equal(t, 0, f.cache.Len())
}

func TestMutations_InvalidateOnSuccess(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(svc *FoodService) error
		want   events.Type
	}{
		{
			name: "create",
			mutate: func(svc *FoodService) error {
				_, err := svc.CreateFood(ctx, models.FoodInput{Name: "Ramen"})
				return err
			},
			want: events.FoodCreated,
		},
		{
			name: "update",
			mutate: func(svc *FoodService) error {
				name := "Renamed"
				_, err := svc.UpdateFood(ctx, "1", models.FoodPatch{Name: &name})
				return err
			},
			want: events.FoodUpdated,
		},
		{
			name: "delete",
			mutate: func(svc *FoodService) error {
				return svc.DeleteFood(ctx, "1")
			},
			want: events.FoodDeleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, models.Food{ID: "1", Name: "Pasta"})
			_, err := f.svc.ListFoods(ctx, "")
			require.NoError(t, err)
			_, err = f.svc.ListFoods(ctx, "Pasta")
			require.NoError(t, err)
			require.Equal(t, 2, f.cache.Len())

			require.NoError(t, tt.mutate(f.svc))

			assert.Equal(t, 0, f.cache.Len())
			require.Len(t, f.pub.events, 1)
			assert.Equal(t, tt.want, f.pub.events[0].Type)
			assert.False(t, f.pub.events[0].OccurredAt.IsZero())
		})
	}
}

func TestMutations_FailureKeepsCacheAndDoesNotRetry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.Food{ID: "1", Name: "Pasta"})
	_, err := f.svc.ListFoods(ctx, "")
	require.NoError(t, err)

	f.repo.writeErr = errStore

	_, err = f.svc.CreateFood(ctx, models.FoodInput{Name: "Ramen"})
	assert.ErrorIs(t, err, errStore)
	_, err = f.svc.UpdateFood(ctx, "1", models.FoodPatch{})
	assert.ErrorIs(t, err, errStore)
	assert.ErrorIs(t, f.svc.DeleteFood(ctx, "1"), errStore)

	assert.Equal(t, 1, f.repo.creates)
	assert.Equal(t, 1, f.repo.updates)
	assert.Equal(t, 1, f.repo.deletes)
	assert.Equal(t, 1, f.cache.Len())
	assert.Empty(t, f.pub.events)
	assert.Empty(t, f.sleeps)
}

func TestDeleteFood_SubsequentListOmitsDeleted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.Food{ID: "1"}, models.Food{ID: "2"})

	before, err := f.svc.ListFoods(ctx, "")
	require.NoError(t, err)
	require.Len(t, before, 2)

	require.NoError(t, f.svc.DeleteFood(ctx, "1"))

	after, err := f.svc.ListFoods(ctx, "")
	require.NoError(t, err)
	_, found := models.FindByID(after, "1")
	assert.False(t, found)
	assert.Len(t, after, 1)
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("broker down")

	food, err := f.svc.CreateFood(context.Background(), models.FoodInput{Name: "Ramen"})
	require.NoError(t, err)
	assert.Equal(t, "new", food.ID)
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, time.Second, backoff(time.Second, 1))
	assert.Equal(t, 2*time.Second, backoff(time.Second, 2))
	assert.Equal(t, 4*time.Second, backoff(time.Second, 3))
	assert.Equal(t, maxRetryDelay, backoff(time.Second, 10))
}
