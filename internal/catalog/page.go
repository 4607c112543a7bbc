// Package catalog holds the view state of the meal catalog: the current
// list read and the add/edit and delete modals that drive mutations.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/models"
)

var (
	ErrModalClosed  = errors.New("modal is not open")
	ErrModalBusy    = errors.New("modal is submitting")
	ErrInvalidDraft = errors.New("invalid draft")
)

// ListState is the state of the displayed food list.
type ListState string

const (
	ListIdle    ListState = "idle"
	ListLoading ListState = "loading"
	ListReady   ListState = "ready"
	ListFailed  ListState = "failed"
)

// Phase is the state of a modal.
type Phase string

const (
	PhaseClosed         Phase = "closed"
	PhaseOpenIdle       Phase = "open-idle"
	PhaseOpenSubmitting Phase = "open-submitting"
	PhaseOpenError      Phase = "open-error"
)

// Open reports whether the modal is shown.
func (p Phase) Open() bool {
	return p != PhaseClosed
}

// FoodService is the read and mutation surface the catalog drives.
type FoodService interface {
	ListFoods(ctx context.Context, term string) ([]models.Food, error)
	CreateFood(ctx context.Context, in models.FoodInput) (models.Food, error)
	UpdateFood(ctx context.Context, id string, patch models.FoodPatch) (models.Food, error)
	DeleteFood(ctx context.Context, id string) error
}

// Page is the catalog screen: a search term, the list read for it and the
// two modals.
type Page struct {
	svc    FoodService
	logger *slog.Logger

	mu    sync.RWMutex
	seq   uint64
	term  string
	state ListState
	foods []models.Food
	err   error

	FoodModal   *FoodModal
	DeleteModal *DeleteModal
}

// NewPage creates a page with an idle list and both modals closed.
func NewPage(svc FoodService, logger *slog.Logger) *Page {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Page{
		svc:    svc,
		logger: logger,
		state:  ListIdle,
	}
	p.FoodModal = &FoodModal{page: p, phase: PhaseClosed}
	p.DeleteModal = &DeleteModal{page: p, phase: PhaseClosed}
	return p
}

// Refresh reads the list for the active search term. A failed read leaves
// the page in the failed state with no foods shown. Only the most recently
// started refresh updates the page.
func (p *Page) Refresh(ctx context.Context) error {
	p.mu.Lock()
	p.seq++
	seq := p.seq
	term := p.term
	p.state = ListLoading
	p.err = nil
	p.mu.Unlock()

	foods, err := p.svc.ListFoods(ctx, term)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.seq != seq || p.term != term {
		// A newer read owns the page now.
		return err
	}
	if err != nil {
		p.state = ListFailed
		p.foods = nil
		p.err = err
		p.logger.Warn("failed to load foods", "term", term, "error", err)
		return err
	}
	p.state = ListReady
	p.foods = foods
	return nil
}

// Search changes the active term and reads its list.
func (p *Page) Search(ctx context.Context, term string) error {
	p.mu.Lock()
	p.term = term
	p.mu.Unlock()
	return p.Refresh(ctx)
}

// LoadMore is shown on the page but pagination is not supported.
func (p *Page) LoadMore(ctx context.Context) error {
	return nil
}

// Term returns the active search term.
func (p *Page) Term() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.term
}

// State returns the list state.
func (p *Page) State() ListState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Foods returns a copy of the displayed list.
func (p *Page) Foods() []models.Food {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]models.Food, len(p.foods))
	copy(out, p.foods)
	return out
}

// Err returns the last list read failure, if the page is in the failed state.
func (p *Page) Err() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.err
}

// Find looks up a displayed food by id.
func (p *Page) Find(id string) (models.Food, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return models.FindByID(p.foods, id)
}

// afterMutation re-reads the list once a modal has closed on success.
// Read failures show up on the page, not on the modal.
func (p *Page) afterMutation(ctx context.Context) {
	_ = p.Refresh(ctx)
}
