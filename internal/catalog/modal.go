package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/form"
	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/models"
)

// FoodModal is the add/edit meal form.
type FoodModal struct {
	page *Page

	mu          sync.Mutex
	phase       Phase
	target      *models.Food
	draft       models.Draft
	fieldErrors form.Errors
	err         error
}

// OpenAdd opens the modal with an empty form.
func (m *FoodModal) OpenAdd() error {
	return m.open(nil, models.EmptyDraft())
}

// OpenEdit opens the modal seeded from an existing meal.
func (m *FoodModal) OpenEdit(food models.Food) error {
	return m.open(&food, models.DraftFromFood(food))
}

func (m *FoodModal) open(target *models.Food, draft models.Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase == PhaseOpenSubmitting {
		return ErrModalBusy
	}
	m.phase = PhaseOpenIdle
	m.target = target
	m.draft = draft
	m.fieldErrors = nil
	m.err = nil
	return nil
}

// Submit validates draft and, when it is acceptable, creates a meal or
// updates the one being edited. Invalid drafts never reach the store.
// On success the modal closes and the page list is re-read; on failure the
// modal stays open with the error.
func (m *FoodModal) Submit(ctx context.Context, draft models.Draft) (models.Food, error) {
	m.mu.Lock()
	switch m.phase {
	case PhaseClosed:
		m.mu.Unlock()
		return models.Food{}, ErrModalClosed
	case PhaseOpenSubmitting:
		m.mu.Unlock()
		return models.Food{}, ErrModalBusy
	}

	m.draft = draft
	if errs := form.Validate(draft); len(errs) > 0 {
		m.fieldErrors = errs
		m.phase = PhaseOpenIdle
		m.mu.Unlock()
		return models.Food{}, fmt.Errorf("%w: %w", ErrInvalidDraft, errs)
	}
	m.fieldErrors = nil
	m.err = nil
	m.phase = PhaseOpenSubmitting
	target := m.target
	m.mu.Unlock()

	var (
		food models.Food
		err  error
	)
	if target == nil {
		food, err = m.page.svc.CreateFood(ctx, form.ToInput(draft))
	} else {
		food, err = m.page.svc.UpdateFood(ctx, target.ID, form.ToPatch(draft))
	}

	m.mu.Lock()
	if err != nil {
		m.phase = PhaseOpenError
		m.err = err
		m.mu.Unlock()
		m.page.logger.Warn("food submit failed", "editing", target != nil, "error", err)
		return models.Food{}, err
	}
	m.reset()
	m.mu.Unlock()

	m.page.afterMutation(ctx)
	return food, nil
}

// Close dismisses the modal and discards the draft.
func (m *FoodModal) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase == PhaseOpenSubmitting {
		return ErrModalBusy
	}
	m.reset()
	return nil
}

func (m *FoodModal) reset() {
	m.phase = PhaseClosed
	m.target = nil
	m.draft = models.Draft{}
	m.fieldErrors = nil
	m.err = nil
}

func (m *FoodModal) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Draft returns the form state last opened or submitted.
func (m *FoodModal) Draft() models.Draft {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draft
}

// Editing returns the meal being edited, if any.
func (m *FoodModal) Editing() (models.Food, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.target == nil {
		return models.Food{}, false
	}
	return *m.target, true
}

// FieldErrors returns the validation messages of the last submit.
func (m *FoodModal) FieldErrors() form.Errors {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fieldErrors
}

// Err returns the store failure of the last submit.
func (m *FoodModal) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// DeleteModal is the delete confirmation.
type DeleteModal struct {
	page *Page

	mu     sync.Mutex
	phase  Phase
	target string
	err    error
}

// RequestDelete opens the confirmation for a displayed meal. Ids that are
// not in the current list are ignored.
func (m *DeleteModal) RequestDelete(id string) bool {
	if _, ok := m.page.Find(id); !ok {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase == PhaseOpenSubmitting {
		return false
	}
	m.phase = PhaseOpenIdle
	m.target = id
	m.err = nil
	return true
}

// Confirm deletes the targeted meal. On success the modal closes and the
// page list is re-read; on failure it stays open with the error.
func (m *DeleteModal) Confirm(ctx context.Context) error {
	m.mu.Lock()
	switch m.phase {
	case PhaseClosed:
		m.mu.Unlock()
		return ErrModalClosed
	case PhaseOpenSubmitting:
		m.mu.Unlock()
		return ErrModalBusy
	}
	m.phase = PhaseOpenSubmitting
	m.err = nil
	id := m.target
	m.mu.Unlock()

	err := m.page.svc.DeleteFood(ctx, id)

	m.mu.Lock()
	if err != nil {
		m.phase = PhaseOpenError
		m.err = err
		m.mu.Unlock()
		m.page.logger.Warn("food delete failed", "food_id", id, "error", err)
		return err
	}
	m.phase = PhaseClosed
	m.target = ""
	m.mu.Unlock()

	m.page.afterMutation(ctx)
	return nil
}

// Close dismisses the confirmation.
func (m *DeleteModal) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase == PhaseOpenSubmitting {
		return ErrModalBusy
	}
	m.phase = PhaseClosed
	m.target = ""
	m.err = nil
	return nil
}

func (m *DeleteModal) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Target returns the id awaiting confirmation.
func (m *DeleteModal) Target() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.target
}

// Err returns the store failure of the last confirm.
func (m *DeleteModal) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}
