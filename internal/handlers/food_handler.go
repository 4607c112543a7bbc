package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/form"
	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/repository"
)

// FoodService is the catalog surface exposed over HTTP.
type FoodService interface {
	ListFoods(ctx context.Context, term string) ([]models.Food, error)
	CreateFood(ctx context.Context, in models.FoodInput) (models.Food, error)
	UpdateFood(ctx context.Context, id string, patch models.FoodPatch) (models.Food, error)
	DeleteFood(ctx context.Context, id string) error
}

// FoodHandler handles food-related HTTP requests
type FoodHandler struct {
	service FoodService
	logger  *slog.Logger
}

// NewFoodHandler creates a new food handler
func NewFoodHandler(service FoodService, logger *slog.Logger) *FoodHandler {
	return &FoodHandler{
		service: service,
		logger:  logger,
	}
}

// ListFoods handles GET /api/foods
// An optional name query parameter filters by name.
func (h *FoodHandler) ListFoods(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("name")

	foods, err := h.service.ListFoods(r.Context(), term)
	if err != nil {
		h.writeFailure(w, "failed to list foods", err, "term", term)
		return
	}

	WriteJSON(w, http.StatusOK, foods, h.logger)
}

// CreateFood handles POST /api/foods
// The body is a form draft and is validated before anything is sent to the store.
func (h *FoodHandler) CreateFood(w http.ResponseWriter, r *http.Request) {
	var draft models.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		h.logger.Warn("failed to decode food draft", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	if errs := form.Validate(draft); len(errs) > 0 {
		WriteValidationError(w, errs, h.logger)
		return
	}

	food, err := h.service.CreateFood(r.Context(), form.ToInput(draft))
	if err != nil {
		h.writeFailure(w, "failed to create food", err)
		return
	}

	WriteJSON(w, http.StatusCreated, food, h.logger)
}

// UpdateFood handles PUT /api/foods/{foodId}
// Only the fields present in the body are sent.
func (h *FoodHandler) UpdateFood(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "foodId")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.logger)
		return
	}

	var patch models.FoodPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.logger.Warn("failed to decode food patch", "food_id", id, "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	if errs := form.ValidatePatch(patch); len(errs) > 0 {
		WriteValidationError(w, errs, h.logger)
		return
	}

	food, err := h.service.UpdateFood(r.Context(), id, patch)
	if err != nil {
		h.writeFailure(w, "failed to update food", err, "food_id", id)
		return
	}

	WriteJSON(w, http.StatusOK, food, h.logger)
}

// DeleteFood handles DELETE /api/foods/{foodId}
func (h *FoodHandler) DeleteFood(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "foodId")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.logger)
		return
	}

	if err := h.service.DeleteFood(r.Context(), id); err != nil {
		h.writeFailure(w, "failed to delete food", err, "food_id", id)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeFailure maps a service error onto a status code:
// - 404: the store has no such food
// - 502: any other store failure
// - 400: a local input error
// - 500: everything else
func (h *FoodHandler) writeFailure(w http.ResponseWriter, msg string, err error, attrs ...any) {
	attrs = append(attrs, "error", err)

	var fieldErrs form.Errors
	switch {
	case errors.As(err, &fieldErrs):
		WriteValidationError(w, fieldErrs, h.logger)
	case repository.IsNotFound(err):
		h.logger.Info(msg, attrs...)
		WriteError(w, http.StatusNotFound, "Food not found", h.logger)
	case repository.IsStoreFailure(err):
		h.logger.Error(msg, attrs...)
		WriteError(w, http.StatusBadGateway, "Food store unavailable", h.logger)
	case errors.Is(err, repository.ErrEmptyID):
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.logger)
	default:
		h.logger.Error(msg, attrs...)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
	}
}
