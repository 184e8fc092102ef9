package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/automeal/automeal-server/internal/catalog"
	"github.com/automeal/automeal-server/internal/models"
	"github.com/go-chi/chi/v5"
)

// DishHandler handles dish-related HTTP requests
type DishHandler struct {
	catalog *catalog.Provider
	logger  *slog.Logger
}

// NewDishHandler creates a new dish handler
func NewDishHandler(cat *catalog.Provider, logger *slog.Logger) *DishHandler {
	return &DishHandler{
		catalog: cat,
		logger:  logger,
	}
}

// ListDishes handles GET /api/dishes
func (h *DishHandler) ListDishes(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.catalog.ListDishes(), h.logger)
}

// GetDish handles GET /api/dishes/{dishID}
func (h *DishHandler) GetDish(w http.ResponseWriter, r *http.Request) {
	dishID := chi.URLParam(r, "dishID")
	if dishID == "" {
		WriteError(w, http.StatusBadRequest, "dish ID is required", h.logger)
		return
	}

	dish, err := h.catalog.GetDish(dishID)
	if err != nil {
		if errors.Is(err, catalog.ErrDishNotFound) {
			h.logger.Info("dish not found", "dish_id", dishID)
			WriteError(w, http.StatusNotFound, "Dish not found", h.logger)
			return
		}
		h.logger.Error("failed to get dish", "dish_id", dishID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, dish, h.logger)
}

// SearchDishes handles POST /api/dishes/search
func (h *DishHandler) SearchDishes(w http.ResponseWriter, r *http.Request) {
	var filter models.DishFilter
	if err := json.NewDecoder(r.Body).Decode(&filter); err != nil {
		h.logger.Warn("malformed search filter", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, h.catalog.Search(filter), h.logger)
}
