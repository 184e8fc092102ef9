package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/automeal/automeal-server/internal/catalog"
	"github.com/go-chi/chi/v5"
)

// RestaurantHandler handles restaurant-related HTTP requests
type RestaurantHandler struct {
	catalog *catalog.Provider
	logger  *slog.Logger
}

// NewRestaurantHandler creates a new restaurant handler
func NewRestaurantHandler(cat *catalog.Provider, logger *slog.Logger) *RestaurantHandler {
	return &RestaurantHandler{
		catalog: cat,
		logger:  logger,
	}
}

// ListRestaurants handles GET /api/restaurants
func (h *RestaurantHandler) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.catalog.ListRestaurants(), h.logger)
}

// GetMenu handles GET /api/restaurants/{restaurantID}/menu
func (h *RestaurantHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	restaurantID := chi.URLParam(r, "restaurantID")
	if restaurantID == "" {
		WriteError(w, http.StatusBadRequest, "restaurant ID is required", h.logger)
		return
	}

	menu, err := h.catalog.Menu(restaurantID)
	if err != nil {
		if errors.Is(err, catalog.ErrRestaurantNotFound) {
			h.logger.Info("restaurant not found", "restaurant_id", restaurantID)
			WriteError(w, http.StatusNotFound, "Restaurant not found", h.logger)
			return
		}
		h.logger.Error("failed to get menu", "restaurant_id", restaurantID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, menu, h.logger)
}
