package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/automeal/automeal-server/internal/catalog"
)

// HealthHandler provides the health check endpoint
type HealthHandler struct {
	catalog *catalog.Provider
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(cat *catalog.Provider, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		catalog: cat,
		logger:  logger,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status           string    `json:"status"`
	Timestamp        time.Time `json:"timestamp"`
	Service          string    `json:"service"`
	DishesCount      int       `json:"dishes_count"`
	RestaurantsCount int       `json:"restaurants_count"`
}

// ServeHTTP handles health check requests
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:           "healthy",
		Timestamp:        time.Now().UTC(),
		Service:          "AutoMeal Agent Server",
		DishesCount:      len(h.catalog.ListDishes()),
		RestaurantsCount: len(h.catalog.ListRestaurants()),
	}

	WriteJSON(w, http.StatusOK, response, h.logger)
}
