package handlers

import (
	"log/slog"
	"net/http"

	"github.com/automeal/automeal-server/internal/promo"
	"github.com/go-chi/chi/v5"
)

// PromoHandler handles promo-code HTTP requests
type PromoHandler struct {
	validator *promo.Validator
	logger    *slog.Logger
}

// NewPromoHandler creates a new promo handler
func NewPromoHandler(validator *promo.Validator, logger *slog.Logger) *PromoHandler {
	return &PromoHandler{
		validator: validator,
		logger:    logger,
	}
}

// ValidateCode handles GET /api/promo/{code}
func (h *PromoHandler) ValidateCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		WriteError(w, http.StatusBadRequest, "promo code is required", h.logger)
		return
	}

	valid := h.validator.IsValid(r.Context(), code)
	WriteJSON(w, http.StatusOK, map[string]any{
		"code":  code,
		"valid": valid,
	}, h.logger)
}

// GetStats handles GET /api/promo/stats
func (h *PromoHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.validator.Stats(), h.logger)
}
