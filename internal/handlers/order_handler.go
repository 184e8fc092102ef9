package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/automeal/automeal-server/internal/models"
	"github.com/automeal/automeal-server/internal/service"
	"github.com/automeal/automeal-server/internal/store"
	"github.com/go-chi/chi/v5"
)

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	orderService *service.OrderService
	log          *slog.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *service.OrderService, log *slog.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		log:          log,
	}
}

// CreateOrder handles POST /api/orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req models.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error("failed to decode order request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	order, err := h.orderService.CreateOrder(r.Context(), req)
	if err != nil {
		h.log.Error("failed to create order", "error", err)

		switch {
		case errors.Is(err, service.ErrEmptyOrder):
			WriteError(w, http.StatusBadRequest, "Order must contain at least one item", h.log)
		case errors.Is(err, service.ErrInvalidQuantity):
			WriteError(w, http.StatusBadRequest, "Quantity must be positive", h.log)
		case errors.Is(err, service.ErrDishNotFound):
			WriteError(w, http.StatusBadRequest, "Dish not found", h.log)
		case errors.Is(err, service.ErrMixedRestaurants):
			WriteError(w, http.StatusBadRequest, "All items in an order must be from the same restaurant", h.log)
		case errors.Is(err, service.ErrInvalidPromo):
			WriteError(w, http.StatusBadRequest, "Promo code is not valid", h.log)
		default:
			WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		}
		return
	}

	delivery, err := h.orderService.GetDelivery(r.Context(), order.OrderID)
	if err != nil {
		h.log.Error("created order has no delivery record", "order_id", order.OrderID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"order":    order,
		"delivery": delivery,
	}, h.log)
	h.log.Info("order created successfully",
		"order_id", order.OrderID,
		"restaurant_id", order.RestaurantID,
		"total_price", order.TotalPrice,
		"items_count", len(order.Items),
	)
}

// GetOrder handles GET /api/orders/{orderID}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	order, err := h.orderService.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, store.ErrOrderNotFound) {
			WriteError(w, http.StatusNotFound, "Order not found", h.log)
			return
		}
		h.log.Error("failed to get order", "order_id", orderID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, order, h.log)
}

// GetDelivery handles GET /api/orders/{orderID}/delivery
func (h *OrderHandler) GetDelivery(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	delivery, err := h.orderService.GetDelivery(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, store.ErrDeliveryNotFound) {
			WriteError(w, http.StatusNotFound, "Delivery info not found", h.log)
			return
		}
		h.log.Error("failed to get delivery", "order_id", orderID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, delivery, h.log)
}

// UpdateStatus handles PATCH /api/orders/{orderID}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	var req struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}
	if !req.Status.Valid() {
		WriteError(w, http.StatusBadRequest, "Unknown status", h.log)
		return
	}

	order, err := h.orderService.UpdateStatus(r.Context(), orderID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrOrderNotFound):
			WriteError(w, http.StatusNotFound, "Order not found", h.log)
		case errors.Is(err, store.ErrInvalidTransition):
			WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		default:
			h.log.Error("failed to update status", "order_id", orderID, "error", err)
			WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		}
		return
	}

	WriteJSON(w, http.StatusOK, order, h.log)
	h.log.Info("order status updated", "order_id", orderID, "status", order.Status)
}
