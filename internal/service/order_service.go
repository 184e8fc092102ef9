package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/automeal/automeal-server/internal/models"
	"github.com/automeal/automeal-server/internal/store"
	"github.com/google/uuid"
)

var (
	ErrEmptyOrder       = errors.New("order must contain at least one item")
	ErrInvalidQuantity  = errors.New("quantity must be positive")
	ErrDishNotFound     = errors.New("dish not found")
	ErrMixedRestaurants = errors.New("all items in an order must be from the same restaurant")
	ErrInvalidPromo     = errors.New("promo code is not valid")
)

// DefaultDeliveryETAMinutes applies when a restaurant row carries no
// usable delivery eta.
const DefaultDeliveryETAMinutes = 45

// Catalog is the read-only dish/restaurant lookup the engine depends on.
type Catalog interface {
	GetDish(dishID string) (models.Dish, error)
	GetRestaurant(restaurantID string) (models.Restaurant, error)
}

// PromoValidator checks promotional codes attached to orders.
type PromoValidator interface {
	IsValid(ctx context.Context, code string) bool
}

// OrderService is the order lifecycle engine. It validates order
// creation against the catalog, computes totals from snapshot prices,
// and drives status transitions through the store.
type OrderService struct {
	catalog        Catalog
	store          *store.OrderStore
	promoValidator PromoValidator
	now            func() time.Time
}

// NewOrderService creates a new order service. promoValidator may be
// nil, in which case promo codes are rejected as invalid.
func NewOrderService(catalog Catalog, orderStore *store.OrderStore, promoValidator PromoValidator) *OrderService {
	return &OrderService{
		catalog:        catalog,
		store:          orderStore,
		promoValidator: promoValidator,
		now:            time.Now,
	}
}

// CreateOrder validates the request, builds the order with snapshot
// prices, synthesizes its delivery record and stores both atomically.
// On any validation failure nothing is stored.
func (s *OrderService) CreateOrder(ctx context.Context, req models.OrderRequest) (models.Order, error) {
	if len(req.Items) == 0 {
		return models.Order{}, ErrEmptyOrder
	}

	var (
		items          []models.OrderItem
		restaurantID   string
		restaurantName string
		restaurantETA  int
		total          float64
	)

	for _, item := range req.Items {
		quantity := item.Quantity
		if quantity == 0 {
			quantity = 1
		}
		if quantity < 0 {
			return models.Order{}, ErrInvalidQuantity
		}
		if item.DishID == "" {
			return models.Order{}, fmt.Errorf("%w: empty dish id", ErrDishNotFound)
		}

		dish, err := s.catalog.GetDish(item.DishID)
		if err != nil {
			return models.Order{}, fmt.Errorf("%w: %s", ErrDishNotFound, item.DishID)
		}

		restaurant, err := s.catalog.GetRestaurant(dish.RestaurantID)
		if err != nil {
			return models.Order{}, fmt.Errorf("dish %s references unknown restaurant %s: %w", dish.DishID, dish.RestaurantID, err)
		}

		// All items must come from one restaurant.
		if restaurantID == "" {
			restaurantID = dish.RestaurantID
			restaurantName = restaurant.Name
			restaurantETA = restaurant.DeliveryETA
		} else if restaurantID != dish.RestaurantID {
			return models.Order{}, ErrMixedRestaurants
		}

		items = append(items, models.OrderItem{
			DishID:         dish.DishID,
			DishName:       dish.DishName,
			Quantity:       quantity,
			UnitPrice:      dish.Price,
			RestaurantID:   dish.RestaurantID,
			RestaurantName: restaurant.Name,
		})
		total += dish.Price * float64(quantity)
	}

	if req.PromoCode != "" {
		if s.promoValidator == nil || !s.promoValidator.IsValid(ctx, req.PromoCode) {
			return models.Order{}, ErrInvalidPromo
		}
	}

	now := s.now().UTC()
	eta := restaurantETA
	if eta <= 0 {
		eta = DefaultDeliveryETAMinutes
	}
	estimatedDelivery := now.Add(time.Duration(eta) * time.Minute)

	orderID := generateOrderID()
	order := models.Order{
		OrderID:               orderID,
		UserID:                req.UserID,
		Items:                 items,
		TotalPrice:            total,
		RestaurantID:          restaurantID,
		RestaurantName:        restaurantName,
		Status:                models.OrderPending,
		PromoCode:             req.PromoCode,
		CreatedAt:             now,
		EstimatedDeliveryTime: estimatedDelivery,
		DeliveryAddress:       req.DeliveryAddress,
	}

	delivery := models.DeliveryInfo{
		DeliveryID:       "del_" + orderID,
		OrderID:          orderID,
		Status:           models.DeliveryPending,
		EstimatedArrival: estimatedDelivery,
	}

	if err := s.store.Put(order, delivery); err != nil {
		return models.Order{}, fmt.Errorf("storing order: %w", err)
	}

	return order, nil
}

// GetOrder returns the order with the given id.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (models.Order, error) {
	return s.store.Get(orderID)
}

// GetDelivery returns the delivery record for the given order.
func (s *OrderService) GetDelivery(ctx context.Context, orderID string) (models.DeliveryInfo, error) {
	return s.store.GetDelivery(orderID)
}

// UpdateStatus advances the order status. The store enforces the
// transition table and derives the delivery status.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) (models.Order, error) {
	return s.store.UpdateStatus(orderID, status)
}

// generateOrderID generates a unique prefixed order ID using UUID
func generateOrderID() string {
	return "ord_" + uuid.New().String()
}
