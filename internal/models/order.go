package models

import "time"

// OrderItem is a line item captured at order-creation time.
// Price and restaurant fields are snapshots; later catalog changes
// never alter an existing order.
type OrderItem struct {
	DishID         string  `json:"dish_id"`
	DishName       string  `json:"dish_name"`
	Quantity       int     `json:"quantity"`
	UnitPrice      float64 `json:"unit_price"`
	RestaurantID   string  `json:"restaurant_id"`
	RestaurantName string  `json:"restaurant_name"`
}

// Order represents a placed order. All items belong to one restaurant
// and TotalPrice is always the sum over items of unit price times quantity.
type Order struct {
	OrderID               string      `json:"order_id"`
	UserID                string      `json:"user_id,omitempty"`
	Items                 []OrderItem `json:"items"`
	TotalPrice            float64     `json:"total_price"`
	RestaurantID          string      `json:"restaurant_id"`
	RestaurantName        string      `json:"restaurant_name"`
	Status                OrderStatus `json:"status"`
	PromoCode             string      `json:"promo_code,omitempty"`
	CreatedAt             time.Time   `json:"created_at"`
	EstimatedDeliveryTime time.Time   `json:"estimated_delivery_time"`
	DeliveryAddress       string      `json:"delivery_address,omitempty"`
}

// DeliveryInfo tracks the delivery of a single order. Exactly one
// DeliveryInfo exists per order, created together with it.
type DeliveryInfo struct {
	DeliveryID       string         `json:"delivery_id"`
	OrderID          string         `json:"order_id"`
	Status           DeliveryStatus `json:"status"`
	DriverName       string         `json:"driver_name,omitempty"`
	DriverPhone      string         `json:"driver_phone,omitempty"`
	EstimatedArrival time.Time      `json:"estimated_arrival"`
	CurrentLocation  string         `json:"current_location,omitempty"`
	TrackingURL      string         `json:"tracking_url,omitempty"`
}

// OrderItemRequest is one requested line in an incoming order.
// Quantity defaults to 1 when omitted.
type OrderItemRequest struct {
	DishID   string `json:"dish_id"`
	Quantity int    `json:"quantity,omitempty"`
}

// OrderRequest represents an incoming order request.
type OrderRequest struct {
	Items           []OrderItemRequest `json:"items"`
	UserID          string             `json:"user_id,omitempty"`
	DeliveryAddress string             `json:"delivery_address,omitempty"`
	PromoCode       string             `json:"promo_code,omitempty"`
}

// StatusUpdateRequest carries a requested order status change.
type StatusUpdateRequest struct {
	OrderID string      `json:"order_id"`
	Status  OrderStatus `json:"status"`
}
