// Package store owns the mutable order and delivery state.
//
// All mutation runs under one coarse mutex. At POC scale a store-wide
// critical section keeps the single-writer invariant trivial to reason
// about; this is the chosen discipline, not an accident.
package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/automeal/automeal-server/internal/models"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrDeliveryNotFound  = errors.New("delivery info not found")
	ErrDuplicateOrder    = errors.New("order id already exists")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// OrderStore holds all orders and their delivery records in memory.
type OrderStore struct {
	mu         sync.Mutex
	orders     map[string]*models.Order
	deliveries map[string]*models.DeliveryInfo // keyed by order id
}

// New creates an empty OrderStore.
func New() *OrderStore {
	return &OrderStore{
		orders:     make(map[string]*models.Order),
		deliveries: make(map[string]*models.DeliveryInfo),
	}
}

// Put inserts an order together with its delivery record. The pair is
// stored atomically; an existing order id fails the whole call.
func (s *OrderStore) Put(order models.Order, delivery models.DeliveryInfo) error {
	if order.OrderID == "" {
		return fmt.Errorf("order id must not be empty")
	}
	if delivery.OrderID != order.OrderID {
		return fmt.Errorf("delivery %s does not reference order %s", delivery.DeliveryID, order.OrderID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[order.OrderID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateOrder, order.OrderID)
	}

	o := order
	o.Items = append([]models.OrderItem(nil), order.Items...)
	d := delivery

	s.orders[order.OrderID] = &o
	s.deliveries[order.OrderID] = &d
	return nil
}

// Get returns a copy of the order with the given id.
func (s *OrderStore) Get(orderID string) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return models.Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	return copyOrder(o), nil
}

// GetDelivery returns a copy of the delivery record for the given order.
func (s *OrderStore) GetDelivery(orderID string) (models.DeliveryInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.deliveries[orderID]
	if !ok {
		return models.DeliveryInfo{}, fmt.Errorf("%w: order %s", ErrDeliveryNotFound, orderID)
	}
	return *d, nil
}

// UpdateStatus advances the order to newStatus if the transition is
// legal, rewrites the linked delivery status from the fixed mapping,
// and returns the updated order. Illegal transitions leave both records
// untouched.
func (s *OrderStore) UpdateStatus(orderID string, newStatus models.OrderStatus) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return models.Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}

	if !o.Status.CanTransitionTo(newStatus) {
		return models.Order{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, newStatus)
	}

	o.Status = newStatus
	if d, ok := s.deliveries[orderID]; ok {
		d.Status = models.DeliveryStatusFor(newStatus)
	}

	return copyOrder(o), nil
}

// Len returns the number of stored orders.
func (s *OrderStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func copyOrder(o *models.Order) models.Order {
	out := *o
	out.Items = append([]models.OrderItem(nil), o.Items...)
	return out
}
