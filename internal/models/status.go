package models

// OrderStatus is the lifecycle state of an order.
//
// Transitions form a strict forward chain:
//
//	pending -> confirmed -> preparing -> ready -> out_for_delivery -> delivered
//
// cancelled is reachable from every non-terminal state. delivered and
// cancelled are terminal. Same-state transitions are invalid.
type OrderStatus string

const (
	OrderPending        OrderStatus = "pending"
	OrderConfirmed      OrderStatus = "confirmed"
	OrderPreparing      OrderStatus = "preparing"
	OrderReady          OrderStatus = "ready"
	OrderOutForDelivery OrderStatus = "out_for_delivery"
	OrderDelivered      OrderStatus = "delivered"
	OrderCancelled      OrderStatus = "cancelled"
)

// DeliveryStatus is the lifecycle state of a delivery. It is derived
// from the linked order's status, never set independently.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryAssigned  DeliveryStatus = "assigned"
	DeliveryPickedUp  DeliveryStatus = "picked_up"
	DeliveryInTransit DeliveryStatus = "in_transit"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryCancelled DeliveryStatus = "cancelled"
)

// orderStatusRank gives each pipeline stage its position in the chain.
// cancelled is not part of the chain and has no rank.
var orderStatusRank = map[OrderStatus]int{
	OrderPending:        0,
	OrderConfirmed:      1,
	OrderPreparing:      2,
	OrderReady:          3,
	OrderOutForDelivery: 4,
	OrderDelivered:      5,
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	if s == OrderCancelled {
		return true
	}
	_, ok := orderStatusRank[s]
	return ok
}

// Terminal reports whether no further transitions are allowed from s.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// CanTransitionTo reports whether moving from s to next is a legal
// transition: exactly one step forward along the chain, or to cancelled
// from any non-terminal state.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.Terminal() || !next.Valid() {
		return false
	}
	if next == OrderCancelled {
		return true
	}
	from, ok := orderStatusRank[s]
	if !ok {
		return false
	}
	to := orderStatusRank[next]
	return to == from+1
}

// DeliveryStatusFor maps an order status to the delivery status it
// implies. The mapping is total over valid order statuses:
//
//	pending          -> pending
//	confirmed        -> assigned
//	preparing        -> assigned
//	ready            -> picked_up
//	out_for_delivery -> in_transit
//	delivered        -> delivered
//	cancelled        -> cancelled
func DeliveryStatusFor(s OrderStatus) DeliveryStatus {
	switch s {
	case OrderConfirmed, OrderPreparing:
		return DeliveryAssigned
	case OrderReady:
		return DeliveryPickedUp
	case OrderOutForDelivery:
		return DeliveryInTransit
	case OrderDelivered:
		return DeliveryDelivered
	case OrderCancelled:
		return DeliveryCancelled
	default:
		return DeliveryPending
	}
}
