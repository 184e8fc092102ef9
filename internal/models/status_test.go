package models

import "testing"

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{"pending to confirmed", OrderPending, OrderConfirmed, true},
		{"confirmed to preparing", OrderConfirmed, OrderPreparing, true},
		{"preparing to ready", OrderPreparing, OrderReady, true},
		{"ready to out_for_delivery", OrderReady, OrderOutForDelivery, true},
		{"out_for_delivery to delivered", OrderOutForDelivery, OrderDelivered, true},
		{"skip a stage", OrderPending, OrderPreparing, false},
		{"skip to delivered", OrderPending, OrderDelivered, false},
		{"backwards", OrderPreparing, OrderConfirmed, false},
		{"same state", OrderConfirmed, OrderConfirmed, false},
		{"cancel pending", OrderPending, OrderCancelled, true},
		{"cancel out_for_delivery", OrderOutForDelivery, OrderCancelled, true},
		{"cancel delivered", OrderDelivered, OrderCancelled, false},
		{"cancel cancelled", OrderCancelled, OrderCancelled, false},
		{"from delivered", OrderDelivered, OrderConfirmed, false},
		{"from cancelled", OrderCancelled, OrderConfirmed, false},
		{"to unknown status", OrderPending, OrderStatus("lost"), false},
		{"from unknown status", OrderStatus("lost"), OrderConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestDeliveryStatusFor(t *testing.T) {
	// The mapping is total: every order status has a delivery status.
	want := map[OrderStatus]DeliveryStatus{
		OrderPending:        DeliveryPending,
		OrderConfirmed:      DeliveryAssigned,
		OrderPreparing:      DeliveryAssigned,
		OrderReady:          DeliveryPickedUp,
		OrderOutForDelivery: DeliveryInTransit,
		OrderDelivered:      DeliveryDelivered,
		OrderCancelled:      DeliveryCancelled,
	}

	for order, delivery := range want {
		if got := DeliveryStatusFor(order); got != delivery {
			t.Errorf("DeliveryStatusFor(%s) = %s, want %s", order, got, delivery)
		}
	}
}

func TestOrderStatus_Terminal(t *testing.T) {
	for _, s := range []OrderStatus{OrderPending, OrderConfirmed, OrderPreparing, OrderReady, OrderOutForDelivery} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
	for _, s := range []OrderStatus{OrderDelivered, OrderCancelled} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
}
