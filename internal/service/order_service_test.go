package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/automeal/automeal-server/internal/models"
	"github.com/automeal/automeal-server/internal/store"
)

// fakeCatalog is a minimal in-memory Catalog for engine tests.
type fakeCatalog struct {
	dishes      map[string]models.Dish
	restaurants map[string]models.Restaurant
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		dishes: map[string]models.Dish{
			"d1": {DishID: "d1", RestaurantID: "r1", DishName: "Chicken Taco", Price: 10.00, PrepTimeMin: 10},
			"d2": {DishID: "d2", RestaurantID: "r1", DishName: "Veggie Burrito", Price: 8.50, PrepTimeMin: 12},
			"d3": {DishID: "d3", RestaurantID: "r2", DishName: "Pad Thai", Price: 12.00, PrepTimeMin: 15},
		},
		restaurants: map[string]models.Restaurant{
			"r1": {RestaurantID: "r1", Name: "Taco Verde", DeliveryETA: 30},
			"r2": {RestaurantID: "r2", Name: "Noodle House"}, // no eta: default applies
		},
	}
}

func (c *fakeCatalog) GetDish(id string) (models.Dish, error) {
	d, ok := c.dishes[id]
	if !ok {
		return models.Dish{}, errors.New("dish not found")
	}
	return d, nil
}

func (c *fakeCatalog) GetRestaurant(id string) (models.Restaurant, error) {
	r, ok := c.restaurants[id]
	if !ok {
		return models.Restaurant{}, errors.New("restaurant not found")
	}
	return r, nil
}

// stubPromo accepts a fixed set of codes.
type stubPromo struct {
	valid map[string]bool
}

func (p *stubPromo) IsValid(ctx context.Context, code string) bool {
	return p.valid[code]
}

func newTestService(t *testing.T) (*OrderService, *store.OrderStore) {
	t.Helper()
	st := store.New()
	svc := NewOrderService(newFakeCatalog(), st, &stubPromo{valid: map[string]bool{"VALIDABC": true}})
	return svc, st
}

func TestCreateOrder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, models.OrderRequest{
		Items:  []models.OrderItemRequest{{DishID: "d1", Quantity: 2}},
		UserID: "u1",
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if order.TotalPrice != 20.00 {
		t.Errorf("expected total 20.00, got %.2f", order.TotalPrice)
	}
	if order.Status != models.OrderPending {
		t.Errorf("expected status pending, got %s", order.Status)
	}
	if order.RestaurantID != "r1" || order.RestaurantName != "Taco Verde" {
		t.Errorf("unexpected restaurant fields: %s %s", order.RestaurantID, order.RestaurantName)
	}
	if !strings.HasPrefix(order.OrderID, "ord_") {
		t.Errorf("expected ord_ prefix, got %s", order.OrderID)
	}
	if order.Items[0].UnitPrice != 10.00 || order.Items[0].Quantity != 2 {
		t.Errorf("unexpected item snapshot: %+v", order.Items[0])
	}

	delivery, err := svc.GetDelivery(ctx, order.OrderID)
	if err != nil {
		t.Fatalf("GetDelivery: %v", err)
	}
	if delivery.OrderID != order.OrderID {
		t.Errorf("delivery references %s, want %s", delivery.OrderID, order.OrderID)
	}
	if delivery.Status != models.DeliveryPending {
		t.Errorf("expected delivery pending, got %s", delivery.Status)
	}
	if !delivery.EstimatedArrival.Equal(order.EstimatedDeliveryTime) {
		t.Error("delivery arrival does not mirror order estimate")
	}
}

func TestCreateOrder_TotalAcrossItems(t *testing.T) {
	svc, _ := newTestService(t)

	order, err := svc.CreateOrder(context.Background(), models.OrderRequest{
		Items: []models.OrderItemRequest{
			{DishID: "d1", Quantity: 2}, // 20.00
			{DishID: "d2", Quantity: 3}, // 25.50
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.TotalPrice != 45.50 {
		t.Errorf("expected total 45.50, got %.2f", order.TotalPrice)
	}
}

func TestCreateOrder_QuantityDefaultsToOne(t *testing.T) {
	svc, _ := newTestService(t)

	order, err := svc.CreateOrder(context.Background(), models.OrderRequest{
		Items: []models.OrderItemRequest{{DishID: "d2"}},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.Items[0].Quantity != 1 || order.TotalPrice != 8.50 {
		t.Errorf("expected quantity 1 and total 8.50, got %d and %.2f", order.Items[0].Quantity, order.TotalPrice)
	}
}

func TestCreateOrder_ValidationFailures(t *testing.T) {
	svc, st := newTestService(t)

	tests := []struct {
		name    string
		req     models.OrderRequest
		wantErr error
	}{
		{
			name:    "empty order",
			req:     models.OrderRequest{},
			wantErr: ErrEmptyOrder,
		},
		{
			name: "negative quantity",
			req: models.OrderRequest{
				Items: []models.OrderItemRequest{{DishID: "d1", Quantity: -1}},
			},
			wantErr: ErrInvalidQuantity,
		},
		{
			name: "unknown dish",
			req: models.OrderRequest{
				Items: []models.OrderItemRequest{{DishID: "ghost"}},
			},
			wantErr: ErrDishNotFound,
		},
		{
			name: "missing dish id",
			req: models.OrderRequest{
				Items: []models.OrderItemRequest{{Quantity: 1}},
			},
			wantErr: ErrDishNotFound,
		},
		{
			name: "mixed restaurants",
			req: models.OrderRequest{
				Items: []models.OrderItemRequest{{DishID: "d1"}, {DishID: "d3"}},
			},
			wantErr: ErrMixedRestaurants,
		},
		{
			name: "invalid promo code",
			req: models.OrderRequest{
				Items:     []models.OrderItemRequest{{DishID: "d1"}},
				PromoCode: "BOGUS999",
			},
			wantErr: ErrInvalidPromo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateOrder(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	// No partial state from any failed creation.
	if st.Len() != 0 {
		t.Errorf("failed creations stored %d orders", st.Len())
	}
}

func TestCreateOrder_ValidPromo(t *testing.T) {
	svc, _ := newTestService(t)

	order, err := svc.CreateOrder(context.Background(), models.OrderRequest{
		Items:     []models.OrderItemRequest{{DishID: "d1"}},
		PromoCode: "VALIDABC",
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.PromoCode != "VALIDABC" {
		t.Errorf("promo code not recorded: %+v", order)
	}
}

func TestCreateOrder_NilPromoValidatorRejectsCodes(t *testing.T) {
	st := store.New()
	svc := NewOrderService(newFakeCatalog(), st, nil)

	_, err := svc.CreateOrder(context.Background(), models.OrderRequest{
		Items:     []models.OrderItemRequest{{DishID: "d1"}},
		PromoCode: "VALIDABC",
	})
	if !errors.Is(err, ErrInvalidPromo) {
		t.Errorf("expected ErrInvalidPromo, got %v", err)
	}
}

func TestCreateOrder_DeliveryETA(t *testing.T) {
	svc, _ := newTestService(t)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	// r1 has a 30 minute eta
	order, err := svc.CreateOrder(context.Background(), models.OrderRequest{
		Items: []models.OrderItemRequest{{DishID: "d1"}},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if want := fixed.Add(30 * time.Minute); !order.EstimatedDeliveryTime.Equal(want) {
		t.Errorf("expected eta %v, got %v", want, order.EstimatedDeliveryTime)
	}

	// r2 has no eta: the default applies
	order, err = svc.CreateOrder(context.Background(), models.OrderRequest{
		Items: []models.OrderItemRequest{{DishID: "d3"}},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if want := fixed.Add(DefaultDeliveryETAMinutes * time.Minute); !order.EstimatedDeliveryTime.Equal(want) {
		t.Errorf("expected default eta %v, got %v", want, order.EstimatedDeliveryTime)
	}
}

func TestUpdateStatus_ThroughService(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, models.OrderRequest{
		Items: []models.OrderItemRequest{{DishID: "d1"}},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	updated, err := svc.UpdateStatus(ctx, order.OrderID, models.OrderConfirmed)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != models.OrderConfirmed {
		t.Errorf("expected confirmed, got %s", updated.Status)
	}

	// pending -> delivered is not reachable in one step
	if _, err := svc.UpdateStatus(ctx, order.OrderID, models.OrderPending); !errors.Is(err, store.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestCreateOrder_Concurrent(t *testing.T) {
	svc, st := newTestService(t)

	const n = 40
	var wg sync.WaitGroup
	ids := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			order, err := svc.CreateOrder(context.Background(), models.OrderRequest{
				Items:  []models.OrderItemRequest{{DishID: "d1", Quantity: 1}},
				UserID: fmt.Sprintf("u%d", i),
			})
			if err != nil {
				t.Errorf("concurrent CreateOrder: %v", err)
				return
			}
			ids <- order.OrderID
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		if seen[id] {
			t.Errorf("duplicate order id %s", id)
		}
		seen[id] = true
	}
	if st.Len() != n {
		t.Errorf("expected %d stored orders, got %d", n, st.Len())
	}
}
