package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/automeal/automeal-server/internal/catalog"
	"github.com/automeal/automeal-server/internal/models"
	"github.com/automeal/automeal-server/internal/service"
)

const (
	ServerName        = "AutoMeal Agent Server"
	ServerVersion     = "1.0.0"
	ServerDescription = "Food ordering server for agent integrations with simulated API calls"
	ProtocolVersion   = "2024-11-05"
)

// Handler executes one operation against raw JSON arguments.
type Handler func(ctx context.Context, params json.RawMessage) (any, error)

// Operation is one named entry in the dispatch registry. The schema
// drives both manifest generation and the tool listing.
type Operation struct {
	Name        string
	Description string
	InputSchema map[string]any
	Handler     Handler
}

// Registry is the fixed set of operations the dispatcher can resolve.
// It is populated once at startup and read-only afterwards.
type Registry struct {
	ops map[string]Operation
}

// NewRegistry builds the operation registry over the catalog and the
// order lifecycle engine.
func NewRegistry(cat *catalog.Provider, orders *service.OrderService) *Registry {
	r := &Registry{ops: make(map[string]Operation)}

	r.register(Operation{
		Name:        "list_dishes",
		Description: "List all available dishes from all restaurants",
		InputSchema: objectSchema(nil),
		Handler: func(ctx context.Context, params json.RawMessage) (any, error) {
			return cat.ListDishes(), nil
		},
	})

	r.register(Operation{
		Name:        "get_dish",
		Description: "Get detailed information about a specific dish by ID",
		InputSchema: objectSchema(map[string]any{
			"dish_id": map[string]any{"type": "string", "description": "The ID of the dish to retrieve"},
		}, "dish_id"),
		Handler: func(ctx context.Context, params json.RawMessage) (any, error) {
			var args struct {
				DishID string `json:"dish_id"`
			}
			if err := decodeParams(params, &args); err != nil {
				return nil, err
			}
			if args.DishID == "" {
				return nil, newError(CodeInvalidParams, "dish_id is required")
			}
			return cat.GetDish(args.DishID)
		},
	})

	r.register(Operation{
		Name:        "search_dishes",
		Description: "Search for dishes by name, restaurant, tags, price, or popularity score",
		InputSchema: objectSchema(map[string]any{
			"dish_name":     map[string]any{"type": "string", "description": "Substring match on dish name"},
			"restaurant_id": map[string]any{"type": "string", "description": "Filter by restaurant ID"},
			"tags": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Filter by tags (e.g., vegan, spicy, vegetarian)",
			},
			"max_price":            map[string]any{"type": "number", "description": "Maximum price in dollars (e.g., 15.99)"},
			"min_popularity_score": map[string]any{"type": "number", "description": "Minimum popularity score (0-1)"},
		}),
		Handler: func(ctx context.Context, params json.RawMessage) (any, error) {
			var filter models.DishFilter
			if err := decodeParams(params, &filter); err != nil {
				return nil, err
			}
			return cat.Search(filter), nil
		},
	})

	r.register(Operation{
		Name:        "list_restaurants",
		Description: "List all available restaurants",
		InputSchema: objectSchema(nil),
		Handler: func(ctx context.Context, params json.RawMessage) (any, error) {
			return cat.ListRestaurants(), nil
		},
	})

	r.register(Operation{
		Name:        "get_restaurant",
		Description: "Get detailed information about a specific restaurant by ID",
		InputSchema: objectSchema(map[string]any{
			"restaurant_id": map[string]any{"type": "string", "description": "The restaurant ID"},
		}, "restaurant_id"),
		Handler: func(ctx context.Context, params json.RawMessage) (any, error) {
			var args struct {
				RestaurantID string `json:"restaurant_id"`
			}
			if err := decodeParams(params, &args); err != nil {
				return nil, err
			}
			if args.RestaurantID == "" {
				return nil, newError(CodeInvalidParams, "restaurant_id is required")
			}
			return cat.GetRestaurant(args.RestaurantID)
		},
	})

	r.register(Operation{
		Name:        "get_menu",
		Description: "Get the menu for a specific restaurant",
		InputSchema: objectSchema(map[string]any{
			"restaurant_id": map[string]any{"type": "string", "description": "The restaurant ID"},
		}, "restaurant_id"),
		Handler: func(ctx context.Context, params json.RawMessage) (any, error) {
			var args struct {
				RestaurantID string `json:"restaurant_id"`
			}
			if err := decodeParams(params, &args); err != nil {
				return nil, err
			}
			if args.RestaurantID == "" {
				return nil, newError(CodeInvalidParams, "restaurant_id is required")
			}
			return cat.Menu(args.RestaurantID)
		},
	})

	r.register(Operation{
		Name:        "create_order",
		Description: "Place a food order with specified dishes and quantities",
		InputSchema: objectSchema(map[string]any{
			"items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"dish_id":  map[string]any{"type": "string"},
						"quantity": map[string]any{"type": "integer", "default": 1},
					},
					"required": []string{"dish_id"},
				},
				"description": "List of items to order",
			},
			"user_id":          map[string]any{"type": "string", "description": "Optional user ID"},
			"delivery_address": map[string]any{"type": "string", "description": "Delivery address"},
			"promo_code":       map[string]any{"type": "string", "description": "Optional promotional code"},
		}, "items"),
		Handler: func(ctx context.Context, params json.RawMessage) (any, error) {
			var req models.OrderRequest
			if err := decodeParams(params, &req); err != nil {
				return nil, err
			}
			order, err := orders.CreateOrder(ctx, req)
			if err != nil {
				return nil, err
			}
			delivery, err := orders.GetDelivery(ctx, order.OrderID)
			if err != nil {
				return nil, err
			}
			return map[string]any{"order": order, "delivery": delivery}, nil
		},
	})

	r.register(Operation{
		Name:        "get_order",
		Description: "Get the current status of an order",
		InputSchema: objectSchema(map[string]any{
			"order_id": map[string]any{"type": "string", "description": "The order ID"},
		}, "order_id"),
		Handler: func(ctx context.Context, params json.RawMessage) (any, error) {
			var args struct {
				OrderID string `json:"order_id"`
			}
			if err := decodeParams(params, &args); err != nil {
				return nil, err
			}
			if args.OrderID == "" {
				return nil, newError(CodeInvalidParams, "order_id is required")
			}
			return orders.GetOrder(ctx, args.OrderID)
		},
	})

	r.register(Operation{
		Name:        "get_delivery",
		Description: "Get delivery tracking information for an order",
		InputSchema: objectSchema(map[string]any{
			"order_id": map[string]any{"type": "string", "description": "The order ID"},
		}, "order_id"),
		Handler: func(ctx context.Context, params json.RawMessage) (any, error) {
			var args struct {
				OrderID string `json:"order_id"`
			}
			if err := decodeParams(params, &args); err != nil {
				return nil, err
			}
			if args.OrderID == "" {
				return nil, newError(CodeInvalidParams, "order_id is required")
			}
			return orders.GetDelivery(ctx, args.OrderID)
		},
	})

	r.register(Operation{
		Name:        "update_order_status",
		Description: "Advance an order to the next status in its lifecycle",
		InputSchema: objectSchema(map[string]any{
			"order_id": map[string]any{"type": "string", "description": "The order ID"},
			"status": map[string]any{
				"type": "string",
				"enum": []string{"pending", "confirmed", "preparing", "ready", "out_for_delivery", "delivered", "cancelled"},
			},
		}, "order_id", "status"),
		Handler: func(ctx context.Context, params json.RawMessage) (any, error) {
			var args models.StatusUpdateRequest
			if err := decodeParams(params, &args); err != nil {
				return nil, err
			}
			if args.OrderID == "" {
				return nil, newError(CodeInvalidParams, "order_id is required")
			}
			if !args.Status.Valid() {
				return nil, newError(CodeInvalidParams, fmt.Sprintf("unknown status %q", args.Status))
			}
			return orders.UpdateStatus(ctx, args.OrderID, args.Status)
		},
	})

	r.register(Operation{
		Name:        "manifest",
		Description: "Describe the server's capabilities and registered operations",
		InputSchema: objectSchema(nil),
		Handler: func(ctx context.Context, params json.RawMessage) (any, error) {
			return r.Manifest(), nil
		},
	})

	return r
}

func (r *Registry) register(op Operation) {
	if _, dup := r.ops[op.Name]; dup {
		panic(fmt.Sprintf("duplicate operation %q", op.Name))
	}
	r.ops[op.Name] = op
}

// Resolve returns the operation registered under name.
func (r *Registry) Resolve(name string) (Operation, bool) {
	op, ok := r.ops[name]
	return op, ok
}

// Names returns all registered operation names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tools lists every registered operation as a callable tool, derived
// from the registry itself.
func (r *Registry) Tools() []models.Tool {
	tools := make([]models.Tool, 0, len(r.ops))
	for _, name := range r.Names() {
		op := r.ops[name]
		tools = append(tools, models.Tool{
			Name:        op.Name,
			Description: op.Description,
			InputSchema: op.InputSchema,
		})
	}
	return tools
}

// Resources lists the readable resource URIs.
func (r *Registry) Resources() []models.Resource {
	return []models.Resource{
		{
			URI:         "dishes://all",
			Name:        "All Dishes",
			Description: "Complete list of all available dishes from all restaurants",
			MimeType:    "application/json",
		},
		{
			URI:         "restaurants://all",
			Name:        "All Restaurants",
			Description: "List of all available restaurants",
			MimeType:    "application/json",
		},
		{
			URI:         "restaurants://{restaurant_id}/menu",
			Name:        "Restaurant Menu",
			Description: "Menu for a specific restaurant",
			MimeType:    "application/json",
		},
		{
			URI:         "dishes://by-tag/{tag}",
			Name:        "Dishes by Tag",
			Description: "Dishes filtered by tag (vegan, spicy, vegetarian, etc.)",
			MimeType:    "application/json",
		},
	}
}

// Manifest builds the server manifest by introspecting the registry.
func (r *Registry) Manifest() models.Manifest {
	return models.Manifest{
		Name:            ServerName,
		Version:         ServerVersion,
		Description:     ServerDescription,
		ProtocolVersion: ProtocolVersion,
		Capabilities: map[string]any{
			"tools": map[string]any{
				"listChanged": false,
			},
			"resources": map[string]any{
				"subscribe":   false,
				"listChanged": false,
			},
		},
		ServerInfo: map[string]any{
			"vendor":     "AutoMeal Agent",
			"product":    "Food Ordering Server",
			"operations": r.Names(),
			"envelopes":  []string{"jsonrpc-2.0", "legacy-action"},
		},
	}
}

// objectSchema builds a JSON-schema object description with optional
// required fields.
func objectSchema(properties map[string]any, required ...string) map[string]any {
	if properties == nil {
		properties = map[string]any{}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// decodeParams unmarshals raw params into dst, treating absent params
// as an empty object.
func decodeParams(params json.RawMessage, dst any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, dst); err != nil {
		return newError(CodeInvalidParams, fmt.Sprintf("invalid params: %v", err))
	}
	return nil
}
