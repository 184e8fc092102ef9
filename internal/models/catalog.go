package models

// Dish represents a single dish offered by a restaurant.
// Catalog data is immutable after load.
type Dish struct {
	DishID          string   `json:"dish_id"`
	RestaurantID    string   `json:"restaurant_id"`
	DishName        string   `json:"dish_name"`
	Price           float64  `json:"price"`
	PrepTimeMin     int      `json:"prep_time_min"`
	Tags            []string `json:"tags"`
	PopularityScore float64  `json:"popularity_score"`
}

// Restaurant represents a restaurant as loaded from the catalog.
type Restaurant struct {
	RestaurantID string  `json:"restaurant_id"`
	Name         string  `json:"name"`
	CuisineType  string  `json:"cuisine_type"`
	City         string  `json:"city"`
	ZipCode      string  `json:"zip_code"`
	AvgRating    float64 `json:"avg_rating"`
	DeliveryETA  int     `json:"delivery_eta"`
	PriceMin     float64 `json:"price_min"`
	PriceMax     float64 `json:"price_max"`
}

// RestaurantSummary is the listing row returned by list_restaurants,
// including a dish count derived from the catalog.
type RestaurantSummary struct {
	RestaurantID   string  `json:"restaurant_id"`
	RestaurantName string  `json:"restaurant_name"`
	CuisineType    string  `json:"cuisine_type"`
	City           string  `json:"city"`
	AvgRating      float64 `json:"avg_rating"`
	DishCount      int     `json:"dish_count"`
}

// MenuItem is a dish projected into a restaurant menu.
type MenuItem struct {
	ItemID    string  `json:"item_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Available bool    `json:"available"`
}

// DishFilter holds the optional search criteria for dishes.
// All set fields are AND-combined.
type DishFilter struct {
	DishName           string   `json:"dish_name,omitempty"`
	RestaurantID       string   `json:"restaurant_id,omitempty"`
	Tags               []string `json:"tags,omitempty"`
	MaxPrice           *float64 `json:"max_price,omitempty"`
	MinPopularityScore *float64 `json:"min_popularity_score,omitempty"`
}
