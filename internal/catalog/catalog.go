package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/automeal/automeal-server/internal/models"
)

var (
	ErrDishNotFound       = errors.New("dish not found")
	ErrRestaurantNotFound = errors.New("restaurant not found")
)

// Provider is the read-only catalog of dishes and restaurants.
// It is populated once from CSV files before the server starts serving
// and is never mutated afterwards, so reads need no synchronization.
type Provider struct {
	dishes      []models.Dish
	dishByID    map[string]models.Dish
	restaurants map[string]models.Restaurant
	// insertion order of restaurants, for stable listings
	restaurantIDs []string
}

// Load reads dishes and restaurants from the given CSV files and
// returns a fully populated Provider.
func Load(dishesPath, restaurantsPath string) (*Provider, error) {
	p := &Provider{
		dishByID:    make(map[string]models.Dish),
		restaurants: make(map[string]models.Restaurant),
	}

	if err := p.loadRestaurants(restaurantsPath); err != nil {
		return nil, fmt.Errorf("loading restaurants: %w", err)
	}
	if err := p.loadDishes(dishesPath); err != nil {
		return nil, fmt.Errorf("loading dishes: %w", err)
	}

	return p, nil
}

func (p *Provider) loadRestaurants(path string) error {
	rows, err := readCSV(path)
	if err != nil {
		return err
	}

	for _, row := range rows {
		avgRating, err := parseFloatField(row, "avg_rating")
		if err != nil {
			return err
		}
		eta, err := parseIntField(row, "delivery_eta")
		if err != nil {
			return err
		}
		priceMin, err := parseFloatField(row, "price_min")
		if err != nil {
			return err
		}
		priceMax, err := parseFloatField(row, "price_max")
		if err != nil {
			return err
		}

		r := models.Restaurant{
			RestaurantID: row["restaurant_id"],
			Name:         row["name"],
			CuisineType:  row["cuisine_type"],
			City:         row["city"],
			ZipCode:      row["zip_code"],
			AvgRating:    avgRating,
			DeliveryETA:  eta,
			PriceMin:     priceMin,
			PriceMax:     priceMax,
		}
		if r.RestaurantID == "" {
			return fmt.Errorf("restaurant row missing restaurant_id")
		}
		if _, dup := p.restaurants[r.RestaurantID]; dup {
			return fmt.Errorf("duplicate restaurant id %q", r.RestaurantID)
		}
		p.restaurants[r.RestaurantID] = r
		p.restaurantIDs = append(p.restaurantIDs, r.RestaurantID)
	}

	return nil
}

func (p *Provider) loadDishes(path string) error {
	rows, err := readCSV(path)
	if err != nil {
		return err
	}

	for _, row := range rows {
		price, err := parseFloatField(row, "price")
		if err != nil {
			return err
		}
		prep, err := parseIntField(row, "prep_time_min")
		if err != nil {
			return err
		}
		popularity, err := parseFloatField(row, "popularity_score")
		if err != nil {
			return err
		}

		d := models.Dish{
			DishID:          row["dish_id"],
			RestaurantID:    row["restaurant_id"],
			DishName:        row["dish_name"],
			Price:           price,
			PrepTimeMin:     prep,
			Tags:            parseTags(row["tags"]),
			PopularityScore: popularity,
		}
		if d.DishID == "" {
			return fmt.Errorf("dish row missing dish_id")
		}
		if _, dup := p.dishByID[d.DishID]; dup {
			return fmt.Errorf("duplicate dish id %q", d.DishID)
		}
		if _, ok := p.restaurants[d.RestaurantID]; !ok {
			return fmt.Errorf("dish %q references unknown restaurant %q", d.DishID, d.RestaurantID)
		}
		p.dishes = append(p.dishes, d)
		p.dishByID[d.DishID] = d
	}

	return nil
}

// readCSV reads a CSV file with a header row into one map per record.
func readCSV(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}

	var rows []map[string]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			row[strings.TrimSpace(col)] = strings.TrimSpace(record[i])
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// parseTags splits a comma-separated tag field, tolerating stray quotes.
func parseTags(raw string) []string {
	raw = strings.Trim(raw, `"'`)
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, t := range parts {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func parseFloatField(row map[string]string, field string) (float64, error) {
	v, err := strconv.ParseFloat(row[field], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, row[field], err)
	}
	return v, nil
}

func parseIntField(row map[string]string, field string) (int, error) {
	v, err := strconv.Atoi(row[field])
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, row[field], err)
	}
	return v, nil
}

// ListDishes returns all dishes in load order.
func (p *Provider) ListDishes() []models.Dish {
	out := make([]models.Dish, len(p.dishes))
	copy(out, p.dishes)
	return out
}

// GetDish returns the dish with the given id.
func (p *Provider) GetDish(dishID string) (models.Dish, error) {
	d, ok := p.dishByID[dishID]
	if !ok {
		return models.Dish{}, fmt.Errorf("%w: %s", ErrDishNotFound, dishID)
	}
	return d, nil
}

// Search returns all dishes matching the filter. Set fields are
// AND-combined; an empty filter returns every dish.
func (p *Provider) Search(filter models.DishFilter) []models.Dish {
	name := strings.ToLower(filter.DishName)

	results := make([]models.Dish, 0)
	for _, d := range p.dishes {
		if name != "" && !strings.Contains(strings.ToLower(d.DishName), name) {
			continue
		}
		if filter.RestaurantID != "" && d.RestaurantID != filter.RestaurantID {
			continue
		}
		if len(filter.Tags) > 0 && !hasAnyTag(d.Tags, filter.Tags) {
			continue
		}
		if filter.MaxPrice != nil && d.Price > *filter.MaxPrice {
			continue
		}
		if filter.MinPopularityScore != nil && d.PopularityScore < *filter.MinPopularityScore {
			continue
		}
		results = append(results, d)
	}

	return results
}

// hasAnyTag reports whether the dish tags intersect the wanted tags,
// case-insensitively.
func hasAnyTag(dishTags, wanted []string) bool {
	for _, w := range wanted {
		for _, t := range dishTags {
			if strings.EqualFold(t, w) {
				return true
			}
		}
	}
	return false
}

// ListRestaurants returns summary rows for all restaurants, with dish
// counts derived from the dish table.
func (p *Provider) ListRestaurants() []models.RestaurantSummary {
	counts := make(map[string]int)
	for _, d := range p.dishes {
		counts[d.RestaurantID]++
	}

	out := make([]models.RestaurantSummary, 0, len(p.restaurantIDs))
	for _, id := range p.restaurantIDs {
		r := p.restaurants[id]
		out = append(out, models.RestaurantSummary{
			RestaurantID:   r.RestaurantID,
			RestaurantName: r.Name,
			CuisineType:    r.CuisineType,
			City:           r.City,
			AvgRating:      r.AvgRating,
			DishCount:      counts[id],
		})
	}

	return out
}

// GetRestaurant returns the restaurant with the given id.
func (p *Provider) GetRestaurant(restaurantID string) (models.Restaurant, error) {
	r, ok := p.restaurants[restaurantID]
	if !ok {
		return models.Restaurant{}, fmt.Errorf("%w: %s", ErrRestaurantNotFound, restaurantID)
	}
	return r, nil
}

// Menu returns the restaurant's dishes projected as menu items.
func (p *Provider) Menu(restaurantID string) ([]models.MenuItem, error) {
	if _, ok := p.restaurants[restaurantID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrRestaurantNotFound, restaurantID)
	}

	items := make([]models.MenuItem, 0)
	for _, d := range p.dishes {
		if d.RestaurantID != restaurantID {
			continue
		}
		items = append(items, models.MenuItem{
			ItemID:    d.DishID,
			Name:      d.DishName,
			Price:     d.Price,
			Available: true,
		})
	}

	return items, nil
}
