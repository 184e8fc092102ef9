package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/automeal/automeal-server/internal/models"
)

const testRestaurants = `restaurant_id,name,cuisine_type,city,zip_code,avg_rating,delivery_eta,price_min,price_max
r1,Taco Verde,Mexican,Austin,73301,4.5,30,5.00,18.00
r2,Noodle House,Thai,Austin,73302,4.2,40,8.00,22.00
`

const testDishes = `dish_id,restaurant_id,dish_name,price,prep_time_min,tags,popularity_score
d1,r1,Chicken Taco,10.00,10,"mexican,spicy",0.9
d2,r1,Veggie Burrito,8.50,12,"mexican,vegan,vegetarian",0.7
d3,r2,Pad Thai,12.00,15,"thai,spicy",0.8
`

// writeTestCatalog writes the fixture CSVs into a temp dir and loads them.
func writeTestCatalog(t *testing.T) *Provider {
	t.Helper()

	dir := t.TempDir()
	dishesPath := filepath.Join(dir, "dishes.csv")
	restaurantsPath := filepath.Join(dir, "restaurants.csv")

	if err := os.WriteFile(dishesPath, []byte(testDishes), 0644); err != nil {
		t.Fatalf("failed to write dishes fixture: %v", err)
	}
	if err := os.WriteFile(restaurantsPath, []byte(testRestaurants), 0644); err != nil {
		t.Fatalf("failed to write restaurants fixture: %v", err)
	}

	p, err := Load(dishesPath, restaurantsPath)
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}
	return p
}

func TestLoad(t *testing.T) {
	p := writeTestCatalog(t)

	if got := len(p.ListDishes()); got != 3 {
		t.Errorf("expected 3 dishes, got %d", got)
	}
	if got := len(p.ListRestaurants()); got != 2 {
		t.Errorf("expected 2 restaurants, got %d", got)
	}

	d, err := p.GetDish("d2")
	if err != nil {
		t.Fatalf("GetDish(d2): %v", err)
	}
	if d.DishName != "Veggie Burrito" || d.Price != 8.50 {
		t.Errorf("unexpected dish: %+v", d)
	}
	if len(d.Tags) != 3 {
		t.Errorf("expected 3 tags, got %v", d.Tags)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("no-such-dishes.csv", "no-such-restaurants.csv"); err == nil {
		t.Fatal("expected error for missing files")
	}
}

func TestLoad_DanglingRestaurantReference(t *testing.T) {
	dir := t.TempDir()
	dishesPath := filepath.Join(dir, "dishes.csv")
	restaurantsPath := filepath.Join(dir, "restaurants.csv")

	orphan := "dish_id,restaurant_id,dish_name,price,prep_time_min,tags,popularity_score\nd9,r9,Ghost Dish,1.00,1,none,0.1\n"
	os.WriteFile(dishesPath, []byte(orphan), 0644)
	os.WriteFile(restaurantsPath, []byte(testRestaurants), 0644)

	if _, err := Load(dishesPath, restaurantsPath); err == nil {
		t.Fatal("expected error for dish referencing unknown restaurant")
	}
}

func TestGetDish_NotFound(t *testing.T) {
	p := writeTestCatalog(t)

	_, err := p.GetDish("nope")
	if !errors.Is(err, ErrDishNotFound) {
		t.Errorf("expected ErrDishNotFound, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	p := writeTestCatalog(t)

	maxPrice := func(v float64) *float64 { return &v }
	minPop := func(v float64) *float64 { return &v }

	tests := []struct {
		name    string
		filter  models.DishFilter
		wantIDs []string
	}{
		{"empty filter returns all", models.DishFilter{}, []string{"d1", "d2", "d3"}},
		{"name substring case-insensitive", models.DishFilter{DishName: "taco"}, []string{"d1"}},
		{"restaurant filter", models.DishFilter{RestaurantID: "r1"}, []string{"d1", "d2"}},
		{"tag intersection", models.DishFilter{Tags: []string{"SPICY"}}, []string{"d1", "d3"}},
		{"max price", models.DishFilter{MaxPrice: maxPrice(10.00)}, []string{"d1", "d2"}},
		{"min popularity", models.DishFilter{MinPopularityScore: minPop(0.8)}, []string{"d1", "d3"}},
		{
			"filters AND-combined",
			models.DishFilter{Tags: []string{"spicy"}, MaxPrice: maxPrice(11.00)},
			[]string{"d1"},
		},
		{"no match", models.DishFilter{DishName: "sushi"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := p.Search(tt.filter)
			if len(results) != len(tt.wantIDs) {
				t.Fatalf("expected %d results, got %d: %+v", len(tt.wantIDs), len(results), results)
			}
			for i, want := range tt.wantIDs {
				if results[i].DishID != want {
					t.Errorf("result %d: expected %s, got %s", i, want, results[i].DishID)
				}
			}
		})
	}
}

func TestListRestaurants_DishCounts(t *testing.T) {
	p := writeTestCatalog(t)

	summaries := p.ListRestaurants()
	counts := make(map[string]int)
	for _, s := range summaries {
		counts[s.RestaurantID] = s.DishCount
	}

	if counts["r1"] != 2 || counts["r2"] != 1 {
		t.Errorf("unexpected dish counts: %v", counts)
	}
}

func TestMenu(t *testing.T) {
	p := writeTestCatalog(t)

	items, err := p.Menu("r1")
	if err != nil {
		t.Fatalf("Menu(r1): %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 menu items, got %d", len(items))
	}
	if items[0].ItemID != "d1" || !items[0].Available {
		t.Errorf("unexpected menu item: %+v", items[0])
	}

	if _, err := p.Menu("r9"); !errors.Is(err, ErrRestaurantNotFound) {
		t.Errorf("expected ErrRestaurantNotFound, got %v", err)
	}
}
