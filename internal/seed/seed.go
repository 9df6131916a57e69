// Package seed loads the restaurants the process starts with.
package seed

import (
	"encoding/json"
	"fmt"
	"os"

	"overcooked-live/internal/domain"
)

// Load reads a JSON array of restaurants from path. An empty path yields the
// demo restaurant.
func Load(path string) ([]domain.Seed, error) {
	if path == "" {
		return []domain.Seed{Demo()}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) ([]domain.Seed, error) {
	var seeds []domain.Seed
	if err := json.Unmarshal(raw, &seeds); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	if len(seeds) == 0 {
		return nil, fmt.Errorf("seed file lists no restaurants")
	}

	ids := make(map[int]struct{}, len(seeds))
	for _, s := range seeds {
		if _, dup := ids[s.ID]; dup {
			return nil, fmt.Errorf("duplicate restaurant id %d", s.ID)
		}
		ids[s.ID] = struct{}{}
		if s.Tables < 0 {
			return nil, fmt.Errorf("restaurant %d: negative table count", s.ID)
		}
	}
	return seeds, nil
}

// Demo is a small restaurant with two tables.
func Demo() domain.Seed {
	return domain.Seed{
		ID:          0,
		Name:        "Overcooked",
		Description: "Demo restaurant",
		Theme:       domain.Theme{"primary": "#f97316", "background": "#ffffff"},
		Categories: []domain.Category{
			{ID: 0, Title: "Salads"},
			{ID: 1, Title: "Mains"},
			{ID: 2, Title: "Desserts"},
		},
		Dishes: []domain.Dish{
			{
				ID:         0,
				CategoryID: 0,
				Image:      "https://i.imgur.com/z5uQO2g.png",
				Price:      18.00,
				Params: domain.DishParams{
					Title:       "Salmon Salad",
					Description: "Mixed greens, cherry tomatoes, cucumber and avocado topped with grilled salmon.",
					Quantity:    "300g",
					Ingredients: []domain.Ingredient{
						{Name: "Mixed Greens", Removable: true},
						{Name: "Cherry Tomatoes", Removable: true},
						{Name: "Avocado", Removable: true},
						{Name: "Grilled Salmon", Removable: false},
					},
					Options: []domain.DishOption{
						{Option: "Extra Dressing", Price: 1.00, Enabled: true},
						{Option: "Croutons", Price: 0.75, Enabled: true},
					},
					Available: true,
				},
			},
			{
				ID:         1,
				CategoryID: 1,
				Image:      "https://i.imgur.com/n42xuG7.png",
				Price:      8.99,
				Discount:   1.00,
				Params: domain.DishParams{
					Title:       "Dumplings",
					Description: "Steamed dumplings filled with meat and vegetables.",
					Quantity:    "~300g",
					Ingredients: []domain.Ingredient{
						{Name: "Dumpling Dough", Removable: false},
						{Name: "Soy Sauce", Removable: true},
						{Name: "Green Onions", Removable: true},
					},
					Options: []domain.DishOption{
						{Option: "Spicy Dipping Sauce", Price: 1.00, Enabled: true},
						{Option: "Vegetarian Filling", Price: 1.50, Enabled: false},
					},
					Available: true,
				},
			},
			{
				ID:         2,
				CategoryID: 2,
				Image:      "https://i.imgur.com/C77guC4.png",
				Price:      14.99,
				Discount:   2.00,
				Params: domain.DishParams{
					Title:       "Ice Cream Sampler",
					Description: "Three scoops of your choice.",
					Quantity:    "3 balls",
					Ingredients: []domain.Ingredient{
						{Name: "Vanilla", Removable: true},
						{Name: "Chocolate", Removable: true},
						{Name: "Pistachio", Removable: true},
					},
					Available: true,
				},
			},
		},
		Tables: 2,
	}
}
