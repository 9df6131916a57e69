package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"overcooked-live/internal/domain"
)

const (
	MaxDishTitleLength       = 60
	MaxDishDescriptionLength = 600
	MaxDishQuantityLength    = 30
	MaxDishImageLength       = 150
	MaxIngredientNameLength  = 50
	MaxOptionNameLength      = 30
	MaxCategoryTitleLength   = 30
	MaxRestaurantNameLength  = 30
	MaxRestaurantDescLength  = 300
)

func tooLong(value string, limit int) bool {
	return utf8.RuneCountInString(value) > limit
}

// ValidateDish checks the dish invariants. categoryExists reports whether the
// dish's category is known to the restaurant.
func ValidateDish(dish domain.Dish, categoryExists bool) error {
	title := strings.TrimSpace(dish.Params.Title)
	switch {
	case !categoryExists:
		return fmt.Errorf("%w: unknown category %d", domain.ErrValidation, dish.CategoryID)
	case title == "":
		return fmt.Errorf("%w: dish title is required", domain.ErrValidation)
	case tooLong(title, MaxDishTitleLength):
		return fmt.Errorf("%w: dish title longer than %d characters", domain.ErrValidation, MaxDishTitleLength)
	case tooLong(dish.Params.Description, MaxDishDescriptionLength):
		return fmt.Errorf("%w: dish description longer than %d characters", domain.ErrValidation, MaxDishDescriptionLength)
	case tooLong(dish.Params.Quantity, MaxDishQuantityLength):
		return fmt.Errorf("%w: dish quantity longer than %d characters", domain.ErrValidation, MaxDishQuantityLength)
	case tooLong(dish.Image, MaxDishImageLength):
		return fmt.Errorf("%w: dish image longer than %d characters", domain.ErrValidation, MaxDishImageLength)
	case dish.Price < 0:
		return fmt.Errorf("%w: dish price must not be negative", domain.ErrValidation)
	case dish.Discount < 0:
		return fmt.Errorf("%w: dish discount must not be negative", domain.ErrValidation)
	case dish.Discount > dish.Price:
		return fmt.Errorf("%w: dish discount %.2f exceeds price %.2f", domain.ErrValidation, dish.Discount, dish.Price)
	}

	for _, ingredient := range dish.Params.Ingredients {
		if ingredient.Name == "" || tooLong(ingredient.Name, MaxIngredientNameLength) {
			return fmt.Errorf("%w: invalid ingredient name %q", domain.ErrValidation, ingredient.Name)
		}
	}
	for _, option := range dish.Params.Options {
		if option.Option == "" || tooLong(option.Option, MaxOptionNameLength) {
			return fmt.Errorf("%w: invalid option name %q", domain.ErrValidation, option.Option)
		}
		if option.Price < 0 {
			return fmt.Errorf("%w: option %q price must not be negative", domain.ErrValidation, option.Option)
		}
	}
	return nil
}

// CategoryTitle trims and checks a category title. taken reports whether
// another category already uses the trimmed title.
func CategoryTitle(title string, taken func(string) bool) (string, error) {
	title = strings.TrimSpace(title)
	switch {
	case title == "":
		return "", fmt.Errorf("%w: category title is required", domain.ErrValidation)
	case tooLong(title, MaxCategoryTitleLength):
		return "", fmt.Errorf("%w: category title longer than %d characters", domain.ErrValidation, MaxCategoryTitleLength)
	case taken(title):
		return "", fmt.Errorf("%w: category %q already exists", domain.ErrValidation, title)
	}
	return title, nil
}

func ValidateDetails(details domain.Details) error {
	name := strings.TrimSpace(details.Name)
	description := strings.TrimSpace(details.Description)
	switch {
	case name == "":
		return fmt.Errorf("%w: restaurant name is required", domain.ErrValidation)
	case tooLong(name, MaxRestaurantNameLength):
		return fmt.Errorf("%w: restaurant name longer than %d characters", domain.ErrValidation, MaxRestaurantNameLength)
	case description == "":
		return fmt.Errorf("%w: restaurant description is required", domain.ErrValidation)
	case tooLong(description, MaxRestaurantDescLength):
		return fmt.Errorf("%w: restaurant description longer than %d characters", domain.ErrValidation, MaxRestaurantDescLength)
	}
	return nil
}
