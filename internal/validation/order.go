// Package validation checks client payloads against a restaurant's catalog.
// Every violation wraps domain.ErrValidation.
package validation

import (
	"fmt"
	"unicode/utf8"

	"overcooked-live/internal/domain"
)

const (
	MinItemAmount = 1
	MaxItemAmount = 10
	MaxNoteLength = 150
)

// Catalog resolves dishes by id.
type Catalog interface {
	Dish(id int) (*domain.Dish, bool)
}

// ValidateOrder returns the first violation found in draft. Empty statuses are
// read as INIT.
func ValidateOrder(catalog Catalog, draft domain.DraftOrder) error {
	if utf8.RuneCountInString(draft.Note) > MaxNoteLength {
		return fmt.Errorf("%w: note longer than %d characters", domain.ErrValidation, MaxNoteLength)
	}

	orderStatus := draft.Status
	if orderStatus == "" {
		orderStatus = domain.OrderInit
	}

	for i, item := range draft.Items {
		if item.Amount < MinItemAmount || item.Amount > MaxItemAmount {
			return fmt.Errorf("%w: item %d amount %d outside [%d,%d]",
				domain.ErrValidation, i, item.Amount, MinItemAmount, MaxItemAmount)
		}

		dish, ok := catalog.Dish(item.Dish.DishID)
		if !ok {
			return fmt.Errorf("%w: invalid dish id %d", domain.ErrValidation, item.Dish.DishID)
		}

		itemStatus := item.Status
		if itemStatus == "" {
			itemStatus = domain.ItemInit
		}
		if !itemStatus.Valid() {
			return fmt.Errorf("%w: invalid order item status %q", domain.ErrValidation, item.Status)
		}

		if !orderStatus.Valid() {
			return fmt.Errorf("%w: invalid order status %q", domain.ErrValidation, draft.Status)
		}

		for _, added := range item.Dish.AddedOptions {
			option, ok := dish.Option(added.Option)
			if !ok || !option.Enabled {
				return fmt.Errorf("%w: invalid dish option %q", domain.ErrValidation, added.Option)
			}
		}

		for _, removed := range item.Dish.RemovedIngredients {
			ingredient, ok := dish.Ingredient(removed.Name)
			if !ok || !ingredient.Removable {
				return fmt.Errorf("%w: invalid dish ingredient %q", domain.ErrValidation, removed.Name)
			}
		}
	}

	return nil
}
