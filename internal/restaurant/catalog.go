package restaurant

import (
	"fmt"
	"maps"
	"strings"

	"overcooked-live/internal/domain"
	"overcooked-live/internal/validation"
)

// CreateDish adds draft to the catalog under the next free dish id.
func (s *Store) CreateDish(draft domain.Dish) (domain.Dish, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dish := draft.Clone()
	dish.ID = nextID(s.dishes)
	dish.Params.Title = strings.TrimSpace(dish.Params.Title)

	_, categoryExists := s.categories.get(dish.CategoryID)
	if err := validation.ValidateDish(dish, categoryExists); err != nil {
		return domain.Dish{}, err
	}

	s.dishes.put(dish.ID, &dish)
	s.emit(RestaurantDataUpdated{})
	return dish.Clone(), nil
}

func (s *Store) UpdateDish(update domain.Dish) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.dishes.get(update.ID); !ok {
		return fmt.Errorf("%w: dish %d", domain.ErrNotFound, update.ID)
	}

	dish := update.Clone()
	dish.Params.Title = strings.TrimSpace(dish.Params.Title)

	_, categoryExists := s.categories.get(dish.CategoryID)
	if err := validation.ValidateDish(dish, categoryExists); err != nil {
		return err
	}

	s.dishes.put(dish.ID, &dish)
	s.emit(RestaurantDataUpdated{})
	return nil
}

func (s *Store) categoryTitleTaken(exceptID int) func(string) bool {
	return func(title string) bool {
		taken := false
		s.categories.each(func(c *domain.Category) bool {
			if c.ID != exceptID && strings.EqualFold(c.Title, title) {
				taken = true
				return false
			}
			return true
		})
		return taken
	}
}

func (s *Store) CreateCategory(draft domain.Category) (domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	title, err := validation.CategoryTitle(draft.Title, s.categoryTitleTaken(-1))
	if err != nil {
		return domain.Category{}, err
	}

	category := &domain.Category{ID: nextID(s.categories), Title: title}
	s.categories.put(category.ID, category)
	s.emit(RestaurantDataUpdated{})
	return *category, nil
}

func (s *Store) UpdateCategory(update domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	category, ok := s.categories.get(update.ID)
	if !ok {
		return fmt.Errorf("%w: category %d", domain.ErrNotFound, update.ID)
	}

	title, err := validation.CategoryTitle(update.Title, s.categoryTitleTaken(update.ID))
	if err != nil {
		return err
	}

	category.Title = title
	s.emit(RestaurantDataUpdated{})
	return nil
}

// DeleteCategory removes a category no dish refers to.
func (s *Store) DeleteCategory(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories.get(id); !ok {
		return fmt.Errorf("%w: category %d", domain.ErrNotFound, id)
	}

	inUse := false
	s.dishes.each(func(d *domain.Dish) bool {
		inUse = d.CategoryID == id
		return !inUse
	})
	if inUse {
		return fmt.Errorf("%w: category %d still has dishes", domain.ErrValidation, id)
	}

	s.categories.remove(id)
	s.emit(RestaurantDataUpdated{})
	return nil
}

// AddTable appends a table. Ids of deleted tables are never handed out again.
func (s *Store) AddTable() domain.Table {
	s.mu.Lock()
	defer s.mu.Unlock()

	table := &domain.Table{ID: s.nextTableID, ActiveOrders: []int{}}
	s.nextTableID++
	s.tables.put(table.ID, table)
	s.emit(RestaurantDataUpdated{})
	return table.Clone()
}

// DeleteTable removes a table without unresolved orders.
func (s *Store) DeleteTable(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, ok := s.tables.get(id)
	if !ok {
		return fmt.Errorf("%w: table %d", domain.ErrNotFound, id)
	}
	if len(table.ActiveOrders) > 0 {
		return fmt.Errorf("%w: table %d has %d active orders", domain.ErrValidation, id, len(table.ActiveOrders))
	}

	s.tables.remove(id)
	s.emit(RestaurantDataUpdated{})
	return nil
}

func (s *Store) SetDetails(details domain.Details) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validation.ValidateDetails(details); err != nil {
		return err
	}

	s.details = domain.Details{
		Name:        strings.TrimSpace(details.Name),
		Description: strings.TrimSpace(details.Description),
		Logo:        details.Logo,
	}
	s.emit(RestaurantDataUpdated{})
	return nil
}

// SetTheme stores theme as given.
func (s *Store) SetTheme(theme domain.Theme) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.theme = maps.Clone(theme)
	s.emit(RestaurantDataUpdated{})
}
