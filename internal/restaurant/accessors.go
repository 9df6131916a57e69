package restaurant

import (
	"fmt"
	"maps"

	"overcooked-live/internal/domain"
)

func (s *Store) Details() domain.Details {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.details
}

func (s *Store) Theme() domain.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.theme)
}

func (s *Store) Dishes() []domain.Dish {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dishList()
}

func (s *Store) dishList() []domain.Dish {
	dishes := make([]domain.Dish, 0, s.dishes.len())
	s.dishes.each(func(d *domain.Dish) bool {
		dishes = append(dishes, d.Clone())
		return true
	})
	return dishes
}

func (s *Store) Dish(id int) (*domain.Dish, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dish, ok := s.dishes.get(id)
	if !ok {
		return nil, false
	}
	clone := dish.Clone()
	return &clone, true
}

func (s *Store) Categories() []domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categoryList()
}

func (s *Store) categoryList() []domain.Category {
	categories := make([]domain.Category, 0, s.categories.len())
	s.categories.each(func(c *domain.Category) bool {
		categories = append(categories, *c)
		return true
	})
	return categories
}

func (s *Store) Tables() []domain.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tableList()
}

func (s *Store) tableList() []domain.Table {
	tables := make([]domain.Table, 0, s.tables.len())
	s.tables.each(func(t *domain.Table) bool {
		tables = append(tables, t.Clone())
		return true
	})
	return tables
}

func (s *Store) Orders() []*domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	orders := make([]*domain.Order, 0, s.orders.len())
	s.orders.each(func(o *domain.Order) bool {
		orders = append(orders, o.Clone())
		return true
	})
	return orders
}

func (s *Store) Order(id int) (*domain.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders.get(id)
	if !ok {
		return nil, false
	}
	return order.Clone(), true
}

func (s *Store) Notifications() []*domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	notifications := make([]*domain.Notification, 0, s.notifications.len())
	s.notifications.each(func(n *domain.Notification) bool {
		notifications = append(notifications, n.Clone())
		return true
	})
	return notifications
}

// TableOrders returns the unresolved orders of a table.
func (s *Store) TableOrders(tableID int) ([]*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tableOrders(tableID)
}

func (s *Store) tableOrders(tableID int) ([]*domain.Order, error) {
	table, ok := s.tables.get(tableID)
	if !ok {
		return nil, fmt.Errorf("%w: table %d", domain.ErrInvalidTable, tableID)
	}

	orders := make([]*domain.Order, 0, len(table.ActiveOrders))
	for _, id := range table.ActiveOrders {
		if order, ok := s.orders.get(id); ok {
			orders = append(orders, order.Clone())
		}
	}
	return orders, nil
}

// Data returns the catalog block clients render the restaurant from.
func (s *Store) Data() domain.RestaurantData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.RestaurantData{
		ID:          s.id,
		Name:        s.details.Name,
		Description: s.details.Description,
		Logo:        s.details.Logo,
		Theme:       maps.Clone(s.theme),
		Dishes:      s.dishList(),
		Categories:  s.categoryList(),
		Tables:      s.tableList(),
	}
}
