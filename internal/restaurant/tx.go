package restaurant

import (
	"errors"
	"fmt"

	"overcooked-live/internal/domain"
	"overcooked-live/internal/pricing"
)

var ErrTxDone = errors.New("restaurant: transaction used after its callback returned")

// Tx is the handle a listener gets while an event is dispatched. The store
// lock is already held, so Tx methods never lock.
type Tx struct {
	store *Store
	done  bool
}

func (tx *Tx) RestaurantID() int {
	return tx.store.id
}

func (tx *Tx) Dish(id int) (*domain.Dish, bool) {
	if tx.done {
		return nil, false
	}
	dish, ok := tx.store.dish(id)
	if !ok {
		return nil, false
	}
	clone := dish.Clone()
	return &clone, true
}

func (tx *Tx) Order(id int) (*domain.Order, bool) {
	if tx.done {
		return nil, false
	}
	order, ok := tx.store.orders.get(id)
	if !ok {
		return nil, false
	}
	return order.Clone(), true
}

func (tx *Tx) TableOrders(tableID int) ([]*domain.Order, error) {
	if tx.done {
		return nil, ErrTxDone
	}
	return tx.store.tableOrders(tableID)
}

func (tx *Tx) CreateNotification(notification *domain.Notification) error {
	if tx.done {
		return ErrTxDone
	}
	return tx.store.createNotification(notification)
}

func (tx *Tx) FinishOrder(orderID int) error {
	if tx.done {
		return ErrTxDone
	}
	return tx.store.finishOrder(orderID)
}

// SetDerivedStatus overwrites an order status computed from its items. No
// event is emitted for it.
func (tx *Tx) SetDerivedStatus(orderID int, status domain.OrderStatus) error {
	if tx.done {
		return ErrTxDone
	}
	order, ok := tx.store.orders.get(orderID)
	if !ok {
		return fmt.Errorf("%w: order %d", domain.ErrNotFound, orderID)
	}
	if !status.Valid() {
		return fmt.Errorf("%w: order status %q", domain.ErrInvalidStatus, status)
	}
	order.Status = status
	return nil
}

// Reprice recomputes the item and order prices of an order from the current catalog.
func (tx *Tx) Reprice(orderID int) error {
	if tx.done {
		return ErrTxDone
	}
	order, ok := tx.store.orders.get(orderID)
	if !ok {
		return fmt.Errorf("%w: order %d", domain.ErrNotFound, orderID)
	}
	pricing.Reprice(liveCatalog{tx.store}, order)
	return nil
}
