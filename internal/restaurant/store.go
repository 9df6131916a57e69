// Package restaurant owns the authoritative state of a single restaurant and
// the order and notification state machine built on top of it.
//
// Every mutation runs under the store's mutex and emits its events to the
// registered listeners before the call returns. Listeners that need to act on
// the store while handling an event do so through the Tx they are given.
package restaurant

import (
	"fmt"
	"maps"
	"sync"
	"time"

	"overcooked-live/internal/domain"
	"overcooked-live/internal/pricing"
	"overcooked-live/internal/validation"

	"github.com/google/uuid"
)

type Option func(*Store)

// WithClock replaces time.Now for order and notification timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the order item id generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

type subscription struct {
	id       int
	listener Listener
}

type Store struct {
	mu sync.Mutex

	id            int
	details       domain.Details
	theme         domain.Theme
	dishes        *index[int, *domain.Dish]
	categories    *index[int, *domain.Category]
	tables        *index[int, *domain.Table]
	orders        *index[int, *domain.Order]
	notifications *index[string, *domain.Notification]
	lastOrderID   int
	nextTableID   int

	listeners      []subscription
	nextListenerID int

	now   func() time.Time
	newID func() string
}

func New(seed domain.Seed, opts ...Option) *Store {
	s := &Store{
		id: seed.ID,
		details: domain.Details{
			Name:        seed.Name,
			Description: seed.Description,
			Logo:        seed.Logo,
		},
		theme:         maps.Clone(seed.Theme),
		dishes:        newIndex[int, *domain.Dish](),
		categories:    newIndex[int, *domain.Category](),
		tables:        newIndex[int, *domain.Table](),
		orders:        newIndex[int, *domain.Order](),
		notifications: newIndex[string, *domain.Notification](),
		lastOrderID:   -1,
		now:           time.Now,
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, dish := range seed.Dishes {
		clone := dish.Clone()
		s.dishes.put(clone.ID, &clone)
	}
	for _, category := range seed.Categories {
		clone := category
		s.categories.put(clone.ID, &clone)
	}
	for i := 0; i < seed.Tables; i++ {
		s.tables.put(i, &domain.Table{ID: i, ActiveOrders: []int{}})
	}
	s.nextTableID = seed.Tables
	return s
}

// Subscribe registers l for every future event and returns a function that
// removes it. It must not be called from inside a listener.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextListenerID
	s.nextListenerID++
	s.listeners = append(s.listeners, subscription{id: id, listener: l})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) emit(ev Event) {
	listeners := append([]subscription(nil), s.listeners...)
	tx := &Tx{store: s}
	for _, sub := range listeners {
		sub.listener.HandleEvent(tx, ev)
	}
	tx.done = true
}

// dish returns the live catalog entry. Callers must hold the lock.
func (s *Store) dish(id int) (*domain.Dish, bool) {
	return s.dishes.get(id)
}

// liveCatalog exposes the locked store to pricing and validation.
type liveCatalog struct{ s *Store }

func (c liveCatalog) Dish(id int) (*domain.Dish, bool) { return c.s.dish(id) }

func (s *Store) activeNotification(origin int, kind domain.NotificationType) *domain.Notification {
	var found *domain.Notification
	s.notifications.each(func(n *domain.Notification) bool {
		if n.Active && n.Origin == origin && n.Type() == kind {
			found = n
			return false
		}
		return true
	})
	return found
}

func (s *Store) ID() int {
	return s.id
}

// CreateOrder accepts a draft from a table. The order gets the next order id,
// fresh item ids, ORDER_RECEIVED status and computed prices.
func (s *Store) CreateOrder(draft domain.DraftOrder) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createOrder(draft)
}

func (s *Store) createOrder(draft domain.DraftOrder) (*domain.Order, error) {
	if len(draft.Items) == 0 {
		return nil, fmt.Errorf("%w: cannot accept an empty order", domain.ErrOrderRejected)
	}

	table, ok := s.tables.get(draft.Origin)
	if !ok {
		return nil, fmt.Errorf("%w: table %d does not exist", domain.ErrOrderRejected, draft.Origin)
	}

	if s.activeNotification(draft.Origin, domain.NotificationCheckRequested) != nil {
		return nil, fmt.Errorf("%w: payment is in progress for table %d", domain.ErrOrderRejected, draft.Origin)
	}

	if err := validation.ValidateOrder(liveCatalog{s}, draft); err != nil {
		return nil, err
	}

	s.lastOrderID++
	order := &domain.Order{
		ID:     s.lastOrderID,
		Time:   s.now(),
		Origin: draft.Origin,
		Status: domain.OrderReceived,
		Note:   draft.Note,
		Items:  make([]domain.OrderItem, 0, len(draft.Items)),
	}
	for _, item := range draft.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ID:     s.newID(),
			Dish:   item.Dish.Clone(),
			Amount: item.Amount,
			Status: domain.ItemInit,
		})
	}
	pricing.Reprice(liveCatalog{s}, order)

	table.ActiveOrders = append(table.ActiveOrders, order.ID)
	s.orders.put(order.ID, order)

	s.emit(NewOrder{Order: order.Clone()})
	return order.Clone(), nil
}

func (s *Store) UpdateOrderStatus(orderID int, status domain.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders.get(orderID)
	if !ok {
		return fmt.Errorf("%w: order %d", domain.ErrNotFound, orderID)
	}
	if !status.Valid() {
		return fmt.Errorf("%w: order status %q", domain.ErrInvalidStatus, status)
	}

	prev := order.Status
	order.Status = status

	s.emit(OrderStatusUpdate{Order: order.Clone(), NewStatus: status, PrevStatus: prev})
	return nil
}

// UpdateOrderItemStatus sets the status of one item of an order. Any enum
// member is accepted regardless of the current status.
func (s *Store) UpdateOrderItemStatus(orderID int, itemID string, status domain.OrderItemStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders.get(orderID)
	if !ok {
		return fmt.Errorf("%w: order %d", domain.ErrNotFound, orderID)
	}
	item, ok := order.Item(itemID)
	if !ok {
		return fmt.Errorf("%w: item %s in order %d", domain.ErrNotFound, itemID, orderID)
	}
	if !status.Valid() {
		return fmt.Errorf("%w: order item status %q", domain.ErrInvalidStatus, status)
	}

	prev := item.Status
	item.Status = status

	s.emit(OrderItemStatusUpdate{
		Order:      order.Clone(),
		Item:       *cloneItem(item),
		NewStatus:  status,
		PrevStatus: prev,
	})
	return nil
}

func cloneItem(item *domain.OrderItem) *domain.OrderItem {
	clone := *item
	clone.Dish = item.Dish.Clone()
	if item.Price != nil {
		price := *item.Price
		clone.Price = &price
	}
	return &clone
}

func (s *Store) SetNotificationInactive(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setNotificationInactive(id)
}

func (s *Store) setNotificationInactive(id string) error {
	notification, ok := s.notifications.get(id)
	if !ok {
		return fmt.Errorf("%w: notification %s", domain.ErrNotFound, id)
	}
	if !notification.Active {
		return fmt.Errorf("%w: notification %s", domain.ErrAlreadyInactive, id)
	}

	notification.Active = false
	s.emit(NotificationStatusUpdate{Notification: notification.Clone()})
	return nil
}

func (s *Store) SendAssistanceRequest(tableID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tables.get(tableID); !ok {
		return fmt.Errorf("%w: table %d", domain.ErrInvalidTable, tableID)
	}
	if s.activeNotification(tableID, domain.NotificationNeedAssistance) != nil {
		return fmt.Errorf("%w: assistance for table %d", domain.ErrDuplicateRequest, tableID)
	}

	s.emit(AssistanceRequest{TableID: tableID})
	return nil
}

func (s *Store) SendCheckRequest(tableID int, method domain.PaymentMethod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tables.get(tableID); !ok {
		return fmt.Errorf("%w: table %d", domain.ErrInvalidTable, tableID)
	}
	if !method.Valid() {
		return fmt.Errorf("%w: payment method %q", domain.ErrValidation, method)
	}
	if s.activeNotification(tableID, domain.NotificationCheckRequested) != nil {
		return fmt.Errorf("%w: check for table %d", domain.ErrDuplicateRequest, tableID)
	}

	s.emit(CheckRequest{TableID: tableID, PaymentMethod: method})
	return nil
}

func (s *Store) CreateNotification(notification *domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createNotification(notification)
}

func (s *Store) createNotification(notification *domain.Notification) error {
	if notification.ID == "" || notification.Detail == nil {
		return fmt.Errorf("%w: notification needs an id and a detail", domain.ErrValidation)
	}
	if _, exists := s.notifications.get(notification.ID); exists {
		return fmt.Errorf("%w: notification %s already exists", domain.ErrValidation, notification.ID)
	}
	if _, ok := s.tables.get(notification.Origin); !ok {
		return fmt.Errorf("%w: table %d", domain.ErrInvalidTable, notification.Origin)
	}

	stored := notification.Clone()
	s.notifications.put(stored.ID, stored)

	s.emit(NewNotification{Notification: stored.Clone()})
	return nil
}

// FinishOrder releases an order from its table, deactivates the table's
// active notifications and emits finishedOrCancelledOrder. Repeating it is safe.
func (s *Store) FinishOrder(orderID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finishOrder(orderID)
}

func (s *Store) finishOrder(orderID int) error {
	order, ok := s.orders.get(orderID)
	if !ok {
		return fmt.Errorf("%w: order %d", domain.ErrNotFound, orderID)
	}

	if table, ok := s.tables.get(order.Origin); ok {
		active := table.ActiveOrders[:0]
		for _, id := range table.ActiveOrders {
			if id != order.ID {
				active = append(active, id)
			}
		}
		table.ActiveOrders = active
	}

	var pending []string
	s.notifications.each(func(n *domain.Notification) bool {
		if n.Active && n.Origin == order.Origin {
			pending = append(pending, n.ID)
		}
		return true
	})
	for _, id := range pending {
		// a listener may already have deactivated it
		if n, ok := s.notifications.get(id); ok && n.Active {
			_ = s.setNotificationInactive(id)
		}
	}

	s.emit(FinishedOrCancelledOrder{Order: order.Clone()})
	return nil
}
