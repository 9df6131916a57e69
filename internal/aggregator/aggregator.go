// Package aggregator reacts to the events of every restaurant store. It
// derives order status from item status, synthesizes notifications, finishes
// terminal orders and re-emits each event tagged with its restaurant id.
package aggregator

import (
	"sort"
	"sync"
	"time"

	"overcooked-live/internal/domain"
	"overcooked-live/internal/restaurant"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Catalog resolves dishes of the restaurant an event belongs to.
type Catalog interface {
	Dish(id int) (*domain.Dish, bool)
}

// Event is a store event tagged with its restaurant. Catalog is only valid
// while the event is being handled.
type Event struct {
	RestaurantID int
	Payload      restaurant.Event
	Catalog      Catalog
}

func (e Event) Name() string {
	return e.Payload.EventName()
}

type Subscriber interface {
	HandleRestaurantEvent(ev Event)
}

type SubscriberFunc func(ev Event)

func (f SubscriberFunc) HandleRestaurantEvent(ev Event) { f(ev) }

type Option func(*Aggregator)

func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithIDGenerator replaces the notification id generator.
func WithIDGenerator(newID func() string) Option {
	return func(a *Aggregator) { a.newID = newID }
}

type subscription struct {
	id         int
	subscriber Subscriber
}

type Aggregator struct {
	logger *zap.Logger

	mu          sync.RWMutex
	stores      map[int]*restaurant.Store
	detach      []func()
	subscribers []subscription
	nextSubID   int

	now   func() time.Time
	newID func() string
}

func New(logger *zap.Logger, stores []*restaurant.Store, opts ...Option) *Aggregator {
	a := &Aggregator{
		logger: logger.Named("aggregator"),
		stores: make(map[int]*restaurant.Store, len(stores)),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	for _, store := range stores {
		a.Attach(store)
	}
	return a
}

// Attach starts listening to store. Attaching a second store with the same id
// replaces the first.
func (a *Aggregator) Attach(store *restaurant.Store) {
	// store locks are taken before the aggregator lock during dispatch
	detach := store.Subscribe(restaurant.ListenerFunc(a.handleStoreEvent))

	a.mu.Lock()
	defer a.mu.Unlock()
	a.stores[store.ID()] = store
	a.detach = append(a.detach, detach)
}

// Close stops listening to every attached store.
func (a *Aggregator) Close() {
	a.mu.Lock()
	detach := a.detach
	a.detach = nil
	a.mu.Unlock()

	for _, fn := range detach {
		fn()
	}
}

func (a *Aggregator) Restaurant(id int) (*restaurant.Store, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	store, ok := a.stores[id]
	return store, ok
}

// Restaurants returns the attached stores ordered by id.
func (a *Aggregator) Restaurants() []*restaurant.Store {
	a.mu.RLock()
	defer a.mu.RUnlock()
	stores := make([]*restaurant.Store, 0, len(a.stores))
	for _, store := range a.stores {
		stores = append(stores, store)
	}
	sort.Slice(stores, func(i, j int) bool { return stores[i].ID() < stores[j].ID() })
	return stores
}

// Subscribe registers s for every tagged event. Subscribers run while the
// originating store is locked and must not call back into it.
func (a *Aggregator) Subscribe(s Subscriber) (unsubscribe func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.nextSubID
	a.nextSubID++
	a.subscribers = append(a.subscribers, subscription{id: id, subscriber: s})

	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		for i, sub := range a.subscribers {
			if sub.id == id {
				a.subscribers = append(a.subscribers[:i:i], a.subscribers[i+1:]...)
				return
			}
		}
	}
}

func (a *Aggregator) handleStoreEvent(tx *restaurant.Tx, ev restaurant.Event) {
	switch ev := ev.(type) {
	case restaurant.NewOrder:
		a.publish(tx, ev)
		a.notify(tx, ev.Order.Origin, domain.NewOrderDetail{OrderID: ev.Order.ID})

	case restaurant.OrderStatusUpdate:
		a.publish(tx, ev)
		if ev.NewStatus == domain.OrderFinished || ev.NewStatus == domain.OrderCancelled {
			if err := tx.FinishOrder(ev.Order.ID); err != nil {
				a.logger.Error("failed to finish order",
					zap.Int("restaurant_id", tx.RestaurantID()),
					zap.Int("order_id", ev.Order.ID),
					zap.Error(err))
			}
		}

	case restaurant.OrderItemStatusUpdate:
		a.publish(tx, a.onItemStatusUpdate(tx, ev))

	case restaurant.AssistanceRequest:
		a.notify(tx, ev.TableID, domain.AssistanceDetail{})
		a.publish(tx, ev)

	case restaurant.CheckRequest:
		a.notify(tx, ev.TableID, a.checkDetail(tx, ev))
		a.publish(tx, ev)

	default:
		a.publish(tx, ev)
	}
}

func (a *Aggregator) onItemStatusUpdate(tx *restaurant.Tx, ev restaurant.OrderItemStatusUpdate) restaurant.OrderItemStatusUpdate {
	order := ev.Order
	rid := tx.RestaurantID()

	if !order.Status.Terminal() {
		if derived := DeriveStatus(order.Status, order.Items); derived != order.Status {
			if err := tx.SetDerivedStatus(order.ID, derived); err != nil {
				a.logger.Error("failed to set derived order status",
					zap.Int("restaurant_id", rid),
					zap.Int("order_id", order.ID),
					zap.Error(err))
			}
		}
	}

	switch ev.NewStatus {
	case domain.ItemPrepared:
		a.notify(tx, order.Origin, domain.ReadyForDeliveryDetail{OrderID: order.ID, OrderItemID: ev.Item.ID})
	case domain.ItemCancelled:
		if err := tx.Reprice(order.ID); err != nil {
			a.logger.Error("failed to reprice order",
				zap.Int("restaurant_id", rid),
				zap.Int("order_id", order.ID),
				zap.Error(err))
		}
		a.notify(tx, order.Origin, domain.ItemCancelledDetail{OrderID: order.ID, OrderItemID: ev.Item.ID})
	}

	if fresh, ok := tx.Order(order.ID); ok {
		ev.Order = fresh
		if item, ok := fresh.Item(ev.Item.ID); ok {
			ev.Item = *item
		}
	}
	return ev
}

func (a *Aggregator) checkDetail(tx *restaurant.Tx, ev restaurant.CheckRequest) domain.CheckRequestedDetail {
	detail := domain.CheckRequestedDetail{OrderIDs: []int{}, PaymentMethod: ev.PaymentMethod}
	orders, err := tx.TableOrders(ev.TableID)
	if err != nil {
		a.logger.Warn("failed to collect table orders for check request",
			zap.Int("restaurant_id", tx.RestaurantID()),
			zap.Int("table_id", ev.TableID),
			zap.Error(err))
		return detail
	}
	for _, order := range orders {
		detail.OrderIDs = append(detail.OrderIDs, order.ID)
	}
	return detail
}

// notify creates a notification on the store. Failures are logged and never
// reach the mutation that triggered them.
func (a *Aggregator) notify(tx *restaurant.Tx, origin int, detail domain.NotificationDetail) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("notification synthesis panicked",
				zap.Int("restaurant_id", tx.RestaurantID()),
				zap.String("type", string(detail.Type())),
				zap.Any("panic", r))
		}
	}()

	notification := &domain.Notification{
		ID:     a.newID(),
		Time:   a.now(),
		Origin: origin,
		Active: true,
		Detail: detail,
	}
	if err := tx.CreateNotification(notification); err != nil {
		a.logger.Warn("failed to create notification",
			zap.Int("restaurant_id", tx.RestaurantID()),
			zap.Int("origin", origin),
			zap.String("type", string(detail.Type())),
			zap.Error(err))
	}
}

func (a *Aggregator) publish(tx *restaurant.Tx, payload restaurant.Event) {
	a.mu.RLock()
	subscribers := append([]subscription(nil), a.subscribers...)
	a.mu.RUnlock()

	ev := Event{RestaurantID: tx.RestaurantID(), Payload: payload, Catalog: tx}
	for _, sub := range subscribers {
		a.deliver(sub.subscriber, ev)
	}
}

func (a *Aggregator) deliver(sub Subscriber, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("subscriber panicked",
				zap.Int("restaurant_id", ev.RestaurantID),
				zap.String("event", ev.Name()),
				zap.Any("panic", r))
		}
	}()
	sub.HandleRestaurantEvent(ev)
}
