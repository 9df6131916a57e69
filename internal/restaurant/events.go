package restaurant

import "overcooked-live/internal/domain"

const (
	EventNewOrder                 = "newOrder"
	EventOrderStatusUpdate        = "orderStatusUpdate"
	EventOrderItemStatusUpdate    = "orderItemStatusUpdate"
	EventNotificationStatusUpdate = "notificationStatusUpdate"
	EventNewNotification          = "newNotification"
	EventFinishedOrCancelledOrder = "finishedOrCancelledOrder"
	EventRestaurantDataUpdated    = "restaurantDataUpdated"
	EventAssistanceRequest        = "assistanceRequest"
	EventCheckRequest             = "checkRequest"
)

// Event is a domain event emitted by a Store. Payloads are snapshots owned by
// the receiver.
type Event interface {
	EventName() string
}

type NewOrder struct {
	Order *domain.Order
}

type OrderStatusUpdate struct {
	Order      *domain.Order
	NewStatus  domain.OrderStatus
	PrevStatus domain.OrderStatus
}

type OrderItemStatusUpdate struct {
	Order      *domain.Order
	Item       domain.OrderItem
	NewStatus  domain.OrderItemStatus
	PrevStatus domain.OrderItemStatus
}

type NotificationStatusUpdate struct {
	Notification *domain.Notification
}

type NewNotification struct {
	Notification *domain.Notification
}

type FinishedOrCancelledOrder struct {
	Order *domain.Order
}

type RestaurantDataUpdated struct{}

type AssistanceRequest struct {
	TableID int
}

type CheckRequest struct {
	TableID       int
	PaymentMethod domain.PaymentMethod
}

func (NewOrder) EventName() string                 { return EventNewOrder }
func (OrderStatusUpdate) EventName() string        { return EventOrderStatusUpdate }
func (OrderItemStatusUpdate) EventName() string    { return EventOrderItemStatusUpdate }
func (NotificationStatusUpdate) EventName() string { return EventNotificationStatusUpdate }
func (NewNotification) EventName() string          { return EventNewNotification }
func (FinishedOrCancelledOrder) EventName() string { return EventFinishedOrCancelledOrder }
func (RestaurantDataUpdated) EventName() string    { return EventRestaurantDataUpdated }
func (AssistanceRequest) EventName() string        { return EventAssistanceRequest }
func (CheckRequest) EventName() string             { return EventCheckRequest }

// Listener receives every event of a Store. tx is only valid until HandleEvent returns.
type Listener interface {
	HandleEvent(tx *Tx, ev Event)
}

type ListenerFunc func(tx *Tx, ev Event)

func (f ListenerFunc) HandleEvent(tx *Tx, ev Event) { f(tx, ev) }
