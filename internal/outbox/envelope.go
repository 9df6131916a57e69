package outbox

import (
	"encoding/json"
	"time"

	"overcooked-live/internal/aggregator"
	"overcooked-live/internal/domain"
	"overcooked-live/internal/restaurant"
	"overcooked-live/internal/statistics"
)

// Envelope is an aggregator event detached from the store it came from.
type Envelope struct {
	Event        string          `json:"event"`
	RestaurantID int             `json:"restaurant_id"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Payload      json.RawMessage `json:"payload"`

	// Order is set for finishedOrCancelledOrder.
	Order *domain.Order `json:"-"`
	// DishTitles maps the dish ids of Order to their catalog titles.
	DishTitles map[int]string `json:"-"`
	// Stats is set for the events that move statistics counters.
	Stats []statistics.Timeframe `json:"-"`
}

// DishAmounts sums the item amounts of Order per dish title, counting items
// the same way the statistics buckets do.
func (e Envelope) DishAmounts() map[string]int {
	amounts := make(map[string]int)
	if e.Order == nil {
		return amounts
	}
	for _, item := range e.Order.Items {
		title, ok := e.DishTitles[item.Dish.DishID]
		if !ok {
			continue
		}
		amounts[title] += item.Amount
	}
	return amounts
}

type orderStatusPayload struct {
	Order      *domain.Order      `json:"order"`
	NewStatus  domain.OrderStatus `json:"new_status"`
	PrevStatus domain.OrderStatus `json:"prev_status"`
}

type orderItemStatusPayload struct {
	Order      *domain.Order          `json:"order"`
	Item       domain.OrderItem       `json:"item"`
	NewStatus  domain.OrderItemStatus `json:"new_status"`
	PrevStatus domain.OrderItemStatus `json:"prev_status"`
}

type tablePayload struct {
	TableID       int                  `json:"table_id"`
	PaymentMethod domain.PaymentMethod `json:"payment_method,omitempty"`
}

func wirePayload(ev restaurant.Event) any {
	switch ev := ev.(type) {
	case restaurant.NewOrder:
		return ev.Order
	case restaurant.OrderStatusUpdate:
		return orderStatusPayload{Order: ev.Order, NewStatus: ev.NewStatus, PrevStatus: ev.PrevStatus}
	case restaurant.OrderItemStatusUpdate:
		return orderItemStatusPayload{Order: ev.Order, Item: ev.Item, NewStatus: ev.NewStatus, PrevStatus: ev.PrevStatus}
	case restaurant.NewNotification:
		return ev.Notification
	case restaurant.NotificationStatusUpdate:
		return ev.Notification
	case restaurant.FinishedOrCancelledOrder:
		return ev.Order
	case restaurant.AssistanceRequest:
		return tablePayload{TableID: ev.TableID}
	case restaurant.CheckRequest:
		return tablePayload{TableID: ev.TableID, PaymentMethod: ev.PaymentMethod}
	}
	return struct{}{}
}

func tracksStatistics(ev restaurant.Event) bool {
	switch ev.(type) {
	case restaurant.FinishedOrCancelledOrder, restaurant.AssistanceRequest, restaurant.CheckRequest:
		return true
	}
	return false
}

// newEnvelope must run while ev is being dispatched since it reads ev.Catalog.
func newEnvelope(ev aggregator.Event, at time.Time, stats StatsProvider) (Envelope, error) {
	payload, err := json.Marshal(wirePayload(ev.Payload))
	if err != nil {
		return Envelope{}, err
	}

	env := Envelope{
		Event:        ev.Name(),
		RestaurantID: ev.RestaurantID,
		OccurredAt:   at,
		Payload:      payload,
	}

	if finished, ok := ev.Payload.(restaurant.FinishedOrCancelledOrder); ok {
		env.Order = finished.Order
		env.DishTitles = make(map[int]string)
		for _, item := range finished.Order.Items {
			if ev.Catalog == nil {
				break
			}
			if dish, ok := ev.Catalog.Dish(item.Dish.DishID); ok {
				env.DishTitles[dish.ID] = dish.Params.Title
			}
		}
	}

	if stats != nil && tracksStatistics(ev.Payload) {
		frames, err := stats.Snapshot(ev.RestaurantID)
		if err == nil {
			env.Stats = frames
		}
	}
	return env, nil
}
