package gateway

import (
	"fmt"

	"overcooked-live/internal/aggregator"
	"overcooked-live/internal/domain"
	"overcooked-live/internal/restaurant"
)

const (
	RoomWaiter  = "waiter"
	RoomKitchen = "kitchen"
	RoomAdmin   = "admin"
	RoomUsers   = "users"
)

const (
	PushNewOrderCreated          = "newOrderCreated"
	PushOrderUpdate              = "orderUpdate"
	PushOrderItemStatusUpdate    = "orderItemStatusUpdate"
	PushNewNotification          = "newNotification"
	PushNotificationStatusUpdate = "notificationStatusUpdate"
	PushTableSessionClear        = "tableSessionClear"
	PushRestaurantDataUpdated    = "restaurantDataUpdated"
)

func RoomName(restaurantID int, room string) string {
	return fmt.Sprintf("%d_%s", restaurantID, room)
}

func TableRoom(tableID int) string {
	return fmt.Sprintf("table_%d", tableID)
}

// Delivery is one push sent to the union of Rooms.
type Delivery struct {
	Rooms []string
	Event string
	Data  any
}

type ItemStatusPush struct {
	DishID int                    `json:"dish_id"`
	Status domain.OrderItemStatus `json:"status"`
}

// Route decides which rooms see an aggregator event and under which name.
func Route(ev aggregator.Event) []Delivery {
	rid := ev.RestaurantID
	rooms := func(names ...string) []string {
		out := make([]string, 0, len(names))
		for _, name := range names {
			out = append(out, RoomName(rid, name))
		}
		return out
	}
	orderRooms := func(order *domain.Order) []string {
		return rooms(RoomWaiter, RoomKitchen, TableRoom(order.Origin), RoomAdmin)
	}

	switch payload := ev.Payload.(type) {
	case restaurant.NewOrder:
		return []Delivery{{Rooms: orderRooms(payload.Order), Event: PushNewOrderCreated, Data: payload.Order}}
	case restaurant.OrderStatusUpdate:
		return []Delivery{{Rooms: orderRooms(payload.Order), Event: PushOrderUpdate, Data: payload.Order}}
	case restaurant.OrderItemStatusUpdate:
		return []Delivery{
			{Rooms: orderRooms(payload.Order), Event: PushOrderUpdate, Data: payload.Order},
			{
				Rooms: rooms(TableRoom(payload.Order.Origin)),
				Event: PushOrderItemStatusUpdate,
				Data:  ItemStatusPush{DishID: payload.Item.Dish.DishID, Status: payload.Item.Status},
			},
		}
	case restaurant.NewNotification:
		return []Delivery{{Rooms: rooms(RoomWaiter), Event: PushNewNotification, Data: payload.Notification}}
	case restaurant.NotificationStatusUpdate:
		return []Delivery{{Rooms: rooms(RoomWaiter), Event: PushNotificationStatusUpdate, Data: payload.Notification}}
	case restaurant.FinishedOrCancelledOrder:
		return []Delivery{{Rooms: rooms(TableRoom(payload.Order.Origin), RoomAdmin), Event: PushTableSessionClear}}
	case restaurant.RestaurantDataUpdated:
		return []Delivery{{Rooms: rooms(RoomUsers, RoomWaiter, RoomKitchen, RoomAdmin), Event: PushRestaurantDataUpdated}}
	}
	return nil
}
