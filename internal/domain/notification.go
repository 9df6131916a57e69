package domain

import (
	"encoding/json"
	"time"
)

type NotificationType string

const (
	NotificationNewOrder           NotificationType = "NEW_ORDER"
	NotificationReadyForDelivery   NotificationType = "READY_FOR_DELIVERY"
	NotificationOrderItemCancelled NotificationType = "ORDER_ITEM_CANCELLED"
	NotificationNeedAssistance     NotificationType = "NEED_ASSISTANCE"
	NotificationCheckRequested     NotificationType = "CHECK_REQUESTED"
)

// NotificationDetail carries exactly the fields a notification type needs.
type NotificationDetail interface {
	Type() NotificationType
}

type NewOrderDetail struct {
	OrderID int
}

func (NewOrderDetail) Type() NotificationType { return NotificationNewOrder }

type ReadyForDeliveryDetail struct {
	OrderID     int
	OrderItemID string
}

func (ReadyForDeliveryDetail) Type() NotificationType { return NotificationReadyForDelivery }

type ItemCancelledDetail struct {
	OrderID     int
	OrderItemID string
}

func (ItemCancelledDetail) Type() NotificationType { return NotificationOrderItemCancelled }

type AssistanceDetail struct{}

func (AssistanceDetail) Type() NotificationType { return NotificationNeedAssistance }

type CheckRequestedDetail struct {
	OrderIDs      []int
	PaymentMethod PaymentMethod
}

func (CheckRequestedDetail) Type() NotificationType { return NotificationCheckRequested }

type Notification struct {
	ID     string
	Time   time.Time
	Origin int
	Active bool
	Detail NotificationDetail
}

func (n *Notification) Type() NotificationType {
	if n.Detail == nil {
		return ""
	}
	return n.Detail.Type()
}

func (n *Notification) Clone() *Notification {
	clone := *n
	if detail, ok := n.Detail.(CheckRequestedDetail); ok {
		detail.OrderIDs = append([]int{}, detail.OrderIDs...)
		clone.Detail = detail
	}
	return &clone
}

type notificationExtraData struct {
	OrderIDs      []int         `json:"order_ids,omitempty"`
	OrderItemID   string        `json:"order_item_id,omitempty"`
	PaymentMethod PaymentMethod `json:"payment_method,omitempty"`
}

type notificationJSON struct {
	ID        string                `json:"id"`
	Time      time.Time             `json:"time"`
	Origin    int                   `json:"origin"`
	Type      NotificationType      `json:"type"`
	Active    bool                  `json:"active"`
	ExtraData notificationExtraData `json:"extra_data"`
}

// MarshalJSON flattens the detail into extra_data, leaving out the fields the
// type does not carry.
func (n Notification) MarshalJSON() ([]byte, error) {
	out := notificationJSON{
		ID:     n.ID,
		Time:   n.Time,
		Origin: n.Origin,
		Type:   n.Type(),
		Active: n.Active,
	}

	switch detail := n.Detail.(type) {
	case NewOrderDetail:
		out.ExtraData.OrderIDs = []int{detail.OrderID}
	case ReadyForDeliveryDetail:
		out.ExtraData.OrderIDs = []int{detail.OrderID}
		out.ExtraData.OrderItemID = detail.OrderItemID
	case ItemCancelledDetail:
		out.ExtraData.OrderIDs = []int{detail.OrderID}
		out.ExtraData.OrderItemID = detail.OrderItemID
	case CheckRequestedDetail:
		out.ExtraData.OrderIDs = detail.OrderIDs
		if out.ExtraData.OrderIDs == nil {
			out.ExtraData.OrderIDs = []int{}
		}
		out.ExtraData.PaymentMethod = detail.PaymentMethod
	}

	return json.Marshal(out)
}
