package domain

type OrderStatus string

const (
	OrderInit       OrderStatus = "INIT"
	OrderReceived   OrderStatus = "ORDER_RECEIVED"
	OrderInProgress OrderStatus = "IN_PROGRESS"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
	OrderFinished   OrderStatus = "FINISHED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderInit, OrderReceived, OrderInProgress, OrderDelivered, OrderCancelled, OrderFinished:
		return true
	}
	return false
}

// Terminal reports whether derived recompute must leave the status alone.
func (s OrderStatus) Terminal() bool {
	return s == OrderCancelled || s == OrderFinished
}

type OrderItemStatus string

const (
	ItemInit       OrderItemStatus = "INIT"
	ItemInProgress OrderItemStatus = "IN_PROGRESS"
	ItemPrepared   OrderItemStatus = "PREPARED"
	ItemDelivered  OrderItemStatus = "DELIVERED"
	ItemCancelled  OrderItemStatus = "CANCELLED"
)

func (s OrderItemStatus) Valid() bool {
	switch s {
	case ItemInit, ItemInProgress, ItemPrepared, ItemDelivered, ItemCancelled:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

func (p PaymentMethod) Valid() bool {
	return p == PaymentCash || p == PaymentCard
}
