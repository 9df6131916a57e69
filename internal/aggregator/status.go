package aggregator

import "overcooked-live/internal/domain"

// DeriveStatus computes an order status from its item statuses. current is
// returned when no rule applies.
func DeriveStatus(current domain.OrderStatus, items []domain.OrderItem) domain.OrderStatus {
	if len(items) == 0 {
		return current
	}

	counts := make(map[domain.OrderItemStatus]int, len(items))
	for _, item := range items {
		counts[item.Status]++
	}

	switch {
	case counts[domain.ItemCancelled] == len(items):
		return domain.OrderCancelled
	case counts[domain.ItemInProgress] > 0:
		return domain.OrderInProgress
	case counts[domain.ItemDelivered] > 0 && counts[domain.ItemInit] == 0:
		return domain.OrderDelivered
	}
	return current
}
