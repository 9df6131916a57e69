// Package pricing computes item and order price breakdowns from catalog data.
package pricing

import (
	"overcooked-live/internal/domain"

	"github.com/shopspring/decimal"
)

// Catalog resolves dishes by id.
type Catalog interface {
	Dish(id int) (*domain.Dish, bool)
}

type components struct {
	price    decimal.Decimal
	discount decimal.Decimal
	extras   decimal.Decimal
}

func (c components) add(other components) components {
	return components{
		price:    c.price.Add(other.price),
		discount: c.discount.Add(other.discount),
		extras:   c.extras.Add(other.extras),
	}
}

func (c components) breakdown() domain.PriceBreakdown {
	final := c.price.Add(c.extras).Sub(c.discount)
	return domain.PriceBreakdown{
		Price:      c.price.InexactFloat64(),
		Discount:   c.discount.InexactFloat64(),
		Extras:     c.extras.InexactFloat64(),
		FinalPrice: final.InexactFloat64(),
	}
}

func itemComponents(dish *domain.Dish, item domain.OrderItem) components {
	if dish == nil || item.Status == domain.ItemCancelled {
		return components{}
	}

	amount := decimal.NewFromInt(int64(item.Amount))
	extras := decimal.Zero
	for _, added := range item.Dish.AddedOptions {
		if option, ok := dish.Option(added.Option); ok {
			extras = extras.Add(decimal.NewFromFloat(option.Price))
		}
	}

	return components{
		price:    decimal.NewFromFloat(dish.Price).Mul(amount),
		discount: decimal.NewFromFloat(dish.Discount).Mul(amount),
		extras:   extras,
	}
}

// ItemTotal prices a single order item. A nil dish or a cancelled item yields
// an all-zero breakdown. Option prices are taken from the dish, never from the item.
func ItemTotal(dish *domain.Dish, item domain.OrderItem) domain.PriceBreakdown {
	return itemComponents(dish, item).breakdown()
}

// OrderTotal sums the components of every item and combines them once.
func OrderTotal(catalog Catalog, order *domain.Order) domain.PriceBreakdown {
	total := components{}
	for _, item := range order.Items {
		dish, _ := catalog.Dish(item.Dish.DishID)
		total = total.add(itemComponents(dish, item))
	}
	return total.breakdown()
}

// Reprice refreshes the price of every item and of the order itself.
func Reprice(catalog Catalog, order *domain.Order) {
	for i := range order.Items {
		dish, _ := catalog.Dish(order.Items[i].Dish.DishID)
		price := ItemTotal(dish, order.Items[i])
		order.Items[i].Price = &price
	}
	price := OrderTotal(catalog, order)
	order.Price = &price
}
