package pricing_test

import (
	"testing"

	"overcooked-live/internal/domain"
	"overcooked-live/internal/pricing"

	"github.com/stretchr/testify/assert"
)

type catalog map[int]*domain.Dish

func (c catalog) Dish(id int) (*domain.Dish, bool) {
	dish, ok := c[id]
	return dish, ok
}

func burger() *domain.Dish {
	return &domain.Dish{
		ID:       0,
		Price:    10,
		Discount: 1,
		Params: domain.DishParams{
			Title: "Burger",
			Options: []domain.DishOption{
				{Option: "Extra", Price: 2, Enabled: true},
				{Option: "Cheese", Price: 0.7, Enabled: true},
			},
		},
	}
}

func TestItemTotal(t *testing.T) {
	tests := []struct {
		name     string
		dish     *domain.Dish
		item     domain.OrderItem
		expected domain.PriceBreakdown
	}{
		{
			name: "amount_and_option",
			dish: burger(),
			item: domain.OrderItem{
				Amount: 2,
				Status: domain.ItemInit,
				Dish:   domain.CustomizedDish{AddedOptions: []domain.DishOption{{Option: "Extra"}}},
			},
			expected: domain.PriceBreakdown{Price: 20, Discount: 2, Extras: 2, FinalPrice: 20},
		},
		{
			name: "client_option_price_ignored",
			dish: burger(),
			item: domain.OrderItem{
				Amount: 1,
				Dish:   domain.CustomizedDish{AddedOptions: []domain.DishOption{{Option: "Extra", Price: 100}}},
			},
			expected: domain.PriceBreakdown{Price: 10, Discount: 1, Extras: 2, FinalPrice: 11},
		},
		{
			name: "removed_option_contributes_nothing",
			dish: burger(),
			item: domain.OrderItem{
				Amount: 1,
				Dish:   domain.CustomizedDish{AddedOptions: []domain.DishOption{{Option: "Bacon", Price: 3}}},
			},
			expected: domain.PriceBreakdown{Price: 10, Discount: 1, Extras: 0, FinalPrice: 9},
		},
		{
			name: "cancelled_item",
			dish: burger(),
			item: domain.OrderItem{
				Amount: 3,
				Status: domain.ItemCancelled,
				Dish:   domain.CustomizedDish{AddedOptions: []domain.DishOption{{Option: "Extra"}}},
			},
			expected: domain.PriceBreakdown{},
		},
		{
			name:     "missing_dish",
			dish:     nil,
			item:     domain.OrderItem{Amount: 3},
			expected: domain.PriceBreakdown{},
		},
		{
			name:     "negative_final_price_kept",
			dish:     &domain.Dish{Price: 1, Discount: 5},
			item:     domain.OrderItem{Amount: 1},
			expected: domain.PriceBreakdown{Price: 1, Discount: 5, Extras: 0, FinalPrice: -4},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, pricing.ItemTotal(testCase.dish, testCase.item))
		})
	}
}

func TestOrderTotal_SumsComponents(t *testing.T) {
	dishes := catalog{0: burger()}
	order := &domain.Order{Items: []domain.OrderItem{
		{Amount: 3, Dish: domain.CustomizedDish{DishID: 0, AddedOptions: []domain.DishOption{{Option: "Cheese"}}}},
		{Amount: 1, Dish: domain.CustomizedDish{DishID: 0, AddedOptions: []domain.DishOption{{Option: "Cheese"}}}},
		{Amount: 2, Status: domain.ItemCancelled, Dish: domain.CustomizedDish{DishID: 0}},
		{Amount: 1, Dish: domain.CustomizedDish{DishID: 42}},
	}}

	total := pricing.OrderTotal(dishes, order)

	var price, discount, extras float64
	for _, item := range order.Items {
		dish, _ := dishes.Dish(item.Dish.DishID)
		itemPrice := pricing.ItemTotal(dish, item)
		price += itemPrice.Price
		discount += itemPrice.Discount
		extras += itemPrice.Extras
	}

	assert.Equal(t, 40.0, total.Price)
	assert.Equal(t, 4.0, total.Discount)
	assert.Equal(t, 1.4, total.Extras)
	assert.Equal(t, 37.4, total.FinalPrice)
	assert.InDelta(t, price+extras-discount, total.FinalPrice, 1e-9)
}

func TestReprice(t *testing.T) {
	dishes := catalog{0: burger()}
	order := &domain.Order{Items: []domain.OrderItem{
		{ID: "a", Amount: 2, Dish: domain.CustomizedDish{DishID: 0, AddedOptions: []domain.DishOption{{Option: "Extra"}}}},
		{ID: "b", Amount: 1, Status: domain.ItemCancelled, Dish: domain.CustomizedDish{DishID: 0}},
	}}

	pricing.Reprice(dishes, order)

	if assert.NotNil(t, order.Items[0].Price) && assert.NotNil(t, order.Items[1].Price) {
		assert.Equal(t, 20.0, order.Items[0].Price.FinalPrice)
		assert.Equal(t, domain.PriceBreakdown{}, *order.Items[1].Price)
	}
	if assert.NotNil(t, order.Price) {
		assert.Equal(t, 20.0, order.Price.FinalPrice)
	}
}
