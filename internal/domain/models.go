package domain

import "time"

type Ingredient struct {
	Name      string `json:"name"`
	Removable bool   `json:"removable"`
}

type DishOption struct {
	Option  string  `json:"option"`
	Price   float64 `json:"price"`
	Enabled bool    `json:"enabled"`
}

type DishParams struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Quantity    string       `json:"quantity"`
	Ingredients []Ingredient `json:"ingredients"`
	Options     []DishOption `json:"options"`
	Available   bool         `json:"available"`
}

type Dish struct {
	ID         int        `json:"id"`
	CategoryID int        `json:"category_id"`
	Image      string     `json:"image"`
	Price      float64    `json:"price"`
	Discount   float64    `json:"discount"`
	Params     DishParams `json:"params"`
}

// Option returns the dish option with the given name.
func (d *Dish) Option(name string) (DishOption, bool) {
	for _, option := range d.Params.Options {
		if option.Option == name {
			return option, true
		}
	}
	return DishOption{}, false
}

// Ingredient returns the dish ingredient with the given name.
func (d *Dish) Ingredient(name string) (Ingredient, bool) {
	for _, ingredient := range d.Params.Ingredients {
		if ingredient.Name == name {
			return ingredient, true
		}
	}
	return Ingredient{}, false
}

func (d Dish) Clone() Dish {
	clone := d
	clone.Params.Ingredients = append([]Ingredient(nil), d.Params.Ingredients...)
	clone.Params.Options = append([]DishOption(nil), d.Params.Options...)
	return clone
}

type Category struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

type Table struct {
	ID           int   `json:"id"`
	ActiveOrders []int `json:"active_orders"`
}

func (t Table) Clone() Table {
	return Table{ID: t.ID, ActiveOrders: append([]int{}, t.ActiveOrders...)}
}

type PriceBreakdown struct {
	Price      float64 `json:"price"`
	Discount   float64 `json:"discount"`
	Extras     float64 `json:"extras"`
	FinalPrice float64 `json:"final_price"`
}

type CustomizedDish struct {
	DishID             int          `json:"dish_id"`
	RemovedIngredients []Ingredient `json:"removed_ingredients"`
	AddedOptions       []DishOption `json:"added_options"`
}

func (c CustomizedDish) Clone() CustomizedDish {
	return CustomizedDish{
		DishID:             c.DishID,
		RemovedIngredients: append([]Ingredient{}, c.RemovedIngredients...),
		AddedOptions:       append([]DishOption{}, c.AddedOptions...),
	}
}

type OrderItem struct {
	ID     string          `json:"id"`
	Dish   CustomizedDish  `json:"dish"`
	Amount int             `json:"amount"`
	Status OrderItemStatus `json:"status"`
	Price  *PriceBreakdown `json:"price"`
}

type Order struct {
	ID     int             `json:"id"`
	Time   time.Time       `json:"time"`
	Origin int             `json:"origin"`
	Status OrderStatus     `json:"status"`
	Note   string          `json:"note"`
	Items  []OrderItem     `json:"items"`
	Price  *PriceBreakdown `json:"price"`
}

// Item returns a pointer into the order's item list.
func (o *Order) Item(id string) (*OrderItem, bool) {
	for i := range o.Items {
		if o.Items[i].ID == id {
			return &o.Items[i], true
		}
	}
	return nil, false
}

func (o *Order) Clone() *Order {
	clone := *o
	clone.Items = make([]OrderItem, len(o.Items))
	for i, item := range o.Items {
		item.Dish = item.Dish.Clone()
		if item.Price != nil {
			price := *item.Price
			item.Price = &price
		}
		clone.Items[i] = item
	}
	if o.Price != nil {
		price := *o.Price
		clone.Price = &price
	}
	return &clone
}

// DraftOrderItem is a client supplied item. ID and Price are ignored by the store.
type DraftOrderItem struct {
	ID     string          `json:"id"`
	Dish   CustomizedDish  `json:"dish"`
	Amount int             `json:"amount"`
	Status OrderItemStatus `json:"status"`
}

type DraftOrder struct {
	Origin int              `json:"origin"`
	Status OrderStatus      `json:"status"`
	Note   string           `json:"note"`
	Items  []DraftOrderItem `json:"items"`
}

type Theme map[string]any

type Details struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Logo        string `json:"logo"`
}

// RestaurantData is the catalog block handed to clients on request.
type RestaurantData struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Logo        string     `json:"logo"`
	Theme       Theme      `json:"theme"`
	Dishes      []Dish     `json:"dishes"`
	Categories  []Category `json:"categories"`
	Tables      []Table    `json:"tables"`
}

// Seed is the construction input of a restaurant.
type Seed struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Logo        string     `json:"logo"`
	Theme       Theme      `json:"theme"`
	Dishes      []Dish     `json:"dishes"`
	Categories  []Category `json:"categories"`
	Tables      int        `json:"tables"`
}
