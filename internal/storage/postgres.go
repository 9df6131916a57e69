package storage

import (
	"context"
	"database/sql"
	"fmt"

	"overcooked-live/internal/outbox"
)

const schema = `
CREATE TABLE IF NOT EXISTS archived_orders (
	restaurant_id INTEGER NOT NULL,
	order_id      INTEGER NOT NULL,
	origin        INTEGER NOT NULL,
	status        TEXT NOT NULL,
	note          TEXT NOT NULL DEFAULT '',
	price         NUMERIC(12, 2) NOT NULL DEFAULT 0,
	discount      NUMERIC(12, 2) NOT NULL DEFAULT 0,
	extras        NUMERIC(12, 2) NOT NULL DEFAULT 0,
	final_price   NUMERIC(12, 2) NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ NOT NULL,
	archived_at   TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (restaurant_id, order_id, created_at)
);

CREATE TABLE IF NOT EXISTS archived_order_items (
	restaurant_id INTEGER NOT NULL,
	order_id      INTEGER NOT NULL,
	item_id       TEXT NOT NULL,
	dish_id       INTEGER NOT NULL,
	dish_title    TEXT NOT NULL DEFAULT '',
	amount        INTEGER NOT NULL,
	status        TEXT NOT NULL,
	final_price   NUMERIC(12, 2) NOT NULL DEFAULT 0,
	PRIMARY KEY (restaurant_id, item_id)
);
`

// PostgresArchive keeps finished and cancelled orders after they leave memory.
type PostgresArchive struct {
	DB *sql.DB
}

var _ outbox.Archive = (*PostgresArchive)(nil)

func NewPostgresArchive(db *sql.DB) *PostgresArchive {
	return &PostgresArchive{DB: db}
}

func (r *PostgresArchive) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, schema)
	return err
}

func (r *PostgresArchive) ArchiveOrder(ctx context.Context, env outbox.Envelope) error {
	order := env.Order
	if order == nil {
		return fmt.Errorf("archive %s: envelope has no order", env.Event)
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var price, discount, extras, final float64
	if order.Price != nil {
		price, discount, extras, final = order.Price.Price, order.Price.Discount, order.Price.Extras, order.Price.FinalPrice
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO archived_orders
			(restaurant_id, order_id, origin, status, note, price, discount, extras, final_price, created_at, archived_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT DO NOTHING
	`, env.RestaurantID, order.ID, order.Origin, string(order.Status), order.Note,
		price, discount, extras, final, order.Time, env.OccurredAt); err != nil {
		return fmt.Errorf("insert order %d: %w", order.ID, err)
	}

	for _, item := range order.Items {
		var itemFinal float64
		if item.Price != nil {
			itemFinal = item.Price.FinalPrice
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO archived_order_items
				(restaurant_id, order_id, item_id, dish_id, dish_title, amount, status, final_price)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT DO NOTHING
		`, env.RestaurantID, order.ID, item.ID, item.Dish.DishID, env.DishTitles[item.Dish.DishID],
			item.Amount, string(item.Status), itemFinal); err != nil {
			return fmt.Errorf("insert item %s: %w", item.ID, err)
		}
	}

	return tx.Commit()
}

// ArchivedOrder is a row of archived_orders.
type ArchivedOrder struct {
	OrderID    int     `json:"order_id"`
	Origin     int     `json:"origin"`
	Status     string  `json:"status"`
	FinalPrice float64 `json:"final_price"`
}

func (r *PostgresArchive) ListArchivedOrders(ctx context.Context, restaurantID, limit int) ([]ArchivedOrder, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT order_id, origin, status, final_price
		FROM archived_orders
		WHERE restaurant_id = $1
		ORDER BY archived_at DESC
		LIMIT $2
	`, restaurantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []ArchivedOrder
	for rows.Next() {
		var order ArchivedOrder
		if err := rows.Scan(&order.OrderID, &order.Origin, &order.Status, &order.FinalPrice); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}
