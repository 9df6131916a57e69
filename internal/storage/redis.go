package storage

import (
	"context"
	"fmt"
	"time"

	"overcooked-live/internal/outbox"
	"overcooked-live/internal/restaurant"

	"github.com/redis/go-redis/v9"
)

const dailyAnalyticsTTL = 7 * 24 * time.Hour

type RedisStatsMirror struct {
	Client *redis.Client
	TTL    time.Duration
}

var _ outbox.StatsMirror = (*RedisStatsMirror)(nil)

func NewRedisStatsMirror(client *redis.Client, ttl time.Duration) *RedisStatsMirror {
	return &RedisStatsMirror{Client: client, TTL: ttl}
}

func StatsKey(restaurantID int, timeframe string) string {
	return fmt.Sprintf("stats:%d:%s", restaurantID, timeframe)
}

func DailyAnalyticsKey(restaurantID int, day time.Time) string {
	return fmt.Sprintf("analytics:daily:%s:%d", day.Format("2006-01-02"), restaurantID)
}

// MirrorStats replaces the timeframe hashes of the restaurant and, for
// closed orders, bumps the per day dish popularity set.
func (c *RedisStatsMirror) MirrorStats(ctx context.Context, env outbox.Envelope) error {
	pipe := c.Client.TxPipeline()

	for _, tf := range env.Stats {
		key := StatsKey(env.RestaurantID, tf.Name)
		fields := map[string]any{
			"start_time":          tf.StartTime.Unix(),
			"reset_interval":      int64(tf.ResetInterval / time.Second),
			"orders_finished":     tf.Orders.Finished,
			"orders_cancelled":    tf.Orders.Cancelled,
			"orders_total":        tf.Orders.Total,
			"orders_total_items":  tf.Orders.TotalItems,
			"orders_turnover":     tf.Orders.TotalTurnover,
			"assistance_requests": tf.Notifications.AssistanceRequests,
			"cash_check_requests": tf.Notifications.CashCheckRequests,
			"card_check_requests": tf.Notifications.CardCheckRequests,
			"last_updated":        env.OccurredAt.Unix(),
		}
		for title, amount := range tf.Dishes {
			fields["dish:"+title] = amount
		}
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fields)
		if c.TTL > 0 {
			pipe.Expire(ctx, key, c.TTL)
		}
	}

	if env.Event == restaurant.EventFinishedOrCancelledOrder {
		dailyKey := DailyAnalyticsKey(env.RestaurantID, env.OccurredAt)
		for title, amount := range env.DishAmounts() {
			pipe.ZIncrBy(ctx, dailyKey, float64(amount), title)
		}
		pipe.Expire(ctx, dailyKey, dailyAnalyticsTTL)
	}

	_, err := pipe.Exec(ctx)
	return err
}

type DishPopularity struct {
	Title  string `json:"title"`
	Amount int    `json:"amount"`
}

// TopDishes reads the most ordered dishes of day, highest first.
func (c *RedisStatsMirror) TopDishes(ctx context.Context, restaurantID int, day time.Time, limit int) ([]DishPopularity, error) {
	if limit <= 0 {
		return nil, nil
	}
	res, err := c.Client.ZRevRangeWithScores(ctx, DailyAnalyticsKey(restaurantID, day), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	dishes := make([]DishPopularity, 0, len(res))
	for _, z := range res {
		title, ok := z.Member.(string)
		if !ok {
			continue
		}
		dishes = append(dishes, DishPopularity{Title: title, Amount: int(z.Score)})
	}
	return dishes, nil
}
