package service

import (
	"context"
	"sort"
	"time"

	"overcooked-live/internal/statistics"
	"overcooked-live/internal/storage"

	"go.uber.org/zap"
)

const (
	DefaultTopDishesLimit = 10
	dailyTimeframe        = "daily"
)

// PopularityReader is the shared per day dish popularity store.
type PopularityReader interface {
	TopDishes(ctx context.Context, restaurantID int, day time.Time, limit int) ([]storage.DishPopularity, error)
}

type TimeframeReader interface {
	Timeframe(restaurantID int, name string) (statistics.Timeframe, error)
}

type AnalyticsInterface interface {
	TopDishes(ctx context.Context, restaurantID, limit int) ([]storage.DishPopularity, error)
}

type AnalyticsService struct {
	logger     *zap.Logger
	popularity PopularityReader
	timeframes TimeframeReader
	now        func() time.Time
}

var _ AnalyticsInterface = (*AnalyticsService)(nil)

// NewAnalyticsService builds the top dishes reader. popularity may be nil, in
// which case the in-memory daily bucket answers every request.
func NewAnalyticsService(logger *zap.Logger, popularity PopularityReader, timeframes TimeframeReader, now func() time.Time) *AnalyticsService {
	if now == nil {
		now = time.Now
	}
	return &AnalyticsService{
		logger:     logger.Named("analytics"),
		popularity: popularity,
		timeframes: timeframes,
		now:        now,
	}
}

func (s *AnalyticsService) TopDishes(ctx context.Context, restaurantID, limit int) ([]storage.DishPopularity, error) {
	if limit <= 0 {
		limit = DefaultTopDishesLimit
	}

	if s.popularity != nil {
		dishes, err := s.popularity.TopDishes(ctx, restaurantID, s.now(), limit)
		switch {
		case err != nil:
			s.logger.Warn("popularity store unavailable, using in-memory statistics",
				zap.Int("restaurant_id", restaurantID), zap.Error(err))
		case len(dishes) > 0:
			return dishes, nil
		}
	}

	tf, err := s.timeframes.Timeframe(restaurantID, dailyTimeframe)
	if err != nil {
		return nil, err
	}
	return rankDishes(tf.Dishes, limit), nil
}

func rankDishes(amounts map[string]int, limit int) []storage.DishPopularity {
	dishes := make([]storage.DishPopularity, 0, len(amounts))
	for title, amount := range amounts {
		if amount > 0 {
			dishes = append(dishes, storage.DishPopularity{Title: title, Amount: amount})
		}
	}
	sort.Slice(dishes, func(i, j int) bool {
		if dishes[i].Amount != dishes[j].Amount {
			return dishes[i].Amount > dishes[j].Amount
		}
		return dishes[i].Title < dishes[j].Title
	})
	if len(dishes) > limit {
		dishes = dishes[:limit]
	}
	return dishes
}
