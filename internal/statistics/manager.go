package statistics

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"overcooked-live/internal/aggregator"
	"overcooked-live/internal/domain"
	"overcooked-live/internal/restaurant"

	"go.uber.org/zap"
)

// Manager keeps one Statistics per restaurant and feeds it from aggregator events.
type Manager struct {
	logger *zap.Logger
	frames []TimeframeConfig
	now    func() time.Time

	mu          sync.RWMutex
	restaurants map[int]*Statistics
}

var _ aggregator.Subscriber = (*Manager)(nil)

func NewManager(logger *zap.Logger, stores []*restaurant.Store, frames []TimeframeConfig, now func() time.Time) *Manager {
	if len(frames) == 0 {
		frames = DefaultTimeframes
	}
	if now == nil {
		now = time.Now
	}
	m := &Manager{
		logger:      logger.Named("statistics"),
		frames:      frames,
		now:         now,
		restaurants: make(map[int]*Statistics, len(stores)),
	}
	for _, store := range stores {
		m.Track(store)
	}
	return m
}

// Track starts a fresh set of buckets for store seeded with its dish titles.
func (m *Manager) Track(store *restaurant.Store) {
	dishes := store.Dishes()
	titles := make([]string, 0, len(dishes))
	for _, dish := range dishes {
		titles = append(titles, dish.Params.Title)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.restaurants[store.ID()] = NewStatistics(titles, m.frames, m.now())
}

func (m *Manager) statistics(restaurantID int) (*Statistics, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats, ok := m.restaurants[restaurantID]
	return stats, ok
}

func (m *Manager) HandleRestaurantEvent(ev aggregator.Event) {
	stats, ok := m.statistics(ev.RestaurantID)
	if !ok {
		switch ev.Payload.(type) {
		case restaurant.FinishedOrCancelledOrder, restaurant.AssistanceRequest, restaurant.CheckRequest:
			m.logger.Debug("event for untracked restaurant",
				zap.Int("restaurant_id", ev.RestaurantID),
				zap.String("event", ev.Name()))
		}
		return
	}

	switch payload := ev.Payload.(type) {
	case restaurant.FinishedOrCancelledOrder:
		stats.OnOrderFinish(payload.Order, ev.Catalog)
	case restaurant.AssistanceRequest:
		stats.OnAssistanceRequest()
	case restaurant.CheckRequest:
		stats.OnCheckRequest(payload.PaymentMethod)
	}
}

// Snapshot returns the buckets of a restaurant.
func (m *Manager) Snapshot(restaurantID int) ([]Timeframe, error) {
	stats, ok := m.statistics(restaurantID)
	if !ok {
		return nil, fmt.Errorf("%w: statistics for restaurant %d", domain.ErrNotFound, restaurantID)
	}
	return stats.Snapshot(), nil
}

func (m *Manager) Timeframe(restaurantID int, name string) (Timeframe, error) {
	stats, ok := m.statistics(restaurantID)
	if !ok {
		return Timeframe{}, fmt.Errorf("%w: statistics for restaurant %d", domain.ErrNotFound, restaurantID)
	}
	tf, ok := stats.Timeframe(name)
	if !ok {
		return Timeframe{}, fmt.Errorf("%w: timeframe %q", domain.ErrNotFound, name)
	}
	return tf, nil
}

// Rollover resets elapsed buckets of every restaurant.
func (m *Manager) Rollover(now time.Time) {
	m.mu.RLock()
	ids := make([]int, 0, len(m.restaurants))
	for id := range m.restaurants {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	sort.Ints(ids)

	for _, id := range ids {
		stats, ok := m.statistics(id)
		if !ok {
			continue
		}
		for _, closed := range stats.Rollover(now) {
			m.logger.Info("statistics timeframe rolled over",
				zap.Int("restaurant_id", id),
				zap.String("timeframe", closed.Name),
				zap.Int("orders_total", closed.Orders.Total),
				zap.Float64("turnover", closed.Orders.TotalTurnover))
		}
	}
}
