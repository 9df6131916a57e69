// Package statistics accumulates per restaurant activity counters in named
// timeframe buckets.
package statistics

import (
	"maps"
	"sync"
	"time"

	"overcooked-live/internal/domain"

	"github.com/shopspring/decimal"
)

type TimeframeConfig struct {
	Name          string        `mapstructure:"name"`
	ResetInterval time.Duration `mapstructure:"reset_interval"`
}

var DefaultTimeframes = []TimeframeConfig{
	{Name: "hourly", ResetInterval: time.Hour},
	{Name: "daily", ResetInterval: 24 * time.Hour},
}

type OrderCounters struct {
	Finished      int     `json:"finished"`
	Cancelled     int     `json:"cancelled"`
	Total         int     `json:"total"`
	TotalItems    int     `json:"total_items"`
	TotalTurnover float64 `json:"total_turnover"`
}

type NotificationCounters struct {
	AssistanceRequests int `json:"assistance_requests"`
	CashCheckRequests  int `json:"cash_check_requests"`
	CardCheckRequests  int `json:"card_check_requests"`
}

// Timeframe is a snapshot of one bucket. ResetInterval is encoded in nanoseconds.
type Timeframe struct {
	Name          string               `json:"timeframe"`
	StartTime     time.Time            `json:"start_time"`
	ResetInterval time.Duration        `json:"reset_interval"`
	Orders        OrderCounters        `json:"orders"`
	Notifications NotificationCounters `json:"notifications"`
	Dishes        map[string]int       `json:"dishes"`
}

type bucket struct {
	Timeframe
	turnover decimal.Decimal
}

func (b *bucket) reset(start time.Time, titles map[string]struct{}) {
	b.StartTime = start
	b.Orders = OrderCounters{}
	b.Notifications = NotificationCounters{}
	b.turnover = decimal.Zero
	b.Dishes = make(map[string]int, len(titles))
	for title := range titles {
		b.Dishes[title] = 0
	}
}

func (b *bucket) snapshot() Timeframe {
	tf := b.Timeframe
	tf.Orders.TotalTurnover = b.turnover.InexactFloat64()
	tf.Dishes = maps.Clone(b.Dishes)
	return tf
}

// Catalog resolves the current title of a dish.
type Catalog interface {
	Dish(id int) (*domain.Dish, bool)
}

// Statistics holds the buckets of one restaurant.
type Statistics struct {
	mu      sync.Mutex
	titles  map[string]struct{}
	buckets []*bucket
}

func NewStatistics(dishTitles []string, frames []TimeframeConfig, now time.Time) *Statistics {
	s := &Statistics{titles: make(map[string]struct{}, len(dishTitles))}
	for _, title := range dishTitles {
		s.titles[title] = struct{}{}
	}
	for _, frame := range frames {
		b := &bucket{Timeframe: Timeframe{Name: frame.Name, ResetInterval: frame.ResetInterval}}
		b.reset(now, s.titles)
		s.buckets = append(s.buckets, b)
	}
	return s
}

func (s *Statistics) OnOrderFinish(order *domain.Order, catalog Catalog) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turnover := decimal.Zero
	if order.Status == domain.OrderFinished && order.Price != nil {
		turnover = decimal.NewFromFloat(order.Price.FinalPrice)
	}

	titles := make([]string, len(order.Items))
	for i, item := range order.Items {
		if dish, ok := catalog.Dish(item.Dish.DishID); ok {
			titles[i] = dish.Params.Title
			s.titles[titles[i]] = struct{}{}
		}
	}

	for _, b := range s.buckets {
		b.Orders.Total++
		switch order.Status {
		case domain.OrderFinished:
			b.Orders.Finished++
			b.turnover = b.turnover.Add(turnover)
		case domain.OrderCancelled:
			b.Orders.Cancelled++
		}

		for i, item := range order.Items {
			b.Orders.TotalItems += item.Amount
			if titles[i] != "" {
				b.Dishes[titles[i]] += item.Amount
			}
		}
	}
}

func (s *Statistics) OnAssistanceRequest() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.buckets {
		b.Notifications.AssistanceRequests++
	}
}

func (s *Statistics) OnCheckRequest(method domain.PaymentMethod) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.buckets {
		switch method {
		case domain.PaymentCash:
			b.Notifications.CashCheckRequests++
		case domain.PaymentCard:
			b.Notifications.CardCheckRequests++
		}
	}
}

func (s *Statistics) Snapshot() []Timeframe {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Timeframe, 0, len(s.buckets))
	for _, b := range s.buckets {
		out = append(out, b.snapshot())
	}
	return out
}

// Timeframe returns a snapshot of the named bucket.
func (s *Statistics) Timeframe(name string) (Timeframe, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.buckets {
		if b.Name == name {
			return b.snapshot(), true
		}
	}
	return Timeframe{}, false
}

// Rollover resets every bucket whose interval has elapsed at now and returns
// the final snapshots of the reset buckets.
func (s *Statistics) Rollover(now time.Time) []Timeframe {
	s.mu.Lock()
	defer s.mu.Unlock()

	var closed []Timeframe
	for _, b := range s.buckets {
		if b.ResetInterval <= 0 || now.Before(b.StartTime.Add(b.ResetInterval)) {
			continue
		}
		closed = append(closed, b.snapshot())
		b.reset(now, s.titles)
	}
	return closed
}
