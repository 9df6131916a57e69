package service_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"overcooked-live/internal/domain"
	"overcooked-live/internal/service"
	"overcooked-live/internal/statistics"
	"overcooked-live/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type popularityReader struct {
	mock.Mock
}

func (m *popularityReader) TopDishes(ctx context.Context, restaurantID int, day time.Time, limit int) ([]storage.DishPopularity, error) {
	args := m.Called(ctx, restaurantID, day, limit)
	dishes, _ := args.Get(0).([]storage.DishPopularity)
	return dishes, args.Error(1)
}

type timeframeReader struct {
	mock.Mock
}

func (m *timeframeReader) Timeframe(restaurantID int, name string) (statistics.Timeframe, error) {
	args := m.Called(restaurantID, name)
	return args.Get(0).(statistics.Timeframe), args.Error(1)
}

func TestTableQRGenerator(t *testing.T) {
	generator := service.TableQRGenerator{BaseURL: "https://menu.example.com"}

	assert.Equal(t, "https://menu.example.com/?restaurant=2&table=5", generator.JoinURL(2, 5))

	png, err := generator.Generate(2, 5)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestAnalyticsService_TopDishes(t *testing.T) {
	ctx := context.Background()
	today := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	daily := statistics.Timeframe{Name: "daily", Dishes: map[string]int{"Soup": 1, "Burger": 3, "Salad": 0, "Pie": 1}}
	fromRedis := []storage.DishPopularity{{Title: "Burger", Amount: 12}}

	tests := []struct {
		name         string
		limit        int
		prepareMocks func(p *popularityReader, tf *timeframeReader)
		want         []storage.DishPopularity
		wantErr      error
	}{
		{
			name:  "redis_answers",
			limit: 3,
			prepareMocks: func(p *popularityReader, tf *timeframeReader) {
				p.On("TopDishes", ctx, 1, today, 3).Return(fromRedis, nil).Once()
			},
			want: fromRedis,
		},
		{
			name:  "redis_error_falls_back",
			limit: 2,
			prepareMocks: func(p *popularityReader, tf *timeframeReader) {
				p.On("TopDishes", ctx, 1, today, 2).Return(nil, errors.New("connection refused")).Once()
				tf.On("Timeframe", 1, "daily").Return(daily, nil).Once()
			},
			want: []storage.DishPopularity{{Title: "Burger", Amount: 3}, {Title: "Pie", Amount: 1}},
		},
		{
			name:  "redis_empty_falls_back_with_default_limit",
			limit: 0,
			prepareMocks: func(p *popularityReader, tf *timeframeReader) {
				p.On("TopDishes", ctx, 1, today, service.DefaultTopDishesLimit).Return(nil, nil).Once()
				tf.On("Timeframe", 1, "daily").Return(daily, nil).Once()
			},
			want: []storage.DishPopularity{{Title: "Burger", Amount: 3}, {Title: "Pie", Amount: 1}, {Title: "Soup", Amount: 1}},
		},
		{
			name:  "unknown_restaurant",
			limit: 3,
			prepareMocks: func(p *popularityReader, tf *timeframeReader) {
				p.On("TopDishes", ctx, 1, today, 3).Return(nil, nil).Once()
				tf.On("Timeframe", 1, "daily").Return(statistics.Timeframe{}, domain.ErrNotFound).Once()
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			popularity := &popularityReader{}
			timeframes := &timeframeReader{}
			testCase.prepareMocks(popularity, timeframes)
			svc := service.NewAnalyticsService(zap.NewNop(), popularity, timeframes, func() time.Time { return today })

			got, err := svc.TopDishes(ctx, 1, testCase.limit)

			if testCase.wantErr != nil {
				assert.ErrorIs(t, err, testCase.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, testCase.want, got)
			}
			popularity.AssertExpectations(t)
			timeframes.AssertExpectations(t)
		})
	}
}

func TestAnalyticsService_WithoutRedis(t *testing.T) {
	timeframes := &timeframeReader{}
	timeframes.On("Timeframe", 4, "daily").Return(statistics.Timeframe{Dishes: map[string]int{"Tea": 2}}, nil).Once()
	svc := service.NewAnalyticsService(zap.NewNop(), nil, timeframes, nil)

	got, err := svc.TopDishes(context.Background(), 4, 5)

	require.NoError(t, err)
	assert.Equal(t, []storage.DishPopularity{{Title: "Tea", Amount: 2}}, got)
}
