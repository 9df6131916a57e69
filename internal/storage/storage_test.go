package storage_test

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"testing"
	"time"

	"overcooked-live/internal/domain"
	"overcooked-live/internal/mocks"
	"overcooked-live/internal/outbox"
	"overcooked-live/internal/restaurant"
	"overcooked-live/internal/statistics"
	"overcooked-live/internal/storage"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	createdAt  = time.Date(2024, 5, 1, 11, 30, 0, 0, time.UTC)
	archivedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
)

func finishedEnvelope() outbox.Envelope {
	return outbox.Envelope{
		Event:        restaurant.EventFinishedOrCancelledOrder,
		RestaurantID: 3,
		OccurredAt:   archivedAt,
		Payload:      json.RawMessage(`{}`),
		Order: &domain.Order{
			ID:     7,
			Time:   createdAt,
			Origin: 1,
			Status: domain.OrderFinished,
			Note:   "no salt",
			Items: []domain.OrderItem{
				{ID: "a", Dish: domain.CustomizedDish{DishID: 0}, Amount: 2, Status: domain.ItemDelivered, Price: &domain.PriceBreakdown{FinalPrice: 18}},
				{ID: "b", Dish: domain.CustomizedDish{DishID: 1}, Amount: 1, Status: domain.ItemCancelled, Price: &domain.PriceBreakdown{}},
			},
			Price: &domain.PriceBreakdown{Price: 20, Discount: 2, FinalPrice: 18},
		},
		DishTitles: map[int]string{0: "Burger", 1: "Salad"},
		Stats: []statistics.Timeframe{{
			Name:          "daily",
			StartTime:     createdAt,
			ResetInterval: 24 * time.Hour,
			Orders:        statistics.OrderCounters{Finished: 1, Total: 1, TotalItems: 3, TotalTurnover: 18},
			Dishes:        map[string]int{"Burger": 2, "Salad": 1},
		}},
	}
}

func TestKafkaPublisher_Publish(t *testing.T) {
	ctx := context.Background()
	env := finishedEnvelope()

	tests := []struct {
		name        string
		writeErr    error
		expectedErr error
	}{
		{name: "success", writeErr: nil, expectedErr: nil},
		{name: "writer_error", writeErr: errors.New("broker down"), expectedErr: errors.New("broker down")},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			writer := mocks.NewMessageWriter(t)
			writer.On("WriteMessages", ctx, mock.MatchedBy(func(msg kafka.Message) bool {
				var decoded map[string]any
				if err := json.Unmarshal(msg.Value, &decoded); err != nil {
					return false
				}
				return string(msg.Key) == "3" &&
					decoded["event"] == restaurant.EventFinishedOrCancelledOrder &&
					len(msg.Headers) == 1 && string(msg.Headers[0].Value) == env.Event
			})).Return(testCase.writeErr).Once()

			err := storage.NewKafkaPublisher(writer).Publish(ctx, env)

			assert.Equal(t, testCase.expectedErr, err)
		})
	}
}

func TestPostgresArchive_ArchiveOrder(t *testing.T) {
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	env := finishedEnvelope()
	sqlMock.ExpectBegin()
	sqlMock.ExpectExec(regexp.QuoteMeta("INSERT INTO archived_orders")).
		WithArgs(3, 7, 1, "FINISHED", "no salt", 20.0, 2.0, 0.0, 18.0, createdAt, archivedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	sqlMock.ExpectExec(regexp.QuoteMeta("INSERT INTO archived_order_items")).
		WithArgs(3, 7, "a", 0, "Burger", 2, "DELIVERED", 18.0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	sqlMock.ExpectExec(regexp.QuoteMeta("INSERT INTO archived_order_items")).
		WithArgs(3, 7, "b", 1, "Salad", 1, "CANCELLED", 0.0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	sqlMock.ExpectCommit()

	require.NoError(t, storage.NewPostgresArchive(db).ArchiveOrder(context.Background(), env))
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestPostgresArchive_RollsBackOnItemFailure(t *testing.T) {
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlMock.ExpectBegin()
	sqlMock.ExpectExec(regexp.QuoteMeta("INSERT INTO archived_orders")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	sqlMock.ExpectExec(regexp.QuoteMeta("INSERT INTO archived_order_items")).
		WillReturnError(errors.New("disk full"))
	sqlMock.ExpectRollback()

	err = storage.NewPostgresArchive(db).ArchiveOrder(context.Background(), finishedEnvelope())

	assert.ErrorContains(t, err, "insert item a")
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestPostgresArchive_RequiresOrder(t *testing.T) {
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	err = storage.NewPostgresArchive(db).ArchiveOrder(context.Background(), outbox.Envelope{Event: restaurant.EventNewOrder})

	assert.Error(t, err)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestPostgresArchive_EnsureSchemaAndList(t *testing.T) {
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	archive := storage.NewPostgresArchive(db)

	sqlMock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS archived_orders")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, archive.EnsureSchema(context.Background()))

	rows := sqlmock.NewRows([]string{"order_id", "origin", "status", "final_price"}).
		AddRow(7, 1, "FINISHED", 18.0).
		AddRow(6, 0, "CANCELLED", 0.0)
	sqlMock.ExpectQuery(regexp.QuoteMeta("FROM archived_orders")).
		WithArgs(3, 10).
		WillReturnRows(rows)

	orders, err := archive.ListArchivedOrders(context.Background(), 3, 10)
	require.NoError(t, err)
	assert.Equal(t, []storage.ArchivedOrder{
		{OrderID: 7, Origin: 1, Status: "FINISHED", FinalPrice: 18},
		{OrderID: 6, Origin: 0, Status: "CANCELLED", FinalPrice: 0},
	}, orders)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func newMirror(t *testing.T) (*storage.RedisStatsMirror, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return storage.NewRedisStatsMirror(client, time.Hour), server
}

func TestRedisStatsMirror_MirrorStats(t *testing.T) {
	mirror, server := newMirror(t)
	ctx := context.Background()
	env := finishedEnvelope()

	require.NoError(t, mirror.MirrorStats(ctx, env))
	require.NoError(t, mirror.MirrorStats(ctx, env))

	key := storage.StatsKey(3, "daily")
	assert.Equal(t, "1", server.HGet(key, "orders_finished"))
	assert.Equal(t, "18", server.HGet(key, "orders_turnover"))
	assert.Equal(t, "2", server.HGet(key, "dish:Burger"))
	assert.Equal(t, "86400", server.HGet(key, "reset_interval"))
	assert.Equal(t, time.Hour, server.TTL(key))

	daily := storage.DailyAnalyticsKey(3, archivedAt)
	assert.Equal(t, "analytics:daily:2024-05-01:3", daily)
	score, err := server.ZScore(daily, "Burger")
	require.NoError(t, err)
	assert.Equal(t, 4.0, score)
	score, err = server.ZScore(daily, "Salad")
	require.NoError(t, err)
	assert.Equal(t, 2.0, score)

	top, err := mirror.TopDishes(ctx, 3, archivedAt, 5)
	require.NoError(t, err)
	assert.Equal(t, []storage.DishPopularity{{Title: "Burger", Amount: 4}, {Title: "Salad", Amount: 2}}, top)
}

func TestRedisStatsMirror_PopularityMatchesSnapshot(t *testing.T) {
	mirror, server := newMirror(t)
	env := finishedEnvelope()

	require.NoError(t, mirror.MirrorStats(context.Background(), env))

	daily := storage.DailyAnalyticsKey(3, archivedAt)
	for title, amount := range env.Stats[0].Dishes {
		score, err := server.ZScore(daily, title)
		require.NoError(t, err)
		assert.Equal(t, float64(amount), score, title)
		assert.Equal(t, strconv.Itoa(amount), server.HGet(storage.StatsKey(3, "daily"), "dish:"+title))
	}
}

func TestRedisStatsMirror_ReplacesStaleFields(t *testing.T) {
	mirror, server := newMirror(t)
	ctx := context.Background()
	env := finishedEnvelope()
	require.NoError(t, mirror.MirrorStats(ctx, env))

	env.Event = restaurant.EventAssistanceRequest
	env.Order = nil
	env.Stats[0].Dishes = map[string]int{"Cheeseburger": 0}
	require.NoError(t, mirror.MirrorStats(ctx, env))

	key := storage.StatsKey(3, "daily")
	assert.Empty(t, server.HGet(key, "dish:Burger"))
	assert.Equal(t, "0", server.HGet(key, "dish:Cheeseburger"))
	assert.Equal(t, time.Hour, server.TTL(key))
}

func TestRedisStatsMirror_RequestEventsSkipPopularity(t *testing.T) {
	mirror, server := newMirror(t)
	env := finishedEnvelope()
	env.Event = restaurant.EventAssistanceRequest
	env.Order = nil

	require.NoError(t, mirror.MirrorStats(context.Background(), env))

	assert.True(t, server.Exists(storage.StatsKey(3, "daily")))
	assert.False(t, server.Exists(storage.DailyAnalyticsKey(3, archivedAt)))
}

func TestRedisStatsMirror_TopDishesEmpty(t *testing.T) {
	mirror, _ := newMirror(t)

	top, err := mirror.TopDishes(context.Background(), 9, archivedAt, 3)

	require.NoError(t, err)
	assert.Empty(t, top)
}
