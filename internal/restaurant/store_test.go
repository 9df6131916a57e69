package restaurant_test

import (
	"fmt"
	"testing"
	"time"

	"overcooked-live/internal/domain"
	"overcooked-live/internal/restaurant"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type recorder struct {
	events []restaurant.Event
}

func (r *recorder) HandleEvent(_ *restaurant.Tx, ev restaurant.Event) {
	r.events = append(r.events, ev)
}

func (r *recorder) names() []string {
	names := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		names = append(names, ev.EventName())
	}
	return names
}

func (r *recorder) reset() { r.events = nil }

func testSeed(tables int) domain.Seed {
	return domain.Seed{
		ID:          3,
		Name:        "Overcooked",
		Description: "Test kitchen",
		Categories:  []domain.Category{{ID: 0, Title: "Mains"}},
		Dishes: []domain.Dish{{
			ID:         0,
			CategoryID: 0,
			Price:      10,
			Discount:   1,
			Params: domain.DishParams{
				Title:       "Burger",
				Ingredients: []domain.Ingredient{{Name: "Onion", Removable: true}},
				Options:     []domain.DishOption{{Option: "Extra", Price: 2, Enabled: true}},
				Available:   true,
			},
		}},
		Tables: tables,
	}
}

func newTestStore(t *testing.T, tables int) (*restaurant.Store, *recorder) {
	t.Helper()
	counter := 0
	store := restaurant.New(testSeed(tables),
		restaurant.WithClock(func() time.Time { return fixedNow }),
		restaurant.WithIDGenerator(func() string {
			counter++
			return fmt.Sprintf("item-%d", counter)
		}),
	)
	rec := &recorder{}
	store.Subscribe(rec)
	return store, rec
}

func burgerDraft(origin, amount int) domain.DraftOrder {
	return domain.DraftOrder{
		Origin: origin,
		Status: domain.OrderInProgress,
		Items: []domain.DraftOrderItem{{
			ID:     "client-id",
			Amount: amount,
			Status: domain.ItemDelivered,
			Dish: domain.CustomizedDish{
				DishID:       0,
				AddedOptions: []domain.DishOption{{Option: "Extra", Price: 50}},
			},
		}},
	}
}

func TestStore_CreateOrder(t *testing.T) {
	store, rec := newTestStore(t, 2)

	order, err := store.CreateOrder(burgerDraft(1, 2))
	require.NoError(t, err)

	assert.Equal(t, 0, order.ID)
	assert.Equal(t, fixedNow, order.Time)
	assert.Equal(t, domain.OrderReceived, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "item-1", order.Items[0].ID)
	assert.Equal(t, domain.ItemInit, order.Items[0].Status)
	assert.Equal(t, &domain.PriceBreakdown{Price: 20, Discount: 2, Extras: 2, FinalPrice: 20}, order.Items[0].Price)
	assert.Equal(t, 20.0, order.Price.FinalPrice)

	tables := store.Tables()
	assert.Equal(t, []int{0}, tables[1].ActiveOrders)
	assert.Equal(t, []string{restaurant.EventNewOrder}, rec.names())

	second, err := store.CreateOrder(burgerDraft(1, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, second.ID)
	assert.NotEqual(t, order.Items[0].ID, second.Items[0].ID)
}

func TestStore_CreateOrder_IDsAndItems(t *testing.T) {
	store, _ := newTestStore(t, 1)

	draft := burgerDraft(0, 1)
	draft.Items = append(draft.Items, draft.Items[0], draft.Items[0])

	seen := map[string]bool{}
	last := -1
	for i := 0; i < 3; i++ {
		order, err := store.CreateOrder(draft)
		require.NoError(t, err)
		assert.Greater(t, order.ID, last)
		last = order.ID
		require.Len(t, order.Items, 3)
		for _, item := range order.Items {
			assert.False(t, seen[item.ID], "item id %s reused", item.ID)
			seen[item.ID] = true
		}
	}
}

func TestStore_CreateOrder_Rejections(t *testing.T) {
	tests := []struct {
		name          string
		prepare       func(store *restaurant.Store)
		draft         domain.DraftOrder
		expectedError error
	}{
		{
			name:          "empty_order",
			prepare:       func(*restaurant.Store) {},
			draft:         domain.DraftOrder{Origin: 0},
			expectedError: domain.ErrOrderRejected,
		},
		{
			name:          "unknown_table",
			prepare:       func(*restaurant.Store) {},
			draft:         burgerDraft(9, 1),
			expectedError: domain.ErrOrderRejected,
		},
		{
			name: "pending_check",
			prepare: func(store *restaurant.Store) {
				require.NoError(t, store.CreateNotification(&domain.Notification{
					ID:     "check",
					Origin: 0,
					Active: true,
					Detail: domain.CheckRequestedDetail{PaymentMethod: domain.PaymentCard},
				}))
			},
			draft:         burgerDraft(0, 1),
			expectedError: domain.ErrOrderRejected,
		},
		{
			name:          "invalid_amount",
			prepare:       func(*restaurant.Store) {},
			draft:         burgerDraft(0, 11),
			expectedError: domain.ErrValidation,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			store, rec := newTestStore(t, 1)
			testCase.prepare(store)
			rec.reset()

			order, err := store.CreateOrder(testCase.draft)
			assert.ErrorIs(t, err, testCase.expectedError)
			assert.Nil(t, order)
			assert.Empty(t, rec.events)
			assert.Empty(t, store.Orders())
			assert.Empty(t, store.Tables()[0].ActiveOrders)
		})
	}
}

func TestStore_UpdateOrderStatus(t *testing.T) {
	store, rec := newTestStore(t, 1)
	order, err := store.CreateOrder(burgerDraft(0, 1))
	require.NoError(t, err)
	rec.reset()

	assert.ErrorIs(t, store.UpdateOrderStatus(42, domain.OrderFinished), domain.ErrNotFound)
	assert.ErrorIs(t, store.UpdateOrderStatus(order.ID, "DONE"), domain.ErrInvalidStatus)
	assert.Empty(t, rec.events)

	require.NoError(t, store.UpdateOrderStatus(order.ID, domain.OrderDelivered))
	require.Len(t, rec.events, 1)
	update := rec.events[0].(restaurant.OrderStatusUpdate)
	assert.Equal(t, domain.OrderDelivered, update.NewStatus)
	assert.Equal(t, domain.OrderReceived, update.PrevStatus)
	assert.Equal(t, domain.OrderDelivered, update.Order.Status)
}

func TestStore_UpdateOrderItemStatus(t *testing.T) {
	store, rec := newTestStore(t, 1)
	order, err := store.CreateOrder(burgerDraft(0, 1))
	require.NoError(t, err)
	itemID := order.Items[0].ID
	rec.reset()

	assert.ErrorIs(t, store.UpdateOrderItemStatus(7, itemID, domain.ItemPrepared), domain.ErrNotFound)
	assert.ErrorIs(t, store.UpdateOrderItemStatus(order.ID, "nope", domain.ItemPrepared), domain.ErrNotFound)
	assert.ErrorIs(t, store.UpdateOrderItemStatus(order.ID, itemID, "BURNT"), domain.ErrInvalidStatus)
	assert.Empty(t, rec.events)

	// INIT straight to DELIVERED is accepted
	require.NoError(t, store.UpdateOrderItemStatus(order.ID, itemID, domain.ItemDelivered))
	require.Len(t, rec.events, 1)
	update := rec.events[0].(restaurant.OrderItemStatusUpdate)
	assert.Equal(t, domain.ItemDelivered, update.NewStatus)
	assert.Equal(t, domain.ItemInit, update.PrevStatus)
	assert.Equal(t, itemID, update.Item.ID)

	stored, ok := store.Order(order.ID)
	require.True(t, ok)
	assert.Equal(t, domain.ItemDelivered, stored.Items[0].Status)
	assert.Equal(t, domain.OrderReceived, stored.Status)
}

func TestStore_SetNotificationInactive(t *testing.T) {
	store, rec := newTestStore(t, 1)
	require.NoError(t, store.CreateNotification(&domain.Notification{
		ID: "n1", Origin: 0, Active: true, Detail: domain.AssistanceDetail{},
	}))
	rec.reset()

	assert.ErrorIs(t, store.SetNotificationInactive("missing"), domain.ErrNotFound)
	require.NoError(t, store.SetNotificationInactive("n1"))
	assert.ErrorIs(t, store.SetNotificationInactive("n1"), domain.ErrAlreadyInactive)
	assert.Equal(t, []string{restaurant.EventNotificationStatusUpdate}, rec.names())
	assert.False(t, store.Notifications()[0].Active)
}

func TestStore_CreateNotification(t *testing.T) {
	store, rec := newTestStore(t, 1)

	assert.ErrorIs(t, store.CreateNotification(&domain.Notification{ID: "x", Origin: 5, Detail: domain.AssistanceDetail{}}), domain.ErrInvalidTable)
	assert.ErrorIs(t, store.CreateNotification(&domain.Notification{ID: "", Origin: 0, Detail: domain.AssistanceDetail{}}), domain.ErrValidation)
	assert.ErrorIs(t, store.CreateNotification(&domain.Notification{ID: "y", Origin: 0}), domain.ErrValidation)
	assert.Empty(t, rec.events)

	require.NoError(t, store.CreateNotification(&domain.Notification{ID: "z", Origin: 0, Active: true, Detail: domain.AssistanceDetail{}}))
	assert.ErrorIs(t, store.CreateNotification(&domain.Notification{ID: "z", Origin: 0, Detail: domain.AssistanceDetail{}}), domain.ErrValidation)
	assert.Equal(t, []string{restaurant.EventNewNotification}, rec.names())
}

func TestStore_Requests(t *testing.T) {
	store, rec := newTestStore(t, 2)

	assert.ErrorIs(t, store.SendAssistanceRequest(2), domain.ErrInvalidTable)
	assert.ErrorIs(t, store.SendCheckRequest(2, domain.PaymentCash), domain.ErrInvalidTable)
	assert.ErrorIs(t, store.SendCheckRequest(1, "bitcoin"), domain.ErrValidation)

	require.NoError(t, store.SendAssistanceRequest(1))
	require.NoError(t, store.SendCheckRequest(1, domain.PaymentCard))
	require.Len(t, rec.events, 2)
	assert.Equal(t, restaurant.AssistanceRequest{TableID: 1}, rec.events[0])
	assert.Equal(t, restaurant.CheckRequest{TableID: 1, PaymentMethod: domain.PaymentCard}, rec.events[1])

	// the store only guards against notifications that already exist
	require.NoError(t, store.CreateNotification(&domain.Notification{ID: "a", Origin: 1, Active: true, Detail: domain.AssistanceDetail{}}))
	assert.ErrorIs(t, store.SendAssistanceRequest(1), domain.ErrDuplicateRequest)
	require.NoError(t, store.SendAssistanceRequest(0))
}

func TestStore_FinishOrder_Idempotent(t *testing.T) {
	store, rec := newTestStore(t, 1)
	order, err := store.CreateOrder(burgerDraft(0, 1))
	require.NoError(t, err)
	require.NoError(t, store.CreateNotification(&domain.Notification{
		ID: "n1", Origin: 0, Active: true, Detail: domain.NewOrderDetail{OrderID: order.ID},
	}))
	rec.reset()

	assert.ErrorIs(t, store.FinishOrder(99), domain.ErrNotFound)

	require.NoError(t, store.FinishOrder(order.ID))
	assert.Equal(t, []string{restaurant.EventNotificationStatusUpdate, restaurant.EventFinishedOrCancelledOrder}, rec.names())
	tablesAfterOnce := store.Tables()
	notificationsAfterOnce := store.Notifications()

	rec.reset()
	require.NoError(t, store.FinishOrder(order.ID))
	assert.Equal(t, []string{restaurant.EventFinishedOrCancelledOrder}, rec.names())
	assert.Equal(t, tablesAfterOnce, store.Tables())
	assert.Equal(t, notificationsAfterOnce, store.Notifications())
	assert.Empty(t, tablesAfterOnce[0].ActiveOrders)
}

func TestStore_TableOrders(t *testing.T) {
	store, _ := newTestStore(t, 2)
	first, err := store.CreateOrder(burgerDraft(0, 1))
	require.NoError(t, err)
	_, err = store.CreateOrder(burgerDraft(1, 1))
	require.NoError(t, err)
	third, err := store.CreateOrder(burgerDraft(0, 2))
	require.NoError(t, err)

	orders, err := store.TableOrders(0)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, first.ID, orders[0].ID)
	assert.Equal(t, third.ID, orders[1].ID)

	_, err = store.TableOrders(5)
	assert.ErrorIs(t, err, domain.ErrInvalidTable)
}

func TestStore_AccessorsReturnCopies(t *testing.T) {
	store, _ := newTestStore(t, 1)
	order, err := store.CreateOrder(burgerDraft(0, 1))
	require.NoError(t, err)

	order.Items[0].Status = domain.ItemCancelled
	order.Price.FinalPrice = -1
	dishes := store.Dishes()
	dishes[0].Params.Options[0].Price = 99

	stored, _ := store.Order(order.ID)
	assert.Equal(t, domain.ItemInit, stored.Items[0].Status)
	assert.Equal(t, 20.0, stored.Price.FinalPrice)
	dish, _ := store.Dish(0)
	assert.Equal(t, 2.0, dish.Params.Options[0].Price)
}

func TestStore_TxClosedAfterCallback(t *testing.T) {
	store, _ := newTestStore(t, 1)

	var kept *restaurant.Tx
	store.Subscribe(restaurant.ListenerFunc(func(tx *restaurant.Tx, ev restaurant.Event) {
		kept = tx
		_, ok := tx.Dish(0)
		assert.True(t, ok)
	}))
	_, err := store.CreateOrder(burgerDraft(0, 1))
	require.NoError(t, err)

	require.NotNil(t, kept)
	assert.ErrorIs(t, kept.FinishOrder(0), restaurant.ErrTxDone)
	_, ok := kept.Dish(0)
	assert.False(t, ok)
}

func TestStore_Unsubscribe(t *testing.T) {
	store := restaurant.New(testSeed(1))
	rec := &recorder{}
	unsubscribe := store.Subscribe(rec)

	require.NoError(t, store.SendAssistanceRequest(0))
	unsubscribe()
	require.NoError(t, store.SendAssistanceRequest(0))

	assert.Len(t, rec.events, 1)
}
