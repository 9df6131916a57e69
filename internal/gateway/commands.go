package gateway

import (
	"fmt"
	"strconv"
	"strings"

	"overcooked-live/internal/auth"
	"overcooked-live/internal/domain"
	"overcooked-live/internal/restaurant"
	"overcooked-live/internal/statistics"

	"go.uber.org/zap"
)

// Restaurants resolves a restaurant store by id.
type Restaurants interface {
	Restaurant(id int) (*restaurant.Store, bool)
}

// StatsProvider returns the statistics buckets of a restaurant.
type StatsProvider interface {
	Snapshot(restaurantID int) ([]statistics.Timeframe, error)
}

type commandFunc func(c *Client, req Request) (any, error)

// Dispatcher authorizes and executes client commands.
type Dispatcher struct {
	logger      *zap.Logger
	restaurants Restaurants
	stats       StatsProvider
	commands    map[string]commandFunc
}

func NewDispatcher(logger *zap.Logger, restaurants Restaurants, stats StatsProvider) *Dispatcher {
	d := &Dispatcher{
		logger:      logger.Named("dispatcher"),
		restaurants: restaurants,
		stats:       stats,
	}
	d.commands = map[string]commandFunc{
		"joinRoom":                   d.joinRoom,
		"getRestaurantData":          d.getRestaurantData,
		"getTableOrders":             d.getTableOrders,
		"createOrder":                d.createOrder,
		"createAssistanceRequest":    d.createAssistanceRequest,
		"createCheckRequest":         d.createCheckRequest,
		"getRestaurantOrders":        d.getRestaurantOrders,
		"getRestaurantNotifications": d.getRestaurantNotifications,
		"setNotificationInactive":    d.setNotificationInactive,
		"updateOrderStatus":          d.updateOrderStatus,
		"updateOrderItemStatus":      d.updateOrderItemStatus,
		"getRestaurantStats":         d.getRestaurantStats,
		"createDish":                 d.createDish,
		"updateDish":                 d.updateDish,
		"createCategory":             d.createCategory,
		"updateCategory":             d.updateCategory,
		"deleteCategory":             d.deleteCategory,
		"addTable":                   d.addTable,
		"deleteTable":                d.deleteTable,
		"setDetails":                 d.setDetails,
		"setTheme":                   d.setTheme,
	}
	return d
}

// Dispatch runs one command and builds its reply.
func (d *Dispatcher) Dispatch(c *Client, req Request) Response {
	command, ok := d.commands[req.Command]
	if !ok {
		return errorResponse(req.ID, fmt.Errorf("%w: %q", ErrUnknownCommand, req.Command))
	}

	data, err := command(c, req)
	if err != nil {
		fields := []zap.Field{
			zap.String("command", req.Command),
			zap.Int("restaurant_id", req.RestaurantID),
			zap.String("session", c.sessionID()),
			zap.Error(err),
		}
		if ErrorCode(err) == CodeInternal {
			d.logger.Error("command failed", fields...)
		} else {
			d.logger.Debug("command rejected", fields...)
		}
		return errorResponse(req.ID, err)
	}
	return okResponse(req.ID, data)
}

func requireRole(c *Client, restaurantID int, roles ...auth.Role) error {
	if c.claims == nil || !c.claims.HasRole(restaurantID, roles...) {
		return ErrPermissionDenied
	}
	return nil
}

// requireTable checks the user role and that the session is bound to tableID.
func requireTable(c *Client, restaurantID, tableID int) error {
	if err := requireRole(c, restaurantID, auth.RoleUser); err != nil {
		return err
	}
	if !c.claims.HasTable(tableID) {
		return ErrPermissionDenied
	}
	return nil
}

func (d *Dispatcher) store(restaurantID int) (*restaurant.Store, error) {
	store, ok := d.restaurants.Restaurant(restaurantID)
	if !ok {
		return nil, fmt.Errorf("%w: restaurant %d", domain.ErrNotFound, restaurantID)
	}
	return store, nil
}

var roomRoles = map[string]auth.Role{
	RoomUsers:   auth.RoleUser,
	RoomWaiter:  auth.RoleWaiter,
	RoomKitchen: auth.RoleKitchen,
	RoomAdmin:   auth.RoleAdmin,
}

type joinRoomPayload struct {
	Room string `json:"room"`
}

func (d *Dispatcher) joinRoom(c *Client, req Request) (any, error) {
	var payload joinRoomPayload
	if err := decodePayload(req.Payload, &payload); err != nil {
		return nil, err
	}

	if strings.HasPrefix(payload.Room, "table_") {
		tableID, err := strconv.Atoi(strings.TrimPrefix(payload.Room, "table_"))
		if err != nil {
			return nil, fmt.Errorf("%w: room %q", ErrBadRequest, payload.Room)
		}
		if c.claims == nil || c.claims.RestaurantID != req.RestaurantID || !c.claims.HasTable(tableID) {
			return nil, ErrPermissionDenied
		}
	} else {
		role, ok := roomRoles[payload.Room]
		if !ok {
			return nil, fmt.Errorf("%w: room %q", ErrBadRequest, payload.Room)
		}
		if err := requireRole(c, req.RestaurantID, role); err != nil {
			return nil, err
		}
	}

	if _, err := d.store(req.RestaurantID); err != nil {
		return nil, err
	}

	room := RoomName(req.RestaurantID, payload.Room)
	if !c.hub.join(c, room) {
		return nil, fmt.Errorf("session closed")
	}
	d.logger.Debug("client joined room", zap.String("session", c.sessionID()), zap.String("room", room))
	return true, nil
}

func (d *Dispatcher) getRestaurantData(c *Client, req Request) (any, error) {
	if err := requireRole(c, req.RestaurantID, auth.RoleUser); err != nil {
		return nil, err
	}
	store, err := d.store(req.RestaurantID)
	if err != nil {
		return nil, err
	}
	return store.Data(), nil
}

type tablePayload struct {
	TableID int `json:"table_id"`
}

func (d *Dispatcher) getTableOrders(c *Client, req Request) (any, error) {
	var payload tablePayload
	if err := decodePayload(req.Payload, &payload); err != nil {
		return nil, err
	}
	if err := requireTable(c, req.RestaurantID, payload.TableID); err != nil {
		return nil, err
	}
	store, err := d.store(req.RestaurantID)
	if err != nil {
		return nil, err
	}
	return store.TableOrders(payload.TableID)
}

func (d *Dispatcher) createOrder(c *Client, req Request) (any, error) {
	var draft domain.DraftOrder
	if err := decodePayload(req.Payload, &draft); err != nil {
		return nil, err
	}
	if err := requireTable(c, req.RestaurantID, draft.Origin); err != nil {
		return nil, err
	}
	store, err := d.store(req.RestaurantID)
	if err != nil {
		return nil, err
	}
	return store.CreateOrder(draft)
}

func (d *Dispatcher) createAssistanceRequest(c *Client, req Request) (any, error) {
	var payload tablePayload
	if err := decodePayload(req.Payload, &payload); err != nil {
		return nil, err
	}
	if err := requireTable(c, req.RestaurantID, payload.TableID); err != nil {
		return nil, err
	}
	store, err := d.store(req.RestaurantID)
	if err != nil {
		return nil, err
	}
	return true, store.SendAssistanceRequest(payload.TableID)
}

type checkRequestPayload struct {
	TableID       int                  `json:"table_id"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
}

func (d *Dispatcher) createCheckRequest(c *Client, req Request) (any, error) {
	var payload checkRequestPayload
	if err := decodePayload(req.Payload, &payload); err != nil {
		return nil, err
	}
	if err := requireTable(c, req.RestaurantID, payload.TableID); err != nil {
		return nil, err
	}
	store, err := d.store(req.RestaurantID)
	if err != nil {
		return nil, err
	}
	return true, store.SendCheckRequest(payload.TableID, payload.PaymentMethod)
}

func (d *Dispatcher) getRestaurantOrders(c *Client, req Request) (any, error) {
	if err := requireRole(c, req.RestaurantID, auth.RoleWaiter, auth.RoleAdmin, auth.RoleKitchen); err != nil {
		return nil, err
	}
	store, err := d.store(req.RestaurantID)
	if err != nil {
		return nil, err
	}
	return store.Orders(), nil
}

func (d *Dispatcher) getRestaurantNotifications(c *Client, req Request) (any, error) {
	if err := requireRole(c, req.RestaurantID, auth.RoleWaiter); err != nil {
		return nil, err
	}
	store, err := d.store(req.RestaurantID)
	if err != nil {
		return nil, err
	}
	return store.Notifications(), nil
}

type notificationPayload struct {
	ID string `json:"id"`
}

func (d *Dispatcher) setNotificationInactive(c *Client, req Request) (any, error) {
	if err := requireRole(c, req.RestaurantID, auth.RoleWaiter); err != nil {
		return nil, err
	}
	var payload notificationPayload
	if err := decodePayload(req.Payload, &payload); err != nil {
		return nil, err
	}
	store, err := d.store(req.RestaurantID)
	if err != nil {
		return nil, err
	}
	return true, store.SetNotificationInactive(payload.ID)
}

type orderStatusPayload struct {
	OrderID int                `json:"order_id"`
	Status  domain.OrderStatus `json:"status"`
}

func (d *Dispatcher) updateOrderStatus(c *Client, req Request) (any, error) {
	if err := requireRole(c, req.RestaurantID, auth.RoleWaiter); err != nil {
		return nil, err
	}
	var payload orderStatusPayload
	if err := decodePayload(req.Payload, &payload); err != nil {
		return nil, err
	}
	store, err := d.store(req.RestaurantID)
	if err != nil {
		return nil, err
	}
	return true, store.UpdateOrderStatus(payload.OrderID, payload.Status)
}

type orderItemStatusPayload struct {
	OrderID int                    `json:"order_id"`
	ItemID  string                 `json:"item_id"`
	Status  domain.OrderItemStatus `json:"status"`
}

func (d *Dispatcher) updateOrderItemStatus(c *Client, req Request) (any, error) {
	if err := requireRole(c, req.RestaurantID, auth.RoleKitchen, auth.RoleWaiter); err != nil {
		return nil, err
	}
	var payload orderItemStatusPayload
	if err := decodePayload(req.Payload, &payload); err != nil {
		return nil, err
	}
	store, err := d.store(req.RestaurantID)
	if err != nil {
		return nil, err
	}
	return true, store.UpdateOrderItemStatus(payload.OrderID, payload.ItemID, payload.Status)
}

func (d *Dispatcher) getRestaurantStats(c *Client, req Request) (any, error) {
	if err := requireRole(c, req.RestaurantID, auth.RoleAdmin); err != nil {
		return nil, err
	}
	return d.stats.Snapshot(req.RestaurantID)
}

// adminStore checks the admin role and resolves the store.
func (d *Dispatcher) adminStore(c *Client, req Request) (*restaurant.Store, error) {
	if err := requireRole(c, req.RestaurantID, auth.RoleAdmin); err != nil {
		return nil, err
	}
	return d.store(req.RestaurantID)
}

func (d *Dispatcher) createDish(c *Client, req Request) (any, error) {
	store, err := d.adminStore(c, req)
	if err != nil {
		return nil, err
	}
	var dish domain.Dish
	if err := decodePayload(req.Payload, &dish); err != nil {
		return nil, err
	}
	return store.CreateDish(dish)
}

func (d *Dispatcher) updateDish(c *Client, req Request) (any, error) {
	store, err := d.adminStore(c, req)
	if err != nil {
		return nil, err
	}
	var dish domain.Dish
	if err := decodePayload(req.Payload, &dish); err != nil {
		return nil, err
	}
	return true, store.UpdateDish(dish)
}

func (d *Dispatcher) createCategory(c *Client, req Request) (any, error) {
	store, err := d.adminStore(c, req)
	if err != nil {
		return nil, err
	}
	var category domain.Category
	if err := decodePayload(req.Payload, &category); err != nil {
		return nil, err
	}
	return store.CreateCategory(category)
}

func (d *Dispatcher) updateCategory(c *Client, req Request) (any, error) {
	store, err := d.adminStore(c, req)
	if err != nil {
		return nil, err
	}
	var category domain.Category
	if err := decodePayload(req.Payload, &category); err != nil {
		return nil, err
	}
	return true, store.UpdateCategory(category)
}

type idPayload struct {
	ID int `json:"id"`
}

func (d *Dispatcher) deleteCategory(c *Client, req Request) (any, error) {
	store, err := d.adminStore(c, req)
	if err != nil {
		return nil, err
	}
	var payload idPayload
	if err := decodePayload(req.Payload, &payload); err != nil {
		return nil, err
	}
	return true, store.DeleteCategory(payload.ID)
}

func (d *Dispatcher) addTable(c *Client, req Request) (any, error) {
	store, err := d.adminStore(c, req)
	if err != nil {
		return nil, err
	}
	return store.AddTable(), nil
}

func (d *Dispatcher) deleteTable(c *Client, req Request) (any, error) {
	store, err := d.adminStore(c, req)
	if err != nil {
		return nil, err
	}
	var payload idPayload
	if err := decodePayload(req.Payload, &payload); err != nil {
		return nil, err
	}
	return true, store.DeleteTable(payload.ID)
}

func (d *Dispatcher) setDetails(c *Client, req Request) (any, error) {
	store, err := d.adminStore(c, req)
	if err != nil {
		return nil, err
	}
	var details domain.Details
	if err := decodePayload(req.Payload, &details); err != nil {
		return nil, err
	}
	return true, store.SetDetails(details)
}

func (d *Dispatcher) setTheme(c *Client, req Request) (any, error) {
	store, err := d.adminStore(c, req)
	if err != nil {
		return nil, err
	}
	var theme domain.Theme
	if err := decodePayload(req.Payload, &theme); err != nil {
		return nil, err
	}
	store.SetTheme(theme)
	return true, nil
}
