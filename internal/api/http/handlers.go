package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"time"

	"overcooked-live/internal/domain"
	"overcooked-live/internal/restaurant"
	"overcooked-live/internal/service"

	"github.com/gorilla/mux"
)

type Restaurants interface {
	Restaurant(id int) (*restaurant.Store, bool)
}

type Handler struct {
	Restaurants Restaurants
	QR          service.QRGenerator
	Analytics   service.AnalyticsInterface
	Realtime    http.Handler
}

func NewHandler(restaurants Restaurants, qr service.QRGenerator, analytics service.AnalyticsInterface, realtime http.Handler) *Handler {
	return &Handler{
		Restaurants: restaurants,
		QR:          qr,
		Analytics:   analytics,
		Realtime:    realtime,
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")
	r.HandleFunc("/api/restaurants/{restaurantId}/tables/{tableId}/qrcode", h.getTableQRCode).Methods("GET")
	r.HandleFunc("/api/restaurants/{restaurantId}/top-dishes", h.getTopDishes).Methods("GET")
	if h.Realtime != nil {
		r.Handle("/ws", h.Realtime).Methods("GET")
	}
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "ok",
		"service":   "overcooked-live",
		"timestamp": time.Now().Format(time.RFC3339),
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) getTableQRCode(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := strconv.Atoi(mux.Vars(r)["restaurantId"])
	if err != nil {
		http.Error(w, "Invalid restaurant id", http.StatusBadRequest)
		return
	}
	tableID, err := strconv.Atoi(mux.Vars(r)["tableId"])
	if err != nil {
		http.Error(w, "Invalid table id", http.StatusBadRequest)
		return
	}

	store, ok := h.Restaurants.Restaurant(restaurantID)
	if !ok {
		http.Error(w, "Restaurant not found", http.StatusNotFound)
		return
	}
	if !slices.ContainsFunc(store.Tables(), func(t domain.Table) bool { return t.ID == tableID }) {
		http.Error(w, "Table not found", http.StatusNotFound)
		return
	}

	qrCode, err := h.QR.Generate(restaurantID, tableID)
	if err != nil {
		http.Error(w, "Failed to generate QR code", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(qrCode)
}

func (h *Handler) getTopDishes(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := strconv.Atoi(mux.Vars(r)["restaurantId"])
	if err != nil {
		http.Error(w, "Invalid restaurant id", http.StatusBadRequest)
		return
	}
	limit := service.DefaultTopDishesLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
	}

	dishes, err := h.Analytics.TopDishes(r.Context(), restaurantID, limit)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "Restaurant not found", http.StatusNotFound)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, dishes)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
