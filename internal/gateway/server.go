package gateway

import (
	"net/http"
	"slices"

	"overcooked-live/internal/auth"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// TokenParser validates an access token.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// Server upgrades authenticated HTTP requests into hub clients.
type Server struct {
	logger     *zap.Logger
	hub        *Hub
	dispatcher *Dispatcher
	tokens     TokenParser
	upgrader   websocket.Upgrader
}

var _ TokenParser = (*auth.Verifier)(nil)

// NewServer builds the upgrade handler. An empty allowedOrigins accepts any origin.
func NewServer(logger *zap.Logger, hub *Hub, dispatcher *Dispatcher, tokens TokenParser, allowedOrigins []string) *Server {
	s := &Server{
		logger:     logger.Named("ws"),
		hub:        hub,
		dispatcher: dispatcher,
		tokens:     tokens,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*") {
				return true
			}
			return slices.Contains(allowedOrigins, r.Header.Get("Origin"))
		},
	}
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, err := s.tokens.Parse(auth.TokenFromRequest(r))
	if err != nil {
		s.logger.Debug("rejected connection", zap.String("remote", r.RemoteAddr), zap.Error(err))
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := s.hub.newClient(conn, claims)
	s.logger.Info("client connected",
		zap.String("session", claims.ID),
		zap.Int("restaurant_id", claims.RestaurantID),
		zap.Any("roles", claims.Roles))

	go c.writePump()
	go c.readPump(s.dispatcher)
}
