// Package auth verifies the access tokens presented when a realtime
// connection is opened.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleUser    Role = "user"
	RoleWaiter  Role = "waiter"
	RoleKitchen Role = "kitchen"
	RoleAdmin   Role = "admin"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims is the payload of an access token. TableID is nil for staff sessions.
type Claims struct {
	ID           string `json:"id"`
	Roles        []Role `json:"roles"`
	RestaurantID int    `json:"restaurant_id"`
	TableID      *int   `json:"table_id"`
	jwt.RegisteredClaims
}

// HasRole reports whether the session belongs to restaurantID and holds any of roles.
func (c *Claims) HasRole(restaurantID int, roles ...Role) bool {
	if c.RestaurantID != restaurantID {
		return false
	}
	for _, role := range roles {
		if slices.Contains(c.Roles, role) {
			return true
		}
	}
	return false
}

func (c *Claims) HasTable(tableID int) bool {
	return c.TableID != nil && *c.TableID == tableID
}

type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, jwt.ErrSignatureInvalid
	}
	return v.secret, nil
}

func (v *Verifier) Parse(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrMissingToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, v.keyFunc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Issue signs claims expiring ttl from now. A zero ttl never expires.
func (v *Verifier) Issue(claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	if ttl != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	return token.SignedString(v.secret)
}

// TokenFromRequest reads the token query parameter, then the bearer header.
func TokenFromRequest(r *http.Request) string {
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}
