package types

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims is the principal handed to this backend by the auth layer: who
// the caller is, their role, and which restaurant they may act on.
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID       uuid.UUID `json:"user_id"`
	Role         string    `json:"role"`
	RestaurantID uuid.UUID `json:"restaurant_id"`
}
