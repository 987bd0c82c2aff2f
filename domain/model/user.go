package model

import (
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/shopspring/decimal"
)

type User struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	Credits   decimal.Decimal `json:"credits"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// UserClaims is the bearer token issued by the auth service.
type UserClaims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role,omitempty"`
	jwt.StandardClaims
}

// Identity is the authenticated caller handed to every usecase call.
type Identity struct {
	UserID string
	Email  string
}
