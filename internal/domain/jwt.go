package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

// FitlogClaims represents custom JWT claims for FitLog auth
type FitlogClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims // ID carries the session id
}
