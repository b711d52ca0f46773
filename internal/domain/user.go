package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Preferences are the display settings kept on the profile
type Preferences struct {
	Theme             string `json:"theme"`
	WeightUnit        string `json:"weight_unit"`
	MeasurementSystem string `json:"measurement_system"`
}

// DefaultPreferences for a freshly registered user
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:             "light",
		WeightUnit:        "kg",
		MeasurementSystem: "metric",
	}
}

// User is a local account. Login is simulated; the password hash only guards the
// local key-value store.
type User struct {
	ID           string      `json:"id"`
	Email        string      `json:"email"`
	Name         string      `json:"name"`
	Avatar       string      `json:"avatar,omitempty"`
	PasswordHash string      `json:"password_hash,omitempty"`
	Preferences  Preferences `json:"preferences"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Public strips the password hash before the user leaves the service
func (u *User) Public() *User {
	c := *u
	c.PasswordHash = ""
	return &c
}

// Session binds an issued access token to a user until logout
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserRepository defines operations for managing users and their login session
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error

	SaveSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, userID string) (*Session, error)
	DeleteSession(ctx context.Context, userID string) error
}
