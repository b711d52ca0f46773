package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mansoorceksport/fitlog/internal/domain"
	"github.com/sirupsen/logrus"
)

const (
	userKeyPrefix        = "fitlog:users:"
	userEmailKeyPrefix   = "fitlog:users:email:"
	userSessionKeyPrefix = "fitlog:sessions:"
)

// SessionKey is where the active login session of a user lives
func SessionKey(userID string) string {
	return userSessionKeyPrefix + userID
}

// KVUserRepository implements domain.UserRepository on top of a key-value store
type KVUserRepository struct {
	kv  domain.KeyValueStore
	now func() time.Time
}

func NewKVUserRepository(kv domain.KeyValueStore) *KVUserRepository {
	return &KVUserRepository{kv: kv, now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create claims the email index key first, so of two concurrent registrations
// for one address only one succeeds
func (r *KVUserRepository) Create(ctx context.Context, user *domain.User) error {
	email := normalizeEmail(user.Email)
	claimed, err := r.kv.SetNX(ctx, userEmailKeyPrefix+email, []byte(user.ID), 0)
	if err != nil {
		return fmt.Errorf("failed to index user email: %w", err)
	}
	if !claimed {
		return domain.ErrEmailTaken
	}

	user.Email = email
	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.now()
	}
	user.UpdatedAt = user.CreatedAt

	if err := r.put(ctx, user); err != nil {
		if delErr := r.kv.Delete(ctx, userEmailKeyPrefix+email); delErr != nil {
			logrus.WithError(delErr).WithField("email", email).Warn("failed to release email claim")
		}
		return err
	}
	return nil
}

func (r *KVUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	data, err := r.kv.Get(ctx, userKeyPrefix+id)
	if err != nil {
		if errors.Is(err, domain.ErrKeyNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return &user, nil
}

func (r *KVUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	id, err := r.kv.Get(ctx, userEmailKeyPrefix+normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrKeyNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}
	return r.GetByID(ctx, string(id))
}

// Update overwrites the stored user. The email is immutable.
func (r *KVUserRepository) Update(ctx context.Context, user *domain.User) error {
	existing, err := r.GetByID(ctx, user.ID)
	if err != nil {
		return err
	}
	user.Email = existing.Email
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = r.now()
	return r.put(ctx, user)
}

func (r *KVUserRepository) put(ctx context.Context, user *domain.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	if err := r.kv.Set(ctx, userKeyPrefix+user.ID, data, 0); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// SaveSession replaces the user's session; it expires with the token
func (r *KVUserRepository) SaveSession(ctx context.Context, session *domain.Session) error {
	ttl := session.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.kv.Set(ctx, SessionKey(session.UserID), data, ttl); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// GetSession returns the active session or domain.ErrUnauthorized when there is none
func (r *KVUserRepository) GetSession(ctx context.Context, userID string) (*domain.Session, error) {
	data, err := r.kv.Get(ctx, SessionKey(userID))
	if err != nil {
		if errors.Is(err, domain.ErrKeyNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &session, nil
}

func (r *KVUserRepository) DeleteSession(ctx context.Context, userID string) error {
	return r.kv.Delete(ctx, SessionKey(userID))
}
