package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mansoorceksport/fitlog/internal/config"
	"github.com/mansoorceksport/fitlog/internal/domain"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles the simulated login: local accounts with bcrypt passwords
// and HS256 access tokens bound to a server-side session
type AuthService struct {
	users      domain.UserRepository
	sessions   *WorkoutSessions
	jwtConfig  config.JWTConfig
	authConfig config.AuthConfig
	bcryptCost int
	now        func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	users domain.UserRepository,
	sessions *WorkoutSessions,
	jwtConfig config.JWTConfig,
	authConfig config.AuthConfig,
) *AuthService {
	if jwtConfig.Expiry <= 0 {
		jwtConfig.Expiry = 7 * 24 * time.Hour
	}
	return &AuthService{
		users:      users,
		sessions:   sessions,
		jwtConfig:  jwtConfig,
		authConfig: authConfig,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
}

// RegisterRequest contains the sign-up form
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// AuthResult is returned by a successful register or login
type AuthResult struct {
	User      *domain.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	IsNewUser bool         `json:"is_new_user"`
}

// ProfileUpdate carries the editable profile fields. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name   *string `json:"name"`
	Avatar *string `json:"avatar"`
}

// PreferencesUpdate carries the editable display settings. Nil fields are left unchanged.
type PreferencesUpdate struct {
	Theme             *string `json:"theme"`
	WeightUnit        *string `json:"weight_unit"`
	MeasurementSystem *string `json:"measurement_system"`
}

var allowedPreferences = map[string][]string{
	"theme":              {"light", "dark"},
	"weight_unit":        {"kg", "lbs"},
	"measurement_system": {"metric", "imperial"},
}

// Register creates an account and logs it in
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	user, err := s.createUser(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, user, true)
}

// Login checks the password and starts a new session, replacing any previous one.
// With auto-register enabled an unknown email is signed up on the fly.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		if !s.authConfig.AutoRegister {
			return nil, domain.ErrInvalidCredentials
		}
		user, err = s.createUser(ctx, RegisterRequest{Email: email, Password: password})
		if err != nil {
			return nil, err
		}
		return s.startSession(ctx, user, true)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return s.startSession(ctx, user, false)
}

// Logout ends the session and drops the user's in-memory workouts
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.users.DeleteSession(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.sessions.Close(userID)
	logrus.WithField("user_id", userID).Info("user logged out")
	return nil
}

// VerifyToken parses an access token and checks it belongs to the live session
func (s *AuthService) VerifyToken(ctx context.Context, tokenString string) (*domain.FitlogClaims, error) {
	claims := &domain.FitlogClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtConfig.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("%w: invalid or expired token", domain.ErrUnauthorized)
	}

	session, err := s.users.GetSession(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return nil, fmt.Errorf("%w: session ended", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if session.ID != claims.ID {
		return nil, fmt.Errorf("%w: session replaced", domain.ErrUnauthorized)
	}
	return claims, nil
}

// Me returns the public profile of the user
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, domain.NewValidationError("name", "name cannot be blank")
		}
		user.Name = name
	}
	if update.Avatar != nil {
		user.Avatar = strings.TrimSpace(*update.Avatar)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user.Public(), nil
}

func (s *AuthService) UpdatePreferences(ctx context.Context, userID string, update PreferencesUpdate) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	set := func(field string, value *string, dest *string) error {
		if value == nil {
			return nil
		}
		v := strings.ToLower(strings.TrimSpace(*value))
		for _, allowed := range allowedPreferences[field] {
			if v == allowed {
				*dest = v
				return nil
			}
		}
		return domain.NewValidationError(field, fmt.Sprintf("must be one of %s", strings.Join(allowedPreferences[field], ", ")))
	}
	if err := set("theme", update.Theme, &user.Preferences.Theme); err != nil {
		return nil, err
	}
	if err := set("weight_unit", update.WeightUnit, &user.Preferences.WeightUnit); err != nil {
		return nil, err
	}
	if err := set("measurement_system", update.MeasurementSystem, &user.Preferences.MeasurementSystem); err != nil {
		return nil, err
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update preferences: %w", err)
	}
	return user.Public(), nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return domain.ErrInvalidCredentials
	}
	if strings.TrimSpace(next) == "" {
		return domain.NewValidationError("new_password", "password cannot be blank")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	return s.users.Update(ctx, user)
}

func (s *AuthService) createUser(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, domain.NewValidationError("email", "email is required")
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return nil, domain.NewValidationError("email", "email is invalid")
	}
	if req.Password == "" {
		return nil, domain.NewValidationError("password", "password is required")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = email[:at]
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		ID:           generateULID(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Preferences:  domain.DefaultPreferences(),
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logrus.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

func (s *AuthService) startSession(ctx context.Context, user *domain.User, isNew bool) (*AuthResult, error) {
	now := s.now()
	session := &domain.Session{
		ID:        generateULID(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.jwtConfig.Expiry),
	}

	token, err := s.generateToken(user, session)
	if err != nil {
		return nil, err
	}
	if err := s.users.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	if _, err := s.sessions.Open(ctx, user.ID); err != nil {
		return nil, err
	}

	return &AuthResult{
		User:      user.Public(),
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		IsNewUser: isNew,
	}, nil
}

// generateToken creates a JWT carrying the session id as jti
func (s *AuthService) generateToken(user *domain.User, session *domain.Session) (string, error) {
	claims := domain.FitlogClaims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			NotBefore: jwt.NewNumericDate(session.CreatedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}
