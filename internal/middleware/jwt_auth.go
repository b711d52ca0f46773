package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/fitlog/internal/domain"
	"github.com/mansoorceksport/fitlog/internal/telemetry"
)

// Context keys for storing user info
const (
	UserIDKey    = "userID"
	EmailKey     = "email"
	SessionIDKey = "session_id"
)

// TokenVerifier validates an access token against the live session
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*domain.FitlogClaims, error)
}

// VerifyToken validates the bearer JWT and stores its claims in the context
func VerifyToken(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get token from Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authorization token",
			})
		}

		// Extract token (format: "Bearer <token>")
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		claims, err := verifier.VerifyToken(c.UserContext(), tokenString)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid or expired token",
				})
			}
			if errors.Is(err, domain.ErrStorageUnavailable) {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error": "Session store unavailable",
				})
			}
			return err
		}

		// Store claims in context
		c.Locals(UserIDKey, claims.UserID)
		c.Locals(EmailKey, claims.Email)
		c.Locals(SessionIDKey, claims.ID)
		telemetry.SetSpanAttribute(c, "user.id", claims.UserID)

		return c.Next()
	}
}

// GetUserID returns the authenticated user id, or "" outside VerifyToken
func GetUserID(c *fiber.Ctx) string {
	userID, _ := c.Locals(UserIDKey).(string)
	return userID
}
