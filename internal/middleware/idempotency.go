package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/fitlog/internal/domain"
	"github.com/sirupsen/logrus"
)

const IdempotencyHeader = "X-Correlation-ID"

type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// IdempotencyMiddleware provides idempotency for POST/PATCH/PUT/DELETE requests using X-Correlation-ID.
// If the same user sends the same correlation ID within the TTL, the stored response is replayed.
// Mount it after VerifyToken so keys are scoped per user.
func IdempotencyMiddleware(store domain.KeyValueStore, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Only apply to mutating methods
		switch c.Method() {
		case fiber.MethodPost, fiber.MethodPatch, fiber.MethodPut, fiber.MethodDelete:
		default:
			return c.Next()
		}

		correlationID := c.Get(IdempotencyHeader)
		if correlationID == "" {
			// No correlation ID = no idempotency check
			return c.Next()
		}

		key := fmt.Sprintf("idempotency:%s:%s:%s:%s", GetUserID(c), c.Method(), c.Path(), correlationID)
		ctx := c.UserContext()

		// Check if we have a cached response
		if data, err := store.Get(ctx, key); err == nil {
			var cached cachedResponse
			if json.Unmarshal(data, &cached) == nil {
				c.Set("X-Idempotent-Replay", "true")
				c.Set(fiber.HeaderContentType, cached.ContentType)
				return c.Status(cached.Status).Send(cached.Body)
			}
		}

		// Process the request
		if err := c.Next(); err != nil {
			return err
		}

		// Cache successful responses (2xx status codes)
		statusCode := c.Response().StatusCode()
		if statusCode < 200 || statusCode >= 300 {
			return nil
		}

		data, err := json.Marshal(cachedResponse{
			Status:      statusCode,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        append([]byte(nil), c.Response().Body()...),
		})
		if err != nil {
			return nil
		}

		setCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := store.Set(setCtx, key, data, ttl); err != nil {
			logrus.WithError(err).WithField("key", key).Warn("failed to store idempotent response")
		}

		return nil
	}
}
