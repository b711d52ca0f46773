package telemetry

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
)

func TestBasicAuthHeaders(t *testing.T) {
	assert.Nil(t, BasicAuthHeaders("", ""))

	headers := BasicAuthHeaders("12345", "glc_token")
	// base64("12345:glc_token")
	assert.Equal(t, "Basic MTIzNDU6Z2xjX3Rva2Vu", headers["Authorization"])
}

func TestInitialize_Disabled(t *testing.T) {
	p, err := Initialize(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestFiberMiddleware_PassesThrough(t *testing.T) {
	app := fiber.New()
	app.Use(FiberMiddleware())
	app.Get("/ping", func(c *fiber.Ctx) error {
		SetSpanAttribute(c, "user.id", "u1")
		return c.SendString("pong")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "pong", string(body))
}

func TestSpanStatus(t *testing.T) {
	tests := []struct {
		status int
		want   codes.Code
	}{
		{status: fiber.StatusOK, want: codes.Unset},
		{status: fiber.StatusNotFound, want: codes.Unset},
		{status: fiber.StatusBadGateway, want: codes.Error},
	}
	for _, tt := range tests {
		code, _ := spanStatus(tt.status)
		assert.Equal(t, tt.want, code, "status %d", tt.status)
	}
}

func TestFiberMiddleware_ReportsHandlerErrors(t *testing.T) {
	app := fiber.New()
	app.Use(FiberMiddleware())
	app.Get("/missing", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "nope")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
