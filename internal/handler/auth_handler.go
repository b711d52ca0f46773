package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/fitlog/internal/service"
)

// AuthHandler handles authentication and profile endpoints
type AuthHandler struct {
	authService    *service.AuthService
	catalogService *service.CatalogService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, catalogService *service.CatalogService) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		catalogService: catalogService,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type passwordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func authResponse(res *service.AuthResult) fiber.Map {
	message := "Welcome back!"
	if res.IsNewUser {
		message = "Welcome! Your account has been created."
	}
	return fiber.Map{
		"token":       res.Token,
		"expires_at":  res.ExpiresAt,
		"is_new_user": res.IsNewUser,
		"message":     message,
		"user":        res.User,
	}
}

// Register handles POST /v1/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req service.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, invalidBody())
	}

	res, err := h.authService.Register(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusCreated, authResponse(res))
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, invalidBody())
	}

	res, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, authResponse(res))
}

// Logout handles POST /v1/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.authService.Logout(c.UserContext(), userID); err != nil {
		return respondError(c, err)
	}
	h.catalogService.Forget(userID)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged out successfully",
	})
}

// Me handles GET /v1/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}

	user, err := h.authService.Me(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, user)
}

// UpdateProfile handles PATCH /v1/me
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}

	var req service.ProfileUpdate
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, invalidBody())
	}

	user, err := h.authService.UpdateProfile(c.UserContext(), userID, req)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, user)
}

// UpdatePreferences handles PATCH /v1/me/preferences
func (h *AuthHandler) UpdatePreferences(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}

	var req service.PreferencesUpdate
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, invalidBody())
	}

	user, err := h.authService.UpdatePreferences(c.UserContext(), userID, req)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, user)
}

// ChangePassword handles POST /v1/me/password
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}

	var req passwordRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, invalidBody())
	}

	if err := h.authService.ChangePassword(c.UserContext(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Password updated",
	})
}
