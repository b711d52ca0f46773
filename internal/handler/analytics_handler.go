package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/fitlog/internal/domain"
	"github.com/mansoorceksport/fitlog/internal/service"
)

const maxChartDays = 366

// AnalyticsHandler handles HTTP requests for workout statistics
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

// chartDays reads ?days=N or ?range=week|month|quarter; a week by default
func chartDays(c *fiber.Ctx) (int, error) {
	if raw := c.Query("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 || days > maxChartDays {
			return 0, domain.NewValidationError("days", "days must be between 1 and 366")
		}
		return days, nil
	}
	return service.RangeDays(c.Query("range", "week"))
}

// GetSummary handles GET /v1/me/analytics/summary
func (h *AnalyticsHandler) GetSummary(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}

	summary, err := h.analyticsService.Summary(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, summary)
}

// GetDaily handles GET /v1/me/analytics/daily
func (h *AnalyticsHandler) GetDaily(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}
	days, err := chartDays(c)
	if err != nil {
		return respondError(c, err)
	}

	buckets, err := h.analyticsService.Daily(c.UserContext(), userID, days)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, buckets)
}

// GetComparison handles GET /v1/me/analytics/comparison
func (h *AnalyticsHandler) GetComparison(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}
	days, err := chartDays(c)
	if err != nil {
		return respondError(c, err)
	}

	comparison, err := h.analyticsService.Comparison(c.UserContext(), userID, days)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, comparison)
}

// GetHistory handles GET /v1/me/analytics/history
func (h *AnalyticsHandler) GetHistory(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}
	filter, err := historyFilter(c, h.analyticsService.Location())
	if err != nil {
		return respondError(c, err)
	}

	history, err := h.analyticsService.History(c.UserContext(), userID, filter)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, history)
}

// GetDashboard handles GET /v1/me/analytics/dashboard
func (h *AnalyticsHandler) GetDashboard(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}

	dashboard, err := h.analyticsService.Dashboard(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, dashboard)
}
