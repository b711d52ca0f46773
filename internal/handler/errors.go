package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/fitlog/internal/domain"
	"github.com/mansoorceksport/fitlog/internal/middleware"
	"github.com/sirupsen/logrus"
)

const dayLayout = "2006-01-02"

// errorStatus maps a service error to its HTTP status
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case domain.IsNotFound(err),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrExerciseNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrStaleResponse), errors.Is(err, domain.ErrEmailTaken):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrCatalogUnavailable):
		return fiber.StatusBadGateway
	case errors.Is(err, domain.ErrStorageUnavailable), errors.Is(err, domain.ErrFileStorageDisabled):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes the {"success": false, "error": ...} envelope. Validation
// errors also carry the offending field.
func respondError(c *fiber.Ctx, err error) error {
	status := errorStatus(err)
	body := fiber.Map{
		"success": false,
		"error":   err.Error(),
	}

	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		body["error"] = vErr.Message
		body["field"] = vErr.Field
	}

	if status >= fiber.StatusInternalServerError {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
		}).Error("request failed")
	}
	return c.Status(status).JSON(body)
}

func respondData(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func requireUser(c *fiber.Ctx) (string, error) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return "", domain.ErrUnauthorized
	}
	return userID, nil
}

func invalidBody() error {
	return domain.NewValidationError("body", "invalid request body")
}

// parseDay reads a YYYY-MM-DD query value as the start of that day in loc
func parseDay(field, value string, loc *time.Location) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dayLayout, value, loc)
	if err != nil {
		return nil, domain.NewValidationError(field, "expected a date formatted YYYY-MM-DD")
	}
	return &t, nil
}

// historyFilter builds a filter from q, date, from and to. to covers its whole day.
func historyFilter(c *fiber.Ctx, loc *time.Location) (domain.HistoryFilter, error) {
	filter := domain.HistoryFilter{Query: c.Query("q")}

	if date := c.Query("date"); date != "" {
		if _, err := parseDay("date", date, loc); err != nil {
			return filter, err
		}
		filter.Date = date
	}

	from, err := parseDay("from", c.Query("from"), loc)
	if err != nil {
		return filter, err
	}
	filter.From = from

	to, err := parseDay("to", c.Query("to"), loc)
	if err != nil {
		return filter, err
	}
	if to != nil {
		end := to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		filter.To = &end
	}
	return filter, nil
}
