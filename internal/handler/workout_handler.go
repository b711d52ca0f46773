package handler

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/fitlog/internal/domain"
	"github.com/mansoorceksport/fitlog/internal/service"
)

// WorkoutHandler serves the workout log and the template library of the
// authenticated user
type WorkoutHandler struct {
	sessions      *service.WorkoutSessions
	exportService *service.ExportService
	loc           *time.Location
}

func NewWorkoutHandler(
	sessions *service.WorkoutSessions,
	exportService *service.ExportService,
	loc *time.Location,
) *WorkoutHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &WorkoutHandler{
		sessions:      sessions,
		exportService: exportService,
		loc:           loc,
	}
}

func (h *WorkoutHandler) repository(c *fiber.Ctx) (*service.WorkoutRepository, error) {
	userID, err := requireUser(c)
	if err != nil {
		return nil, err
	}
	return h.sessions.For(c.UserContext(), userID)
}

// --- Workouts ---

// ListWorkouts GET /v1/me/workouts?q=&date=&from=&to=
func (h *WorkoutHandler) ListWorkouts(c *fiber.Ctx) error {
	repo, err := h.repository(c)
	if err != nil {
		return respondError(c, err)
	}
	filter, err := historyFilter(c, h.loc)
	if err != nil {
		return respondError(c, err)
	}

	workouts := service.FilterHistory(repo.Workouts(), filter, h.loc)
	entries := make([]domain.HistoryEntry, 0, len(workouts))
	for _, w := range workouts {
		entries = append(entries, domain.HistoryEntry{Workout: w, Totals: service.Totals(w)})
	}
	return respondData(c, fiber.StatusOK, entries)
}

// CreateWorkout POST /v1/me/workouts
func (h *WorkoutHandler) CreateWorkout(c *fiber.Ctx) error {
	repo, err := h.repository(c)
	if err != nil {
		return respondError(c, err)
	}
	var req domain.WorkoutDraft
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, invalidBody())
	}

	workout, err := repo.Add(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusCreated, workout)
}

// GetWorkout GET /v1/me/workouts/:id
func (h *WorkoutHandler) GetWorkout(c *fiber.Ctx) error {
	repo, err := h.repository(c)
	if err != nil {
		return respondError(c, err)
	}

	workout, err := repo.Get(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, fiber.Map{
		"workout": workout,
		"totals":  service.Totals(workout),
	})
}

// UpdateWorkout PUT /v1/me/workouts/:id
func (h *WorkoutHandler) UpdateWorkout(c *fiber.Ctx) error {
	repo, err := h.repository(c)
	if err != nil {
		return respondError(c, err)
	}
	var req domain.WorkoutPatch
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, invalidBody())
	}

	workout, err := repo.Update(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, workout)
}

// DeleteWorkout DELETE /v1/me/workouts/:id
// Deleting an unknown id succeeds.
func (h *WorkoutHandler) DeleteWorkout(c *fiber.Ctx) error {
	repo, err := h.repository(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := repo.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "deleted"})
}

// BulkDeleteWorkouts POST /v1/me/workouts/bulk-delete
func (h *WorkoutHandler) BulkDeleteWorkouts(c *fiber.Ctx) error {
	repo, err := h.repository(c)
	if err != nil {
		return respondError(c, err)
	}
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, invalidBody())
	}
	if len(req.IDs) == 0 {
		return respondError(c, domain.NewValidationError("ids", "at least one id is required"))
	}

	deleted, err := repo.DeleteMany(c.UserContext(), req.IDs)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, fiber.Map{"deleted": deleted})
}

// DuplicateWorkout POST /v1/me/workouts/:id/duplicate
func (h *WorkoutHandler) DuplicateWorkout(c *fiber.Ctx) error {
	repo, err := h.repository(c)
	if err != nil {
		return respondError(c, err)
	}

	workout, err := repo.Duplicate(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusCreated, workout)
}

// SaveWorkoutAsTemplate POST /v1/me/workouts/:id/template
// An optional {"name": ...} body renames the template.
func (h *WorkoutHandler) SaveWorkoutAsTemplate(c *fiber.Ctx) error {
	repo, err := h.repository(c)
	if err != nil {
		return respondError(c, err)
	}
	var req struct {
		Name string `json:"name"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return respondError(c, invalidBody())
		}
	}

	workout, err := repo.Get(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	draft := domain.DraftFromRecord(workout)
	if name := strings.TrimSpace(req.Name); name != "" {
		draft.Name = name
	}

	template, err := repo.SaveAsTemplate(c.UserContext(), draft)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusCreated, template)
}

// ExportWorkouts POST /v1/me/workouts/export?format=json|csv&publish=true
// An optional {"ids": [...]} body selects the workouts; without it all are
// exported. Without publish the file is returned as a download.
func (h *WorkoutHandler) ExportWorkouts(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}
	repo, err := h.sessions.For(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}

	format, err := service.ParseExportFormat(strings.ToLower(c.Query("format")))
	if err != nil {
		return respondError(c, err)
	}

	var req struct {
		IDs []string `json:"ids"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return respondError(c, invalidBody())
		}
	}
	selected, err := service.SelectWorkouts(repo.Workouts(), req.IDs)
	if err != nil {
		return respondError(c, err)
	}

	file, err := h.exportService.Export(c.UserContext(), selected, format)
	if err != nil {
		return respondError(c, err)
	}

	if c.QueryBool("publish") {
		url, err := h.exportService.Publish(c.UserContext(), userID, file)
		if err != nil {
			return respondError(c, err)
		}
		return respondData(c, fiber.StatusOK, fiber.Map{
			"filename": file.Filename,
			"url":      url,
		})
	}

	c.Attachment(file.Filename)
	c.Set(fiber.HeaderContentType, file.ContentType)
	return c.Status(fiber.StatusOK).Send(file.Data)
}

// --- Templates ---

// ListTemplates GET /v1/me/templates
func (h *WorkoutHandler) ListTemplates(c *fiber.Ctx) error {
	repo, err := h.repository(c)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, repo.Templates())
}

// CreateTemplate POST /v1/me/templates
func (h *WorkoutHandler) CreateTemplate(c *fiber.Ctx) error {
	repo, err := h.repository(c)
	if err != nil {
		return respondError(c, err)
	}
	var req domain.WorkoutDraft
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, invalidBody())
	}

	template, err := repo.SaveAsTemplate(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusCreated, template)
}

// DeleteTemplate DELETE /v1/me/templates/:id
func (h *WorkoutHandler) DeleteTemplate(c *fiber.Ctx) error {
	repo, err := h.repository(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := repo.DeleteTemplate(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "deleted"})
}

// InstantiateTemplate POST /v1/me/templates/:id/instantiate
func (h *WorkoutHandler) InstantiateTemplate(c *fiber.Ctx) error {
	repo, err := h.repository(c)
	if err != nil {
		return respondError(c, err)
	}

	workout, err := repo.InstantiateFromTemplate(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusCreated, workout)
}
