package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/fitlog/internal/domain"
	"github.com/mansoorceksport/fitlog/internal/service"
)

// ExerciseHandler proxies the external exercise catalog
type ExerciseHandler struct {
	catalogService *service.CatalogService
}

func NewExerciseHandler(catalogService *service.CatalogService) *ExerciseHandler {
	return &ExerciseHandler{catalogService: catalogService}
}

// exerciseView adds the plain-text description the browser cards show
type exerciseView struct {
	domain.ExerciseSummary
	PlainDescription string `json:"plain_description"`
}

func toExerciseView(e domain.ExerciseSummary) exerciseView {
	return exerciseView{ExerciseSummary: e, PlainDescription: e.PlainDescription()}
}

// SearchExercises GET /v1/exercises?search=&muscle=
// A search overtaken by a newer one from the same user answers 409.
func (h *ExerciseHandler) SearchExercises(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}

	results, err := h.catalogService.Search(c.UserContext(), userID, domain.ExerciseQuery{
		Term:          c.Query("search"),
		MuscleGroupID: c.Query("muscle"),
	})
	if err != nil {
		return respondError(c, err)
	}

	views := make([]exerciseView, 0, len(results))
	for _, e := range results {
		views = append(views, toExerciseView(e))
	}
	return respondData(c, fiber.StatusOK, views)
}

// ListMuscleGroups GET /v1/exercises/muscles
func (h *ExerciseHandler) ListMuscleGroups(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}

	groups, err := h.catalogService.MuscleGroups(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, groups)
}

// CatalogStatus GET /v1/exercises/status
func (h *ExerciseHandler) CatalogStatus(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, h.catalogService.Status(userID))
}

// GetExercise GET /v1/exercises/:id
func (h *ExerciseHandler) GetExercise(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return respondError(c, domain.NewValidationError("id", "exercise id must be a positive integer"))
	}

	exercise, err := h.catalogService.Exercise(c.UserContext(), userID, id)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, toExerciseView(*exercise))
}
