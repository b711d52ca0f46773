package server

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/mansoorceksport/fitlog/internal/config"
	"github.com/mansoorceksport/fitlog/internal/domain"
	"github.com/mansoorceksport/fitlog/internal/handler"
	"github.com/mansoorceksport/fitlog/internal/middleware"
	"github.com/mansoorceksport/fitlog/internal/repository"
	"github.com/mansoorceksport/fitlog/internal/service"
	"github.com/mansoorceksport/fitlog/internal/telemetry"
	"github.com/sirupsen/logrus"
)

const idempotencyTTL = 24 * time.Hour

// AppDependencies holds the dependencies required to start the application
type AppDependencies struct {
	Config  *config.Config
	Store   domain.KeyValueStore   // Redis or MongoDB
	Catalog domain.ExerciseCatalog // wger client
	Files   domain.FileRepository  // nil disables export publishing
}

// NewApp creates and configures the Fiber application with the given dependencies
func NewApp(deps AppDependencies) *fiber.App {
	// Repositories
	workoutStore := repository.NewKVWorkoutStore(deps.Store)
	userRepo := repository.NewKVUserRepository(deps.Store)

	// Services
	sessions := service.NewWorkoutSessions(workoutStore, deps.Config.Location())
	authService := service.NewAuthService(userRepo, sessions, deps.Config.JWT, deps.Config.Auth)
	analyticsService := service.NewAnalyticsService(sessions, deps.Config.Location())
	catalogService := service.NewCatalogService(deps.Catalog)
	exportService := service.NewExportService(deps.Files)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, catalogService)
	workoutHandler := handler.NewWorkoutHandler(sessions, exportService, deps.Config.Location())
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)
	exerciseHandler := handler.NewExerciseHandler(catalogService)

	app := fiber.New(fiber.Config{
		AppName:      "FitLog API",
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Correlation-ID",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))
	app.Use(telemetry.FiberMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "fitlog",
		})
	})

	v1 := app.Group("/v1")
	requireAuth := middleware.VerifyToken(authService)
	idempotent := middleware.IdempotencyMiddleware(deps.Store, idempotencyTTL)

	// Auth endpoints
	auth := v1.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/logout", requireAuth, authHandler.Logout)

	// ===========================================
	// USER API - /v1/me/*
	// ===========================================
	me := v1.Group("/me", requireAuth, idempotent)
	me.Get("/", authHandler.Me)
	me.Patch("/", authHandler.UpdateProfile)
	me.Patch("/preferences", authHandler.UpdatePreferences)
	me.Post("/password", authHandler.ChangePassword)

	workouts := me.Group("/workouts")
	workouts.Get("/", workoutHandler.ListWorkouts)
	workouts.Post("/", workoutHandler.CreateWorkout)
	workouts.Post("/bulk-delete", workoutHandler.BulkDeleteWorkouts)
	workouts.Post("/export", workoutHandler.ExportWorkouts)
	workouts.Get("/:id", workoutHandler.GetWorkout)
	workouts.Put("/:id", workoutHandler.UpdateWorkout)
	workouts.Delete("/:id", workoutHandler.DeleteWorkout)
	workouts.Post("/:id/duplicate", workoutHandler.DuplicateWorkout)
	workouts.Post("/:id/template", workoutHandler.SaveWorkoutAsTemplate)

	templates := me.Group("/templates")
	templates.Get("/", workoutHandler.ListTemplates)
	templates.Post("/", workoutHandler.CreateTemplate)
	templates.Delete("/:id", workoutHandler.DeleteTemplate)
	templates.Post("/:id/instantiate", workoutHandler.InstantiateTemplate)

	meAnalytics := me.Group("/analytics")
	meAnalytics.Get("/summary", analyticsHandler.GetSummary)
	meAnalytics.Get("/daily", analyticsHandler.GetDaily)
	meAnalytics.Get("/comparison", analyticsHandler.GetComparison)
	meAnalytics.Get("/history", analyticsHandler.GetHistory)
	meAnalytics.Get("/dashboard", analyticsHandler.GetDashboard)

	// ===========================================
	// EXERCISE CATALOG - /v1/exercises/*
	// ===========================================
	exercises := v1.Group("/exercises", requireAuth)
	exercises.Get("/", exerciseHandler.SearchExercises)
	exercises.Get("/muscles", exerciseHandler.ListMuscleGroups)
	exercises.Get("/status", exerciseHandler.CatalogStatus)
	exercises.Get("/:id", exerciseHandler.GetExercise)

	return app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		logrus.WithError(err).WithField("path", c.Path()).Error("unhandled error")
	}
	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}
