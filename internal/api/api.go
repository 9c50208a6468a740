package api

import (
	"errors"
	"time"

	"studydesk/internal/middleware"
	"studydesk/internal/repository"
	"studydesk/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handler exposes the quota engine's boundary interfaces over HTTP. Handlers
// stay thin: parse, validate, delegate, map errors.
type Handler struct {
	repo      repository.Repository
	ledger    *service.SubscriptionLedger
	catalog   *service.PlanCatalog
	usage     *service.UsageCounter
	gate      *service.QuotaGate
	generator service.Generator
	quizzes   *service.QuizService
	courses   *service.CourseService
	notifier  *service.NotificationLog
	billing   *service.BillingWebhook
	validate  *validator.Validate
}

func NewHandler(
	repo repository.Repository,
	ledger *service.SubscriptionLedger,
	catalog *service.PlanCatalog,
	usage *service.UsageCounter,
	gate *service.QuotaGate,
	generator service.Generator,
	quizzes *service.QuizService,
	courses *service.CourseService,
	notifier *service.NotificationLog,
	billing *service.BillingWebhook,
) *Handler {
	return &Handler{
		repo:      repo,
		ledger:    ledger,
		catalog:   catalog,
		usage:     usage,
		gate:      gate,
		generator: generator,
		quizzes:   quizzes,
		courses:   courses,
		notifier:  notifier,
		billing:   billing,
		validate:  validator.New(),
	}
}

func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/health", h.Health)
	app.Post("/webhooks/billing", h.BillingWebhook)

	api := app.Group("/api", middleware.Identity())
	api.Post("/ai/chat", h.Chat)
	api.Post("/quizzes/generate", h.GenerateQuiz)
	api.Post("/courses", h.UploadCourseDocument)
	api.Post("/courses/process", h.ProcessCourse)
	api.Get("/usage", h.GetUsage)
	api.Get("/subscription", h.GetSubscription)
	api.Post("/subscription", h.CreateSubscription)
	api.Delete("/subscription", h.CancelSubscription)
	api.Get("/notifications", h.ListNotifications)
	api.Get("/notifications/unread-count", h.GetUnreadCount)
	api.Post("/notifications/:id/read", h.MarkNotificationRead)
	api.Post("/notifications/read-all", h.MarkAllNotificationsRead)
}

func (h *Handler) Health(c *fiber.Ctx) error {
	if err := h.repo.HealthCheck(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
			"error":  "database connection failed",
		})
	}
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func userID(c *fiber.Ctx) uuid.UUID {
	return c.Locals(middleware.UserIDKey).(uuid.UUID)
}

// aiError maps a failure on the AI path to a response. A quota denial is a
// rate-limit with enough structure for the UI to render an upgrade prompt,
// not a caller bug.
func aiError(c *fiber.Ctx, err error) error {
	var quotaErr *service.QuotaExceededError
	if errors.As(err, &quotaErr) {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"message":      quotaErr.Error(),
			"code":         "QUOTA_EXCEEDED",
			"plan":         quotaErr.Plan,
			"limit":        quotaErr.Limit,
			"currentUsage": quotaErr.CurrentUsage,
		})
	}
	return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
		"error": "AI request failed",
	})
}
