package api

import (
	"context"
	"errors"
	"io"

	"studydesk/internal/model"
	"studydesk/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type chatRequest struct {
	Message string `json:"message" validate:"required,max=8000"`
}

func (h *Handler) Chat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	response, err := h.gate.GuardedCall(c.Context(), userID(c), func(ctx context.Context) (string, error) {
		return h.generator.Generate(ctx, req.Message)
	})
	if err != nil {
		return aiError(c, err)
	}
	return c.JSON(fiber.Map{"response": response})
}

func (h *Handler) GenerateQuiz(c *fiber.Ctx) error {
	var req service.GenerateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	quiz, err := h.quizzes.Generate(c.Context(), userID(c), req)
	if err != nil {
		return aiError(c, err)
	}
	return c.JSON(quiz)
}

func (h *Handler) UploadCourseDocument(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("document")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "document file is required"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "failed to open document"})
	}
	defer file.Close()

	key, err := h.courses.Upload(c.Context(), userID(c), fileHeader.Filename,
		io.Reader(file), fileHeader.Header.Get("Content-Type"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to store document"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"key": key})
}

type processCourseRequest struct {
	Key string `json:"key" validate:"required"`
}

func (h *Handler) ProcessCourse(c *fiber.Ctx) error {
	var req processCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	outline, err := h.courses.Process(c.Context(), userID(c), req.Key)
	if err != nil {
		return aiError(c, err)
	}
	return c.JSON(fiber.Map{"outline": outline})
}

func (h *Handler) GetUsage(c *fiber.Ctx) error {
	uid := userID(c)

	plan, err := h.ledger.ActivePlanFor(c.Context(), uid)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to resolve plan"})
	}

	resp := fiber.Map{"plan": plan, "limit": nil, "used_today": 0, "remaining": nil}
	ceiling, bounded := h.catalog.CeilingFor(plan)

	used, err := h.usage.CountFor(c.Context(), uid, service.Today())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read usage"})
	}
	resp["used_today"] = used

	if bounded {
		remaining := ceiling - used
		if remaining < 0 {
			remaining = 0
		}
		resp["limit"] = ceiling
		resp["remaining"] = remaining
	}
	return c.JSON(resp)
}

func (h *Handler) GetSubscription(c *fiber.Ctx) error {
	sub, err := h.ledger.ActiveSubscriptionFor(c.Context(), userID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read subscription"})
	}
	if sub == nil {
		return c.JSON(fiber.Map{"plan": model.PlanFree, "subscription": nil})
	}
	return c.JSON(fiber.Map{"plan": sub.Plan, "subscription": sub})
}

type createSubscriptionRequest struct {
	Plan        model.Plan `json:"plan" validate:"required,oneof=STUDENT PREMIUM"`
	Provider    string     `json:"provider" validate:"required"`
	ProviderRef string     `json:"provider_ref" validate:"required"`
}

func (h *Handler) CreateSubscription(c *fiber.Ctx) error {
	var req createSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	sub, err := h.ledger.Create(c.Context(), userID(c), req.Plan, req.Provider, req.ProviderRef)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPlan):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrDuplicateProviderRef):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create subscription"})
		}
	}
	return c.Status(fiber.StatusCreated).JSON(sub)
}

func (h *Handler) CancelSubscription(c *fiber.Ctx) error {
	sub, err := h.ledger.Cancel(c.Context(), userID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to cancel subscription"})
	}
	if sub == nil {
		return c.JSON(fiber.Map{"canceled": false})
	}
	return c.JSON(fiber.Map{"canceled": true, "subscription": sub})
}

func (h *Handler) ListNotifications(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	unreadOnly := c.QueryBool("unread", false)

	notifications, err := h.notifier.List(c.Context(), userID(c), limit, unreadOnly)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list notifications"})
	}
	return c.JSON(fiber.Map{"notifications": notifications})
}

func (h *Handler) GetUnreadCount(c *fiber.Ctx) error {
	count, err := h.notifier.UnreadCount(c.Context(), userID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to count notifications"})
	}
	return c.JSON(fiber.Map{"unread": count})
}

func (h *Handler) MarkNotificationRead(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid notification id"})
	}

	notification, err := h.notifier.MarkRead(c.Context(), id, userID(c))
	if err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "notification not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to mark notification read"})
	}
	return c.JSON(notification)
}

func (h *Handler) MarkAllNotificationsRead(c *fiber.Ctx) error {
	count, err := h.notifier.MarkAllRead(c.Context(), userID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to mark notifications read"})
	}
	return c.JSON(fiber.Map{"marked": count})
}

func (h *Handler) BillingWebhook(c *fiber.Ctx) error {
	signature := c.Get("Stripe-Signature")
	if err := h.billing.Handle(c.Context(), c.Body(), signature); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "webhook processing failed"})
	}
	return c.SendStatus(fiber.StatusOK)
}
