package handler

import (
	"github.com/gofiber/fiber/v2"

	"human-connection/internal/domain"
	"human-connection/internal/middleware"
	"human-connection/internal/service/notification"
)

type NotificationHandler struct {
	notifService notification.Service
}

func NewNotificationHandler(notifService notification.Service) *NotificationHandler {
	return &NotificationHandler{notifService: notifService}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)
	unreadOnly := c.QueryBool("unread_only", false)
	params := getPaginationParams(c)

	result, err := h.notifService.List(c.Context(), userID, unreadOnly, params)
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *NotificationHandler) GetUnreadCount(c *fiber.Ctx) error {
	count, err := h.notifService.GetUnreadCount(c.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"count": count})
}

func (h *NotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	var input domain.MarkAsReadInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	notif, err := h.notifService.MarkAsRead(c.Context(), middleware.GetCurrentUserID(c), input)
	if err != nil {
		return serviceError(err)
	}
	if notif == nil {
		return middleware.NotFound("notification not found")
	}

	return c.Status(fiber.StatusOK).JSON(notif)
}

func (h *NotificationHandler) MarkAllAsRead(c *fiber.Ctx) error {
	if err := h.notifService.MarkAllAsRead(c.Context(), middleware.GetCurrentUserID(c)); err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusNoContent).SendString("")
}
