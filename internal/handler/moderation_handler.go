package handler

import (
	"github.com/gofiber/fiber/v2"

	"human-connection/internal/domain"
	"human-connection/internal/middleware"
	"human-connection/internal/service/moderation"
)

type ModerationHandler struct {
	moderationService moderation.Service
}

func NewModerationHandler(moderationService moderation.Service) *ModerationHandler {
	return &ModerationHandler{moderationService: moderationService}
}

func (h *ModerationHandler) Report(c *fiber.Ctx) error {
	var input domain.ReportInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	report, err := h.moderationService.Report(c.Context(), middleware.GetViewer(c), input)
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(report)
}

func (h *ModerationHandler) Disable(c *fiber.Ctx) error {
	target, err := moderationTarget(c)
	if err != nil {
		return err
	}

	if err := h.moderationService.Disable(c.Context(), middleware.GetViewer(c), target); err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"id": target.ID, "disabled": true})
}

func (h *ModerationHandler) Release(c *fiber.Ctx) error {
	target, err := moderationTarget(c)
	if err != nil {
		return err
	}

	if err := h.moderationService.Release(c.Context(), middleware.GetViewer(c), target); err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"id": target.ID, "disabled": false})
}

func moderationTarget(c *fiber.Ctx) (domain.ModerationTarget, error) {
	kind, err := moderation.ParseKind(c.Params("kind"))
	if err != nil {
		return domain.ModerationTarget{}, middleware.BadRequest(err.Error())
	}
	return domain.ModerationTarget{Kind: kind, ID: c.Params("id")}, nil
}
