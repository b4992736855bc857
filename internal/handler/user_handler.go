package handler

import (
	"github.com/gofiber/fiber/v2"

	"human-connection/internal/domain"
	"human-connection/internal/middleware"
	"human-connection/internal/service/user"
)

type UserHandler struct {
	userService user.Service
}

func NewUserHandler(userService user.Service) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	u, err := h.userService.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return serviceError(err)
	}
	if u.Disabled && !middleware.IsModerator(c) {
		return middleware.NotFound(user.ErrUserNotFound.Error())
	}

	return c.Status(fiber.StatusOK).JSON(u)
}

func (h *UserHandler) Block(c *fiber.Ctx) error {
	blocked, err := h.userService.Block(c.Context(), middleware.GetViewer(c), c.Params("id"))
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusOK).JSON(blocked)
}

func (h *UserHandler) Unblock(c *fiber.Ctx) error {
	unblocked, err := h.userService.Unblock(c.Context(), middleware.GetViewer(c), c.Params("id"))
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusOK).JSON(unblocked)
}

func (h *UserHandler) Blocked(c *fiber.Ctx) error {
	ids, err := h.userService.BlockedUsers(c.Context(), middleware.GetViewer(c))
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": ids})
}

func (h *UserHandler) AddEmailAddress(c *fiber.Ctx) error {
	var input domain.AddEmailAddressInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	address, err := h.userService.AddEmailAddress(c.Context(), middleware.GetViewer(c), input)
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(address)
}

func (h *UserHandler) VerifyEmailAddress(c *fiber.Ctx) error {
	var input domain.VerifyEmailAddressInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	address, err := h.userService.VerifyEmailAddress(c.Context(), middleware.GetViewer(c), input)
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusOK).JSON(address)
}
