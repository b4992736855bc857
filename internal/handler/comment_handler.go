package handler

import (
	"github.com/gofiber/fiber/v2"

	"human-connection/internal/domain"
	"human-connection/internal/middleware"
	"human-connection/internal/service/comment"
)

type CommentHandler struct {
	commentService comment.Service
}

func NewCommentHandler(commentService comment.Service) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

func (h *CommentHandler) Create(c *fiber.Ctx) error {
	var input domain.CreateCommentInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	input.PostID = c.Params("id")

	comment, err := h.commentService.Create(c.Context(), middleware.GetViewer(c), input)
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}

func (h *CommentHandler) ListByPost(c *fiber.Ctx) error {
	params := getPaginationParams(c)

	result, err := h.commentService.ListByPost(c.Context(), middleware.GetViewer(c), c.Params("id"), params)
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *CommentHandler) Update(c *fiber.Ctx) error {
	var input domain.UpdateCommentInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	input.ID = c.Params("id")

	comment, err := h.commentService.Update(c.Context(), middleware.GetViewer(c), input)
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusOK).JSON(comment)
}
