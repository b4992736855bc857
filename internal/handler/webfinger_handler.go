package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"human-connection/internal/service/federation"
)

const jrdContentType = "application/jrd+json"

type WebFingerHandler struct {
	federationService federation.Service
}

func NewWebFingerHandler(federationService federation.Service) *WebFingerHandler {
	return &WebFingerHandler{federationService: federationService}
}

// WebFinger resolves ?resource=acct:<user>@<domain>. Errors use the
// {"error": "..."} body fediverse clients expect rather than the API format.
func (h *WebFingerHandler) WebFinger(c *fiber.Ctx) error {
	resource, err := h.federationService.WebFinger(c.Context(), c.Query("resource"))
	if err != nil {
		var notFound *federation.NotFoundError
		switch {
		case errors.Is(err, federation.ErrMissingResource):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.As(err, &notFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": notFound.Error()})
		}
		return err
	}

	return c.Status(fiber.StatusOK).JSON(resource, jrdContentType)
}
