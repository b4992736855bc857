package handler

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"

	"human-connection/internal/domain"
	"human-connection/internal/middleware"
	"human-connection/internal/service/media"
	"human-connection/internal/service/post"
)

type PostHandler struct {
	postService  post.Service
	mediaService media.Service
}

func NewPostHandler(postService post.Service, mediaService media.Service) *PostHandler {
	return &PostHandler{postService: postService, mediaService: mediaService}
}

// List serves the Post query. An optional `filter` query parameter carries a
// JSON encoded post filter.
func (h *PostHandler) List(c *fiber.Ctx) error {
	var filter domain.PostFilter
	if raw := c.Query("filter"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &filter); err != nil {
			return middleware.BadRequest("Invalid filter")
		}
	}

	result, err := h.postService.List(c.Context(), middleware.GetViewer(c), filter, getPaginationParams(c))
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *PostHandler) Search(c *fiber.Ctx) error {
	result, err := h.postService.Search(c.Context(), middleware.GetViewer(c), c.Query("query"), getPaginationParams(c))
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *PostHandler) ProfilePosts(c *fiber.Ctx) error {
	result, err := h.postService.ProfilePosts(c.Context(), middleware.GetViewer(c), c.Params("id"), getPaginationParams(c))
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *PostHandler) Related(c *fiber.Ctx) error {
	posts, err := h.postService.RelatedContributions(c.Context(), middleware.GetViewer(c), c.Params("id"))
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": posts})
}

func (h *PostHandler) Get(c *fiber.Ctx) error {
	p, err := h.postService.GetByID(c.Context(), middleware.GetViewer(c), c.Params("id"))
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusOK).JSON(p)
}

func (h *PostHandler) Create(c *fiber.Ctx) error {
	var input domain.CreatePostInput
	if isMultipart(c) {
		input = domain.CreatePostInput{
			ID:          c.FormValue("id"),
			Title:       c.FormValue("title"),
			Content:     c.FormValue("content"),
			Slug:        optionalForm(c, "slug"),
			Language:    optionalForm(c, "language"),
			CategoryIDs: splitList(c.FormValue("categoryIds")),
		}
		if err := validateInput(&input); err != nil {
			return err
		}
		image, err := h.uploadImage(c)
		if err != nil {
			return err
		}
		input.Image = image
	} else if err := parseBody(c, &input); err != nil {
		return err
	}

	created, err := h.postService.Create(c.Context(), middleware.GetViewer(c), input)
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *PostHandler) Update(c *fiber.Ctx) error {
	var input domain.UpdatePostInput
	if isMultipart(c) {
		input = domain.UpdatePostInput{
			Title:       c.FormValue("title"),
			Content:     c.FormValue("content"),
			Slug:        optionalForm(c, "slug"),
			Language:    optionalForm(c, "language"),
			CategoryIDs: splitList(c.FormValue("categoryIds")),
		}
		if err := validateInput(&input); err != nil {
			return err
		}
		image, err := h.uploadImage(c)
		if err != nil {
			return err
		}
		input.Image = image
	} else if err := parseBody(c, &input); err != nil {
		return err
	}
	input.ID = c.Params("id")

	updated, err := h.postService.Update(c.Context(), middleware.GetViewer(c), input)
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusOK).JSON(updated)
}

func (h *PostHandler) Delete(c *fiber.Ctx) error {
	deleted, err := h.postService.Delete(c.Context(), middleware.GetViewer(c), c.Params("id"))
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusOK).JSON(deleted)
}

// Pin answers with null when the post was not pinned.
func (h *PostHandler) Pin(c *fiber.Ctx) error {
	pinned, err := h.postService.Pin(c.Context(), middleware.GetViewer(c), c.Params("id"))
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusOK).JSON(pinned)
}

func (h *PostHandler) Unpin(c *fiber.Ctx) error {
	unpinned, err := h.postService.Unpin(c.Context(), c.Params("id"))
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusOK).JSON(unpinned)
}

func (h *PostHandler) AddEmotion(c *fiber.Ctx) error {
	var input domain.EmotionInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	emoted, err := h.postService.AddEmotion(c.Context(), middleware.GetViewer(c), c.Params("id"), input.Emotion)
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusOK).JSON(emoted)
}

func (h *PostHandler) RemoveEmotion(c *fiber.Ctx) error {
	var input domain.EmotionInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	emoted, err := h.postService.RemoveEmotion(c.Context(), middleware.GetViewer(c), c.Params("id"), input.Emotion)
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusOK).JSON(emoted)
}

func (h *PostHandler) EmotionsCount(c *fiber.Ctx) error {
	emotion := domain.Emotion(c.Query("emotion"))

	count, err := h.postService.EmotionsCount(c.Context(), c.Params("id"), emotion)
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"emotion": emotion, "count": count})
}

func (h *PostHandler) MyEmotions(c *fiber.Ctx) error {
	emotions, err := h.postService.EmotionsByViewer(c.Context(), middleware.GetViewer(c), c.Params("id"))
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": emotions})
}

func (h *PostHandler) uploadImage(c *fiber.Ctx) (*string, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return nil, nil
	}
	if h.mediaService == nil {
		return nil, middleware.BadRequest("image uploads are not available")
	}

	reader, err := file.Open()
	if err != nil {
		return nil, middleware.BadRequest("Invalid image")
	}
	defer reader.Close()

	imageURL, err := h.mediaService.UploadPostImage(c.Context(), middleware.GetCurrentUserID(c), file.Size, file.Header.Get("Content-Type"), reader)
	if err != nil {
		return nil, serviceError(err)
	}
	return &imageURL, nil
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm)
}

func optionalForm(c *fiber.Ctx, key string) *string {
	value := strings.TrimSpace(c.FormValue(key))
	if value == "" {
		return nil
	}
	return &value
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
