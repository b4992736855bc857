package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"human-connection/internal/domain"
	"human-connection/internal/events"
	"human-connection/internal/middleware"
	"human-connection/internal/service"
	"human-connection/internal/service/auth"
	"human-connection/internal/service/comment"
	"human-connection/internal/service/media"
	"human-connection/internal/service/moderation"
	"human-connection/internal/service/notification"
	"human-connection/internal/service/post"
	"human-connection/internal/service/user"
)

type Handlers struct {
	Auth         *AuthHandler
	User         *UserHandler
	Post         *PostHandler
	Comment      *CommentHandler
	Notification *NotificationHandler
	Moderation   *ModerationHandler
	WebFinger    *WebFingerHandler
	Subscription *SubscriptionHandler
}

func NewHandlers(services *service.Services, bus events.Bus, logger *zap.Logger) *Handlers {
	return &Handlers{
		Auth:         NewAuthHandler(services.Auth),
		User:         NewUserHandler(services.User),
		Post:         NewPostHandler(services.Post, services.Media),
		Comment:      NewCommentHandler(services.Comment),
		Notification: NewNotificationHandler(services.Notification),
		Moderation:   NewModerationHandler(services.Moderation),
		WebFinger:    NewWebFingerHandler(services.Federation),
		Subscription: NewSubscriptionHandler(bus, logger.Named("subscriptions")),
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	return validateInput(out)
}

func validateInput(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return middleware.BadRequest("Invalid request body")
	}
	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		messages = append(messages, fieldMessage(fe))
	}
	return middleware.ValidationError(strings.Join(messages, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	case "min", "max", "len":
		return fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

func getPaginationParams(c *fiber.Ctx) domain.PaginationParams {
	params := domain.DefaultPagination()

	if page := c.QueryInt("page", 1); page > 0 {
		params.Page = page
	}
	if pageSize := c.QueryInt("page_size", 20); pageSize > 0 {
		params.PageSize = pageSize
	}

	params.Validate()
	return params
}

// serviceError translates service sentinels into HTTP errors. Unknown errors
// pass through and end up as 500s in the error handler.
func serviceError(err error) error {
	switch {
	case err == nil:
		return nil

	case errors.Is(err, post.ErrPostNotFound),
		errors.Is(err, comment.ErrCommentNotFound),
		errors.Is(err, comment.ErrPostNotFound),
		errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, moderation.ErrResourceNotFound):
		return middleware.NotFound(err.Error())

	case errors.Is(err, post.ErrNotAuthor),
		errors.Is(err, comment.ErrNotAuthor),
		errors.Is(err, auth.ErrUserDisabled):
		return middleware.Forbidden(err.Error())

	case errors.Is(err, post.ErrSlugExists),
		errors.Is(err, auth.ErrSlugExists),
		errors.Is(err, auth.ErrEmailExists),
		errors.Is(err, user.ErrEmailExists):
		return middleware.Conflict(err.Error())

	case errors.Is(err, auth.ErrInvalidCredentials):
		return middleware.Unauthorized(err.Error())

	case errors.Is(err, media.ErrImageTooLarge):
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, err.Error())

	case errors.Is(err, post.ErrInvalidEmotion),
		errors.Is(err, post.ErrEmptyQuery),
		errors.Is(err, user.ErrBlockYourself),
		errors.Is(err, user.ErrInvalidNonce),
		errors.Is(err, moderation.ErrUnknownKind),
		errors.Is(err, moderation.ErrReportYourself),
		errors.Is(err, notification.ErrReasonNotAllowed),
		errors.Is(err, notification.ErrReasonMismatch),
		errors.Is(err, media.ErrUnsupportedImage):
		return middleware.BadRequest(err.Error())
	}
	return err
}
