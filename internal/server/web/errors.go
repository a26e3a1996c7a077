package web

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/timeboard/internal/common"
)

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error, api bool) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, common.ErrValidation):
		if api {
			return fiber.StatusBadRequest
		}
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, common.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, common.ErrIndexOutOfRange),
		errors.Is(err, common.ErrImageDecode),
		errors.Is(err, common.ErrImageTooBig):
		return fiber.StatusBadRequest
	case errors.Is(err, common.ErrDraftBusy):
		return fiber.StatusConflict
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrSessionExpired):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// handleError renders the JSON envelope on /api paths and the error page
// everywhere else.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	api := isAPI(c)
	code := statusFor(err, api)

	message := err.Error()
	if code >= fiber.StatusInternalServerError {
		s.logger.Error(c.UserContext(), "request failed", "path", c.Path(), "error", err)
		message = "Something went wrong on our side. Please try again."
	}

	if api {
		body := fiber.Map{
			"success": false,
			"error":   message,
			"code":    code,
		}
		var verr *common.ValidationError
		if errors.As(err, &verr) {
			body["fields"] = verr.Fields
		}
		return c.Status(code).JSON(body)
	}

	return c.Status(code).Render("error", fiber.Map{
		"Title":        http.StatusText(code),
		"ErrorCode":    code,
		"ErrorTitle":   http.StatusText(code),
		"ErrorMessage": message,
	})
}
