package http

import (
	"coach-portal/internal/coaching/usecase"
	apperrors "coach-portal/internal/shared/errors"

	"github.com/gofiber/fiber/v2"
)

// SendNotification handles POST /notifications/send.
func (h *Handler) SendNotification(c *fiber.Ctx) error {
	var in usecase.SendNotificationInput
	if err := c.App().Config().JSONDecoder(c.Body(), &in); err != nil {
		return respondError(c, apperrors.NewValidationError("Invalid JSON body").WithCause(apperrors.ErrInvalidInput))
	}

	result, err := h.Notifications.Send(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}
