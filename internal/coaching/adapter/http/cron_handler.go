package http

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// RunReminders handles GET /cron/reminders. The bearer secret is checked before
// any data is touched; an unset secret rejects every caller.
func (h *Handler) RunReminders(c *fiber.Ctx) error {
	if !h.cronAuthorized(c.Get(fiber.HeaderAuthorization)) {
		h.Log.WithContext(c.UserContext()).Warn("reminder sweep rejected: bad cron secret")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	result, err := h.Reminders.SendTomorrowReminders(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (h *Handler) cronAuthorized(header string) bool {
	if h.CronSecret == "" {
		return false
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.CronSecret)) == 1
}
