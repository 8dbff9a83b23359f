package http

import (
	"errors"

	"coach-portal/internal/coaching/usecase"
	apperrors "coach-portal/internal/shared/errors"
	"coach-portal/internal/shared/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// Handler serves the coaching REST surface: the collection resource, notification
// dispatch, the reminder sweep, uploads, the change feed and the dashboard.
type Handler struct {
	Store         usecase.CollectionStore
	Notifications usecase.NotificationUsecase
	Reminders     usecase.ReminderUsecase
	Uploads       usecase.UploadUsecase
	Realtime      usecase.RealtimeUsecase
	Dashboard     usecase.DashboardUsecase
	CronSecret    string
	Log           logger.Logger
}

// Guards are optional middleware chains placed in front of route groups.
type Guards struct {
	Data  []fiber.Handler
	Staff []fiber.Handler
}

func NewHandler(
	store usecase.CollectionStore,
	notifications usecase.NotificationUsecase,
	reminders usecase.ReminderUsecase,
	uploads usecase.UploadUsecase,
	realtime usecase.RealtimeUsecase,
	dashboard usecase.DashboardUsecase,
	cronSecret string,
	log logger.Logger,
) *Handler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Handler{
		Store:         store,
		Notifications: notifications,
		Reminders:     reminders,
		Uploads:       uploads,
		Realtime:      realtime,
		Dashboard:     dashboard,
		CronSecret:    cronSecret,
		Log:           log.WithComponent("coaching-http"),
	}
}

func (h *Handler) RegisterRoutes(router fiber.Router, guards Guards) {
	data := router.Group("/data", guards.Data...)
	data.Get("/:collection", h.ListRecords)
	data.Post("/:collection", h.CreateRecord)
	data.Put("/:collection", h.UpdateRecord)
	data.Delete("/:collection", h.DeleteRecord)

	router.Post("/notifications/send", append(toHandlers(guards.Staff), h.SendNotification)...)
	router.Get("/dashboard/summary", append(toHandlers(guards.Staff), h.DashboardSummary)...)

	// the cron endpoint carries its own bearer secret
	router.Get("/cron/reminders", h.RunReminders)

	router.Post("/upload", h.Upload)
	router.Get("/files/:folder/:name", h.DownloadFile)

	// the change feed exposes every collection, so it sits behind the staff chain
	router.Get("/changes/:collection", append(toHandlers(guards.Staff), h.ReplayChanges)...)
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/ws/changes", append(toHandlers(guards.Staff), websocket.New(h.streamChanges))...)
}

// toHandlers copies the guard chain so appending a route handler never aliases it.
func toHandlers(handlers []fiber.Handler) []fiber.Handler {
	return append([]fiber.Handler(nil), handlers...)
}

// respondError answers client errors with {error: message}. Server-side failures
// are returned to Fiber so the app's ErrorHandler logs them and answers 500.
func respondError(c *fiber.Ctx, err error) error {
	status := apperrors.HTTPStatus(err)
	if status >= fiber.StatusInternalServerError && status != fiber.StatusServiceUnavailable {
		return err
	}
	return c.Status(status).JSON(fiber.Map{"error": errorMessage(err)})
}

func errorMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// ErrorHandler is the application-wide Fiber error handler. Fiber's own errors keep
// their status; anything else is logged and answered with a bare 500.
func ErrorHandler(log logger.Logger) fiber.ErrorHandler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}
		log.WithContext(c.UserContext()).Errorf("%s %s failed: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal Server Error",
		})
	}
}
