package usecase

import (
	"context"
	"strings"
	"time"

	"coach-portal/internal/coaching/domain/model"
	"coach-portal/internal/coaching/domain/repository"
	apperrors "coach-portal/internal/shared/errors"
	"coach-portal/internal/shared/logger"
)

// isoMillis matches the timestamps the portal front end writes.
const isoMillis = "2006-01-02T15:04:05.000Z"

// SendNotificationInput is the body of POST /notifications/send.
type SendNotificationInput struct {
	AthleteID    string `json:"athleteId"`
	Title        string `json:"title"`
	Message      string `json:"message"`
	Type         string `json:"type"`
	Link         string `json:"link,omitempty"`
	SendEmail    *bool  `json:"sendEmail,omitempty"`
	AthleteEmail string `json:"athleteEmail,omitempty"`
}

// WantsEmail defaults to true when sendEmail is omitted.
func (in SendNotificationInput) WantsEmail() bool {
	return in.SendEmail == nil || *in.SendEmail
}

// SendNotificationResult reports the stored notification and whether email went out.
type SendNotificationResult struct {
	Notification model.Notification `json:"notification"`
	EmailSent    bool               `json:"emailSent"`
}

type NotificationUsecase interface {
	Send(ctx context.Context, in SendNotificationInput) (*SendNotificationResult, error)
}

type notificationUsecase struct {
	notifications *Collection[model.Notification]
	mailer        repository.Mailer
	templates     EmailTemplates
	logger        logger.Logger
	now           func() time.Time
}

func NewNotificationUsecase(store CollectionStore, mailer repository.Mailer, templates EmailTemplates, log logger.Logger) NotificationUsecase {
	if log == nil {
		log = logger.NewNopLogger()
	}
	log = log.WithComponent("notifications")
	return &notificationUsecase{
		notifications: NewCollection[model.Notification](store, model.CollectionNotifications).WithLogger(log),
		mailer:        mailer,
		templates:     templates,
		logger:        log,
		now:           time.Now,
	}
}

// Send always stores the notification first. A failed email is reported as
// emailSent=false and leaves the notification in place.
func (uc *notificationUsecase) Send(ctx context.Context, in SendNotificationInput) (*SendNotificationResult, error) {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"athleteId", in.AthleteID},
		{"title", in.Title},
		{"message", in.Message},
		{"type", in.Type},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("Missing required fields").
			WithCause(apperrors.ErrMissingFields).
			WithDetail("missing", missing)
	}

	stored, err := uc.notifications.Insert(ctx, model.Notification{
		UserID:    model.AthleteUserID(in.AthleteID),
		Title:     in.Title,
		Message:   in.Message,
		Type:      in.Type,
		Link:      in.Link,
		Read:      false,
		CreatedAt: uc.now().UTC().Format(isoMillis),
	})
	if err != nil {
		return nil, err
	}

	result := &SendNotificationResult{Notification: stored}
	if !in.WantsEmail() || in.AthleteEmail == "" {
		return result, nil
	}

	email, err := uc.templates.Notification(in.AthleteEmail, in.Type, in.Title, in.Message, in.Link)
	if err != nil {
		uc.logger.WithContext(ctx).Errorf("render notification email: %v", err)
		return result, nil
	}
	result.EmailSent = uc.mailer.Send(ctx, email)
	return result, nil
}
