package usecase

import (
	"context"
	"strings"
	"time"

	"coach-portal/internal/coaching/domain/model"
	"coach-portal/internal/coaching/domain/repository"
	"coach-portal/internal/shared/eventbus"
	"coach-portal/internal/shared/logger"
)

// ReminderResult is the body returned by the reminder sweep.
type ReminderResult struct {
	Message string `json:"message"`
	Total   int    `json:"total"`
	Sent    int    `json:"sent"`
}

type ReminderUsecase interface {
	// SendTomorrowReminders emails athletes with a scheduled appointment tomorrow.
	SendTomorrowReminders(ctx context.Context) (*ReminderResult, error)
}

type reminderUsecase struct {
	appointments *Collection[model.Appointment]
	athleteUsers *Collection[model.AthleteUser]
	athletes     *Collection[model.Athlete]
	mailer       repository.Mailer
	templates    EmailTemplates
	events       eventbus.Publisher
	logger       logger.Logger
	now          func() time.Time
}

func NewReminderUsecase(store CollectionStore, mailer repository.Mailer, templates EmailTemplates, events eventbus.Publisher, log logger.Logger) ReminderUsecase {
	if log == nil {
		log = logger.NewNopLogger()
	}
	log = log.WithComponent("reminders")
	return &reminderUsecase{
		appointments: NewCollection[model.Appointment](store, model.CollectionAppointments).WithLogger(log),
		athleteUsers: NewCollection[model.AthleteUser](store, model.CollectionAthleteUsers).WithLogger(log),
		athletes:     NewCollection[model.Athlete](store, model.CollectionAthletes).WithLogger(log),
		mailer:       mailer,
		templates:    templates,
		events:       events,
		logger:       log,
		now:          time.Now,
	}
}

// Tomorrow is the UTC calendar date after now, as YYYY-MM-DD.
func Tomorrow(now time.Time) string {
	return now.UTC().AddDate(0, 0, 1).Format("2006-01-02")
}

// SelectReminders keeps scheduled appointments dated tomorrow, in input order.
func SelectReminders(appts []model.Appointment, tomorrow string) []model.Appointment {
	var out []model.Appointment
	for _, a := range appts {
		if a.Status == model.AppointmentScheduled && strings.HasPrefix(a.Date, tomorrow) {
			out = append(out, a)
		}
	}
	return out
}

func (uc *reminderUsecase) SendTomorrowReminders(ctx context.Context) (*ReminderResult, error) {
	log := uc.logger.WithContext(ctx)
	tomorrow := Tomorrow(uc.now())
	due := SelectReminders(uc.appointments.All(ctx), tomorrow)

	if len(due) == 0 {
		log.Infof("reminder sweep for %s: nothing due", tomorrow)
		return &ReminderResult{Message: "Reminders processed"}, nil
	}

	names := map[string]string{}
	for _, a := range uc.athletes.All(ctx) {
		names[a.ID] = a.Name
	}
	usersByAthlete := map[string][]model.AthleteUser{}

	sent := 0
	for _, appt := range due {
		users, seen := usersByAthlete[appt.AthleteID]
		if !seen {
			users = uc.athleteUsers.Where(ctx, "athleteId", appt.AthleteID)
			usersByAthlete[appt.AthleteID] = users
		}
		user, ok := activeUserFor(users, appt.AthleteID)
		if !ok {
			log.Debugf("no active athlete user for appointment %s", appt.ID)
			continue
		}
		email, err := uc.templates.AppointmentReminder(user.Email, names[appt.AthleteID], appt)
		if err != nil {
			log.Errorf("render reminder for %s: %v", appt.ID, err)
			continue
		}
		if uc.mailer.Send(ctx, email) {
			sent++
			if uc.events != nil {
				uc.events.PublishAndForget(ctx, eventbus.NewBasicEvent(eventbus.EventTypeReminderSent, appt.ID, "reminders"))
			}
		}
	}

	log.Infof("reminder sweep for %s: %d due, %d sent", tomorrow, len(due), sent)
	return &ReminderResult{
		Message: "Reminders processed",
		Total:   len(due),
		Sent:    sent,
	}, nil
}

func activeUserFor(users []model.AthleteUser, athleteID string) (model.AthleteUser, bool) {
	for _, u := range users {
		if u.AthleteID == athleteID && u.Active && u.Email != "" {
			return u, true
		}
	}
	return model.AthleteUser{}, false
}
