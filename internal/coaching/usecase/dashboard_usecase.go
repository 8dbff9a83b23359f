package usecase

import (
	"context"
	"math"
	"time"

	"coach-portal/internal/coaching/domain/model"
	"coach-portal/internal/shared/logger"
)

// DashboardSummary is the coach's landing page numbers.
type DashboardSummary struct {
	ActiveAthletes       int     `json:"activeAthletes"`
	UpcomingAppointments int     `json:"upcomingAppointments"`
	UnreadNotifications  int     `json:"unreadNotifications"`
	MonthlyRevenue       float64 `json:"monthlyRevenue"`
	AverageGoalProgress  float64 `json:"averageGoalProgress"`
	GeneratedAt          string  `json:"generatedAt"`
}

type DashboardUsecase interface {
	Summary(ctx context.Context) *DashboardSummary
}

type dashboardUsecase struct {
	athletes      *Collection[model.Athlete]
	appointments  *Collection[model.Appointment]
	notifications *Collection[model.Notification]
	payments      *Collection[model.Payment]
	goals         *Collection[model.Goal]
	logger        logger.Logger
	now           func() time.Time
}

func NewDashboardUsecase(store CollectionStore, log logger.Logger) DashboardUsecase {
	if log == nil {
		log = logger.NewNopLogger()
	}
	log = log.WithComponent("dashboard")
	return &dashboardUsecase{
		athletes:      NewCollection[model.Athlete](store, model.CollectionAthletes).WithLogger(log),
		appointments:  NewCollection[model.Appointment](store, model.CollectionAppointments).WithLogger(log),
		notifications: NewCollection[model.Notification](store, model.CollectionNotifications).WithLogger(log),
		payments:      NewCollection[model.Payment](store, model.CollectionPayments).WithLogger(log),
		goals:         NewCollection[model.Goal](store, model.CollectionGoals).WithLogger(log),
		logger:        log,
		now:           time.Now,
	}
}

// Summary never fails; each figure is computed over whatever the store returns.
func (uc *dashboardUsecase) Summary(ctx context.Context) *DashboardSummary {
	now := uc.now().UTC()
	return &DashboardSummary{
		ActiveAthletes:       CountActiveAthletes(uc.athletes.All(ctx)),
		UpcomingAppointments: CountUpcomingAppointments(uc.appointments.All(ctx), now, 7),
		UnreadNotifications:  CountUnread(uc.notifications.All(ctx)),
		MonthlyRevenue:       MonthlyRevenue(uc.payments.All(ctx), now),
		AverageGoalProgress:  AverageGoalProgress(uc.goals.All(ctx)),
		GeneratedAt:          now.Format(isoMillis),
	}
}

func CountActiveAthletes(athletes []model.Athlete) int {
	n := 0
	for _, a := range athletes {
		if a.IsActive() {
			n++
		}
	}
	return n
}

// CountUpcomingAppointments counts scheduled appointments dated in [today, today+days).
func CountUpcomingAppointments(appts []model.Appointment, now time.Time, days int) int {
	from := now.UTC().Format("2006-01-02")
	to := now.UTC().AddDate(0, 0, days).Format("2006-01-02")
	n := 0
	for _, a := range appts {
		if a.Status != model.AppointmentScheduled || len(a.Date) < 10 {
			continue
		}
		day := a.Date[:10]
		if day >= from && day < to {
			n++
		}
	}
	return n
}

func CountUnread(notifications []model.Notification) int {
	n := 0
	for _, item := range notifications {
		if !item.Read {
			n++
		}
	}
	return n
}

// MonthlyRevenue sums paid payments dated in the calendar month of now.
func MonthlyRevenue(payments []model.Payment, now time.Time) float64 {
	month := now.UTC().Format("2006-01")
	total := 0.0
	for _, p := range payments {
		if p.Status == model.PaymentPaid && len(p.Date) >= 7 && p.Date[:7] == month {
			total += p.Amount
		}
	}
	return math.Round(total*100) / 100
}

// AverageGoalProgress is the mean clamped progress, rounded to one decimal. 0 with no goals.
func AverageGoalProgress(goals []model.Goal) float64 {
	if len(goals) == 0 {
		return 0
	}
	sum := 0.0
	for _, g := range goals {
		sum += g.Progress()
	}
	return math.Round(sum/float64(len(goals))*10) / 10
}
