package model

// TrainingPlan is a block of training assigned to an athlete.
type TrainingPlan struct {
	ID          string         `json:"id" bson:"id"`
	AthleteID   string         `json:"athleteId" bson:"athleteId"`
	Name        string         `json:"name" bson:"name"`
	Description string         `json:"description,omitempty" bson:"description,omitempty"`
	StartDate   string         `json:"startDate,omitempty" bson:"startDate,omitempty"`
	EndDate     string         `json:"endDate,omitempty" bson:"endDate,omitempty"`
	Status      string         `json:"status,omitempty" bson:"status,omitempty"`
	Weeks       []TrainingWeek `json:"weeks,omitempty" bson:"weeks,omitempty"`
	CreatedAt   string         `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
}

// TrainingWeek groups the sessions of one week of a plan.
type TrainingWeek struct {
	Week     int               `json:"week" bson:"week"`
	Focus    string            `json:"focus,omitempty" bson:"focus,omitempty"`
	Sessions []TrainingSession `json:"sessions,omitempty" bson:"sessions,omitempty"`
}

// TrainingSession is one workout in a week.
type TrainingSession struct {
	Day       string `json:"day" bson:"day"`
	Title     string `json:"title" bson:"title"`
	Details   string `json:"details,omitempty" bson:"details,omitempty"`
	Completed bool   `json:"completed,omitempty" bson:"completed,omitempty"`
}

// Appointment statuses
const (
	AppointmentScheduled = "scheduled"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
)

// Appointment is a session between coach and athlete. Date is YYYY-MM-DD or an
// ISO timestamp; Time is HH:MM.
type Appointment struct {
	ID        string `json:"id" bson:"id"`
	AthleteID string `json:"athleteId" bson:"athleteId"`
	Title     string `json:"title" bson:"title"`
	Date      string `json:"date" bson:"date"`
	Time      string `json:"time,omitempty" bson:"time,omitempty"`
	Duration  int    `json:"duration,omitempty" bson:"duration,omitempty"`
	Type      string `json:"type,omitempty" bson:"type,omitempty"`
	Location  string `json:"location,omitempty" bson:"location,omitempty"`
	Status    string `json:"status" bson:"status"`
	Notes     string `json:"notes,omitempty" bson:"notes,omitempty"`
}

// Goal is a measurable target with a current value.
type Goal struct {
	ID           string  `json:"id" bson:"id"`
	AthleteID    string  `json:"athleteId" bson:"athleteId"`
	Title        string  `json:"title" bson:"title"`
	Category     string  `json:"category,omitempty" bson:"category,omitempty"`
	TargetValue  float64 `json:"targetValue" bson:"targetValue"`
	CurrentValue float64 `json:"currentValue" bson:"currentValue"`
	Unit         string  `json:"unit,omitempty" bson:"unit,omitempty"`
	Deadline     string  `json:"deadline,omitempty" bson:"deadline,omitempty"`
	Status       string  `json:"status,omitempty" bson:"status,omitempty"`
}

// Progress returns current/target as a percentage clamped to [0,100].
func (g Goal) Progress() float64 {
	return ProgressPercent(g.CurrentValue, g.TargetValue)
}

// SmartGoal is a goal broken into milestones.
type SmartGoal struct {
	ID          string      `json:"id" bson:"id"`
	AthleteID   string      `json:"athleteId" bson:"athleteId"`
	Title       string      `json:"title" bson:"title"`
	Specific    string      `json:"specific,omitempty" bson:"specific,omitempty"`
	Measurable  string      `json:"measurable,omitempty" bson:"measurable,omitempty"`
	Achievable  string      `json:"achievable,omitempty" bson:"achievable,omitempty"`
	Relevant    string      `json:"relevant,omitempty" bson:"relevant,omitempty"`
	TimeBound   string      `json:"timeBound,omitempty" bson:"timeBound,omitempty"`
	Milestones  []Milestone `json:"milestones,omitempty" bson:"milestones,omitempty"`
	Status      string      `json:"status,omitempty" bson:"status,omitempty"`
	CreatedAt   string      `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	CompletedAt string      `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
}

// Progress is the share of completed milestones as a percentage.
func (g SmartGoal) Progress() float64 {
	if len(g.Milestones) == 0 {
		return 0
	}
	done := 0
	for _, m := range g.Milestones {
		if m.Completed {
			done++
		}
	}
	return ProgressPercent(float64(done), float64(len(g.Milestones)))
}

// Milestone is one step of a SmartGoal.
type Milestone struct {
	ID          string `json:"id" bson:"id"`
	Title       string `json:"title" bson:"title"`
	DueDate     string `json:"dueDate,omitempty" bson:"dueDate,omitempty"`
	Completed   bool   `json:"completed" bson:"completed"`
	CompletedAt string `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
}

// WeeklyCheckIn is an athlete's self report for a week.
type WeeklyCheckIn struct {
	ID            string   `json:"id" bson:"id"`
	AthleteID     string   `json:"athleteId" bson:"athleteId"`
	WeekStart     string   `json:"weekStart" bson:"weekStart"`
	Weight        float64  `json:"weight,omitempty" bson:"weight,omitempty"`
	Energy        int      `json:"energy,omitempty" bson:"energy,omitempty"`
	Sleep         int      `json:"sleep,omitempty" bson:"sleep,omitempty"`
	Stress        int      `json:"stress,omitempty" bson:"stress,omitempty"`
	Adherence     int      `json:"adherence,omitempty" bson:"adherence,omitempty"`
	Comments      string   `json:"comments,omitempty" bson:"comments,omitempty"`
	Photos        []string `json:"photos,omitempty" bson:"photos,omitempty"`
	CoachFeedback string   `json:"coachFeedback,omitempty" bson:"coachFeedback,omitempty"`
	CreatedAt     string   `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
}

// Achievement is a badge awarded to an athlete.
type Achievement struct {
	ID          string `json:"id" bson:"id"`
	AthleteID   string `json:"athleteId" bson:"athleteId"`
	Title       string `json:"title" bson:"title"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
	Icon        string `json:"icon,omitempty" bson:"icon,omitempty"`
	EarnedAt    string `json:"earnedAt,omitempty" bson:"earnedAt,omitempty"`
}

// ProgressPercent returns current/target*100 clamped to [0,100]; 0 for a zero target.
func ProgressPercent(current, target float64) float64 {
	if target == 0 {
		return 0
	}
	p := current / target * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
