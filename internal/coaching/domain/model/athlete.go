package model

// Athlete is a coached person.
type Athlete struct {
	ID          string   `json:"id" bson:"id"`
	Name        string   `json:"name" bson:"name"`
	Email       string   `json:"email,omitempty" bson:"email,omitempty"`
	Phone       string   `json:"phone,omitempty" bson:"phone,omitempty"`
	Sport       string   `json:"sport,omitempty" bson:"sport,omitempty"`
	Status      string   `json:"status,omitempty" bson:"status,omitempty"` // active, inactive, paused
	StartDate   string   `json:"startDate,omitempty" bson:"startDate,omitempty"`
	BirthDate   string   `json:"birthDate,omitempty" bson:"birthDate,omitempty"`
	Weight      float64  `json:"weight,omitempty" bson:"weight,omitempty"`
	Height      float64  `json:"height,omitempty" bson:"height,omitempty"`
	Avatar      string   `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Tags        []string `json:"tags,omitempty" bson:"tags,omitempty"`
	Notes       string   `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt   string   `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	PlanID      string   `json:"planId,omitempty" bson:"planId,omitempty"`
	MonthlyRate float64  `json:"monthlyRate,omitempty" bson:"monthlyRate,omitempty"`
}

// IsActive treats a missing status as active.
func (a Athlete) IsActive() bool {
	return a.Status == "" || a.Status == "active"
}

// AthleteNote is a private coach note about an athlete.
type AthleteNote struct {
	ID        string `json:"id" bson:"id"`
	AthleteID string `json:"athleteId" bson:"athleteId"`
	Content   string `json:"content" bson:"content"`
	Category  string `json:"category,omitempty" bson:"category,omitempty"`
	Pinned    bool   `json:"pinned,omitempty" bson:"pinned,omitempty"`
	CreatedAt string `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
}

// AthleteDocument points at an uploaded file shared with an athlete.
type AthleteDocument struct {
	ID         string `json:"id" bson:"id"`
	AthleteID  string `json:"athleteId" bson:"athleteId"`
	Name       string `json:"name" bson:"name"`
	URL        string `json:"url" bson:"url"`
	Type       string `json:"type,omitempty" bson:"type,omitempty"`
	Size       int64  `json:"size,omitempty" bson:"size,omitempty"`
	UploadedAt string `json:"uploadedAt,omitempty" bson:"uploadedAt,omitempty"`
}

// Roles carried by sessions
const (
	RoleAdmin   = "admin"
	RoleCoach   = "coach"
	RoleAthlete = "athlete"
)

// StaffUser is a coach or admin login.
type StaffUser struct {
	ID           string `json:"id" bson:"id"`
	Email        string `json:"email" bson:"email"`
	Name         string `json:"name" bson:"name"`
	Role         string `json:"role" bson:"role"`
	PasswordHash string `json:"passwordHash" bson:"passwordHash"`
	Active       bool   `json:"active" bson:"active"`
	CreatedAt    string `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
}

// AthleteUser is an athlete login bound to one Athlete.
type AthleteUser struct {
	ID           string `json:"id" bson:"id"`
	AthleteID    string `json:"athleteId" bson:"athleteId"`
	Email        string `json:"email" bson:"email"`
	Name         string `json:"name,omitempty" bson:"name,omitempty"`
	PasswordHash string `json:"passwordHash" bson:"passwordHash"`
	Active       bool   `json:"active" bson:"active"`
	CreatedAt    string `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
}

// AthleteUserID is the user id synthesized for an athlete's portal account.
func AthleteUserID(athleteID string) string {
	return "ath-user-" + athleteID
}
