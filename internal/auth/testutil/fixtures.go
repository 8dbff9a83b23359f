package testutil

import (
	"time"

	"coach-portal/internal/auth/config"
	coachmodel "coach-portal/internal/coaching/domain/model"

	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the password every fixture login is hashed from.
const DefaultPassword = "password123"

// UserFixture provides logins and configuration for auth tests
type UserFixture struct{}

// NewUserFixture creates a new UserFixture instance
func NewUserFixture() *UserFixture {
	return &UserFixture{}
}

// Config returns a policy-enabled config with the cheapest bcrypt cost
func (f *UserFixture) Config() *config.Config {
	return &config.Config{
		SessionSecret: "fixture-session-secret-0123456789",
		SessionIssuer: "coach-portal",
		SessionTTL:    time.Hour,
		PolicyEnabled: true,
		BcryptCost:    bcrypt.MinCost,
	}
}

// Coach returns an active coach login
func (f *UserFixture) Coach() coachmodel.StaffUser {
	return coachmodel.StaffUser{
		ID:           "staff-coach-1",
		Email:        "coach@example.com",
		Name:         "Carla Coach",
		Role:         coachmodel.RoleCoach,
		PasswordHash: hash(DefaultPassword),
		Active:       true,
		CreatedAt:    "2024-01-01T00:00:00Z",
	}
}

// InactiveCoach returns a deactivated coach login
func (f *UserFixture) InactiveCoach() coachmodel.StaffUser {
	u := f.Coach()
	u.ID = "staff-coach-2"
	u.Email = "former@example.com"
	u.Active = false
	return u
}

// Athlete returns an active athlete login bound to athleteID
func (f *UserFixture) Athlete(athleteID string) coachmodel.AthleteUser {
	return coachmodel.AthleteUser{
		ID:           coachmodel.AthleteUserID(athleteID),
		AthleteID:    athleteID,
		Email:        athleteID + "@example.com",
		Name:         "Athlete " + athleteID,
		PasswordHash: hash(DefaultPassword),
		Active:       true,
		CreatedAt:    "2024-01-01T00:00:00Z",
	}
}

func hash(password string) string {
	h, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return string(h)
}
