package repository

import (
	"context"

	coachmodel "coach-portal/internal/coaching/domain/model"
)

// UserRepository reads and writes portal logins. Lookups return
// errors.ErrUserNotFound on a miss.
type UserRepository interface {
	FindStaffByEmail(ctx context.Context, email string) (*coachmodel.StaffUser, error)
	FindAthleteUserByEmail(ctx context.Context, email string) (*coachmodel.AthleteUser, error)
	CreateStaff(ctx context.Context, user coachmodel.StaffUser) (*coachmodel.StaffUser, error)
	CreateAthleteUser(ctx context.Context, user coachmodel.AthleteUser) (*coachmodel.AthleteUser, error)
}
