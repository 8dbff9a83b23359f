package persistence

import (
	"context"
	"strings"

	"coach-portal/internal/auth/domain/repository"
	coachmodel "coach-portal/internal/coaching/domain/model"
	"coach-portal/internal/coaching/usecase"
	apperrors "coach-portal/internal/shared/errors"
)

// CollectionUserRepository keeps logins in the internal staffUsers and
// athleteUsers collections of the collection store.
type CollectionUserRepository struct {
	staff    *usecase.Collection[coachmodel.StaffUser]
	athletes *usecase.Collection[coachmodel.AthleteUser]
}

var _ repository.UserRepository = (*CollectionUserRepository)(nil)

func NewCollectionUserRepository(store usecase.CollectionStore) *CollectionUserRepository {
	return &CollectionUserRepository{
		staff:    usecase.NewCollection[coachmodel.StaffUser](store, coachmodel.CollectionStaffUsers),
		athletes: usecase.NewCollection[coachmodel.AthleteUser](store, coachmodel.CollectionAthleteUsers),
	}
}

func (r *CollectionUserRepository) FindStaffByEmail(ctx context.Context, email string) (*coachmodel.StaffUser, error) {
	for _, u := range r.staff.All(ctx) {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *CollectionUserRepository) FindAthleteUserByEmail(ctx context.Context, email string) (*coachmodel.AthleteUser, error) {
	for _, u := range r.athletes.All(ctx) {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *CollectionUserRepository) CreateStaff(ctx context.Context, user coachmodel.StaffUser) (*coachmodel.StaffUser, error) {
	stored, err := r.staff.Insert(ctx, user)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *CollectionUserRepository) CreateAthleteUser(ctx context.Context, user coachmodel.AthleteUser) (*coachmodel.AthleteUser, error) {
	stored, err := r.athletes.Insert(ctx, user)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}
