package main

import (
	"context"
	"fmt"
	"time"

	"coach-portal/internal/auth/adapter/persistence"
	"coach-portal/internal/auth/usecase"
	coachmodel "coach-portal/internal/coaching/domain/model"

	"github.com/spf13/cobra"
)

var (
	userEmail     string
	userPassword  string
	userName      string
	userRole      string
	userAthleteID string
)

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create a staff or athlete login",
	Long: `Create-user stores a login with a bcrypt password hash.

Example:
  coachportal create-user --email coach@example.com --password 'change-me!' --role coach
  coachportal create-user --email ana@example.com --password 'change-me!' --role athlete --athlete-id a1`,
	RunE: runCreateUser,
}

func init() {
	createUserCmd.Flags().StringVar(&userEmail, "email", "", "login email (required)")
	createUserCmd.Flags().StringVar(&userPassword, "password", "", "password, at least 8 characters (required)")
	createUserCmd.Flags().StringVar(&userName, "name", "", "display name")
	createUserCmd.Flags().StringVar(&userRole, "role", coachmodel.RoleCoach, "admin, coach or athlete")
	createUserCmd.Flags().StringVar(&userAthleteID, "athlete-id", "", "athlete the login belongs to (athlete role only)")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("password")
}

func runCreateUser(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	container, err := openContainer(ctx)
	if err != nil {
		return err
	}
	defer container.Close(context.Background())

	// no tokens are issued here, so no session secret is needed
	users := persistence.NewCollectionUserRepository(container.Store)
	uc := usecase.NewAuthUsecase(users, nil, container.AuthConfig, nil, appLogger)

	principal, err := uc.CreateUser(ctx, usecase.CreateUserRequest{
		Email:     userEmail,
		Password:  userPassword,
		Name:      userName,
		Role:      userRole,
		AthleteID: userAthleteID,
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", principal.Role, principal.Email, principal.UserID)
	return nil
}
