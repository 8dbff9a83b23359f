package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Send tomorrow's appointment reminders once",
	Long: `Remind runs the same sweep as GET /cron/reminders without going through
HTTP, for hosts that schedule it from the system cron.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
		defer cancel()

		container, err := openContainer(ctx)
		if err != nil {
			return err
		}
		defer container.Close(context.Background())

		result, err := container.Reminders.SendTomorrowReminders(ctx)
		if err != nil {
			return fmt.Errorf("reminder sweep: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (total %d, sent %d)\n", result.Message, result.Total, result.Sent)
		return nil
	},
}
