package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the collections table (or index) if absent",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		container, err := openContainer(ctx)
		if err != nil {
			return err
		}
		defer container.Close(context.Background())

		if err := container.Store.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema ready (%s, table %s)\n", container.Config.Storage.Backend, container.Config.Storage.Table)
		return nil
	},
}
