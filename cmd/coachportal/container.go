package main

import (
	"context"
	"fmt"

	authconfig "coach-portal/internal/auth/config"
	"coach-portal/internal/coaching/config"
	"coach-portal/internal/di"
)

// openContainer loads both configurations from the environment and wires them.
func openContainer(ctx context.Context) (*di.Container, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	authCfg, err := authconfig.LoadConfig()
	if err != nil {
		return nil, err
	}
	container, err := di.NewContainer(ctx, cfg, authCfg, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize container: %w", err)
	}
	return container, nil
}
