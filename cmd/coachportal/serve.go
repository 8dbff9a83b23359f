package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	authhttp "coach-portal/internal/auth/adapter/http"
	coachhttp "coach-portal/internal/coaching/adapter/http"
	"coach-portal/internal/di"

	"github.com/caarlos0/env/v6"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
)

// multipart framing on top of the largest accepted upload
const bodyLimitHeadroom = 1 << 20

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `env:"SERVER_HOST" envDefault:"localhost"`
	Port string `env:"SERVER_PORT" envDefault:"3000"`
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	serverCfg := &ServerConfig{}
	if err := env.Parse(serverCfg); err != nil {
		return fmt.Errorf("failed to load server configuration: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	container, err := openContainer(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := container.Close(context.Background()); err != nil {
			appLogger.Errorf("Failed to close container: %v", err)
		}
	}()

	if err := container.Store.EnsureSchema(ctx); err != nil {
		// a failed cold start is retried by the first request
		appLogger.Warnf("Schema check failed at startup: %v", err)
	}

	app := newApp(container)

	serverAddr := fmt.Sprintf("%s:%s", serverCfg.Host, serverCfg.Port)
	appLogger.Infof("Starting HTTP server on %s (storage=%s)", serverAddr, container.Config.Storage.Backend)

	serverShutdown := make(chan error, 1)
	go func() {
		serverShutdown <- app.Listen(serverAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverShutdown:
		if err != nil {
			return fmt.Errorf("server startup failed: %w", err)
		}
	case sig := <-quit:
		appLogger.Infof("Received shutdown signal: %v", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			appLogger.Errorf("Server forced to shutdown: %v", err)
		}
		appLogger.Info("HTTP server stopped")
	}
	return nil
}

// newApp builds the Fiber application around a wired container.
func newApp(container *di.Container) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Coach Portal API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		BodyLimit:    int(container.Config.Blob.MaxBytes) + bodyLimitHeadroom,
		ErrorHandler: coachhttp.ErrorHandler(container.Logger),
	})

	app.Use(recover.New())
	app.Use(authhttp.RequestID(), authhttp.RequestContext())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		healthCtx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
		defer cancel()

		if err := container.HealthCheck(healthCtx); err != nil {
			container.Logger.Errorf("Health check failed: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":  "UNHEALTHY",
				"error":   err.Error(),
				"message": "One or more services are unhealthy",
			})
		}
		return c.JSON(fiber.Map{
			"status":    "HEALTHY",
			"message":   "Coach Portal API is running",
			"timestamp": time.Now().UTC(),
			"modules": fiber.Map{
				"storage":      container.Config.Storage.Backend,
				"auth":         container.AuthModule != nil,
				"changeStream": container.Changes != nil,
			},
		})
	})

	container.RegisterRoutes(app.Group(container.Config.BasePath))
	return app
}
