package di

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"coach-portal/internal/auth"
	authconfig "coach-portal/internal/auth/config"
	"coach-portal/internal/coaching/adapter/blob"
	coachhttp "coach-portal/internal/coaching/adapter/http"
	"coach-portal/internal/coaching/adapter/mailer"
	"coach-portal/internal/coaching/adapter/persistence"
	"coach-portal/internal/coaching/adapter/persistence/memory"
	"coach-portal/internal/coaching/adapter/persistence/mongodb"
	"coach-portal/internal/coaching/adapter/persistence/postgres"
	"coach-portal/internal/coaching/adapter/persistence/sqlite"
	"coach-portal/internal/coaching/config"
	"coach-portal/internal/coaching/domain/repository"
	"coach-portal/internal/coaching/usecase"
	"coach-portal/internal/shared/eventbus"
	"coach-portal/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const gridFSBucket = "uploads"

// Container owns every long-lived component of the portal and their shutdown order
type Container struct {
	mu sync.RWMutex

	// Configuration
	Config     *config.Config
	AuthConfig *authconfig.Config

	// Shared components
	Logger   logger.Logger
	EventBus *eventbus.EventBus

	// Storage
	Backend repository.CollectionBackend
	Store   usecase.CollectionStore
	Blobs   repository.BlobStorage
	// Changes is nil when no REDIS_URL is configured.
	Changes *persistence.RedisChangeStore
	Mailer  repository.Mailer

	// Use cases
	Notifications usecase.NotificationUsecase
	Reminders     usecase.ReminderUsecase
	Uploads       usecase.UploadUsecase
	Realtime      usecase.RealtimeUsecase
	Dashboard     usecase.DashboardUsecase

	Handler *coachhttp.Handler
	// AuthModule is nil when no SESSION_SECRET is configured.
	AuthModule *auth.AuthModule

	// mongoClient is shared by the mongodb backend and GridFS.
	mongoClient *mongo.Client
}

// NewContainer connects the configured backends and wires the use cases.
// Connections opened before a failure are closed again.
func NewContainer(ctx context.Context, cfg *config.Config, authCfg *authconfig.Config, log logger.Logger) (*Container, error) {
	if log == nil {
		log = logger.NewLogger()
	}
	c := &Container{
		Config:     cfg,
		AuthConfig: authCfg,
		Logger:     log,
		EventBus:   eventbus.NewEventBus(log),
	}

	if err := c.initializeStorage(ctx); err != nil {
		_ = c.Close(ctx)
		return nil, err
	}
	if err := c.initializeUsecases(); err != nil {
		_ = c.Close(ctx)
		return nil, err
	}
	if err := c.initializeAuth(); err != nil {
		_ = c.Close(ctx)
		return nil, err
	}
	return c, nil
}

func (c *Container) initializeStorage(ctx context.Context) error {
	st := c.Config.Storage

	if st.Backend == config.BackendMongoDB || c.Config.Blob.Backend == config.BlobGridFS {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(st.MongoDBURI))
		if err != nil {
			return fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		c.mongoClient = client
	}

	switch st.Backend {
	case config.BackendPostgres:
		b, err := postgres.NewBackend(ctx, st.DatabaseURL, st.Table, c.Logger)
		if err != nil {
			return fmt.Errorf("failed to open postgres backend: %w", err)
		}
		c.Backend = b
	case config.BackendMongoDB:
		c.Backend = mongodb.NewBackend(c.mongoClient, c.mongoClient.Database(st.MongoDatabase).Collection(st.Table), c.Logger)
	case config.BackendSQLite:
		b, err := sqlite.NewBackend(st.SQLitePath, st.Table)
		if err != nil {
			return fmt.Errorf("failed to open sqlite backend: %w", err)
		}
		c.Backend = b
	case config.BackendMemory:
		c.Backend = memory.NewBackend()
	default:
		return fmt.Errorf("unknown storage backend %q", st.Backend)
	}
	c.Store = usecase.NewCollectionStore(c.Backend, c.EventBus, c.Logger)

	switch c.Config.Blob.Backend {
	case config.BlobGridFS:
		b, err := blob.NewGridFSStorage(c.mongoClient.Database(st.MongoDatabase), gridFSBucket)
		if err != nil {
			return err
		}
		c.Blobs = b
	default:
		b, err := blob.NewLocalStorage(c.Config.Blob.Dir)
		if err != nil {
			return fmt.Errorf("failed to open upload directory: %w", err)
		}
		c.Blobs = b
	}

	if c.Config.Changes.Enabled() {
		client, err := config.NewRedisClient(c.Config.Changes)
		if err != nil {
			return err
		}
		c.Changes = persistence.NewRedisChangeStore(client, c.Config.Changes.MaxLength, c.Logger)
	}
	return nil
}

func (c *Container) initializeUsecases() error {
	m, err := mailer.New(c.Config.Mail, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to create mailer: %w", err)
	}
	c.Mailer = m

	templates := usecase.EmailTemplates{PortalURL: c.Config.Mail.PortalURL, FromName: c.Config.Mail.FromName}
	c.Notifications = usecase.NewNotificationUsecase(c.Store, c.Mailer, templates, c.Logger)
	c.Reminders = usecase.NewReminderUsecase(c.Store, c.Mailer, templates, c.EventBus, c.Logger)
	c.Uploads = usecase.NewUploadUsecase(c.Blobs, c.Config.Blob.PublicURL, c.Config.Blob.MaxBytes, c.Logger)
	c.Dashboard = usecase.NewDashboardUsecase(c.Store, c.Logger)

	var changes repository.ChangeStore
	if c.Changes != nil {
		changes = c.Changes
	}
	c.Realtime = usecase.NewRealtimeUsecase(changes, c.Logger)
	c.EventBus.Subscribe(eventbus.AllEvents, c.Realtime.HandleEvent)

	c.Handler = coachhttp.NewHandler(
		c.Store,
		c.Notifications,
		c.Reminders,
		c.Uploads,
		c.Realtime,
		c.Dashboard,
		c.Config.CronSecret,
		c.Logger,
	)
	return nil
}

func (c *Container) initializeAuth() error {
	if c.AuthConfig == nil || !c.AuthConfig.Enabled() {
		c.Logger.Warn("SESSION_SECRET not set: /auth is disabled and /data is unauthenticated")
		return nil
	}
	module, err := auth.NewAuthModule(c.Store, c.AuthConfig, c.EventBus, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to create auth module: %w", err)
	}
	c.AuthModule = module
	return nil
}

// RegisterRoutes mounts the auth and coaching routes under router.
func (c *Container) RegisterRoutes(router fiber.Router) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var guards coachhttp.Guards
	if c.AuthModule != nil {
		c.AuthModule.RegisterRoutes(router)
		guards = coachhttp.Guards{Data: c.AuthModule.DataGuards(), Staff: c.AuthModule.StaffGuards()}
	}
	c.Handler.RegisterRoutes(router, guards)
}

// HealthCheck pings the collection backend and, when configured, Redis.
func (c *Container) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.Store != nil {
		if err := c.Store.Ping(ctx); err != nil {
			return fmt.Errorf("storage health check failed: %w", err)
		}
	}
	if c.Changes != nil {
		if err := c.Changes.Ping(ctx); err != nil {
			return fmt.Errorf("redis health check failed: %w", err)
		}
	}
	return nil
}

// Close drains queued change events, then shuts components down in reverse
// order of initialization.
func (c *Container) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if c.EventBus != nil {
		c.EventBus.Close()
	}

	var errs []error
	if c.Changes != nil {
		errs = append(errs, c.Changes.Close())
		c.Changes = nil
	}
	if c.Blobs != nil {
		errs = append(errs, c.Blobs.Close())
		c.Blobs = nil
	}
	if c.Backend != nil {
		errs = append(errs, c.Backend.Close())
		c.Backend = nil
	}
	if c.mongoClient != nil {
		if err := c.mongoClient.Disconnect(ctx); err != nil && !errors.Is(err, mongo.ErrClientDisconnected) {
			errs = append(errs, err)
		}
		c.mongoClient = nil
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("cleanup errors: %w", err)
	}
	return nil
}
