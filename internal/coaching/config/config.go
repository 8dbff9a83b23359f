package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v6"
)

// Storage backends
const (
	BackendPostgres = "postgres"
	BackendMongoDB  = "mongodb"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// Blob backends
const (
	BlobLocal  = "local"
	BlobGridFS = "gridfs"
)

// StorageConfig selects and configures the collection store backend.
type StorageConfig struct {
	Backend     string `env:"STORAGE_BACKEND" envDefault:"postgres"`
	DatabaseURL string `env:"DATABASE_URL"`
	// Table holds every collection as (collection, id, data) rows.
	Table         string `env:"STORE_TABLE" envDefault:"collections"`
	MongoDBURI    string `env:"MONGODB_URI"`
	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"coach_portal"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"coach-portal.db"`
}

// MailConfig holds SMTP credentials for the email collaborator.
type MailConfig struct {
	Host        string `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	Port        int    `env:"SMTP_PORT" envDefault:"587"`
	User        string `env:"SMTP_USER"`
	AppPassword string `env:"SMTP_APP_PASSWORD"`
	FromName    string `env:"MAIL_FROM_NAME" envDefault:"Coach Portal"`
	// PortalURL is the base used to build absolute links in emails.
	PortalURL string `env:"PORTAL_URL" envDefault:"http://localhost:3000"`
}

// Enabled reports whether SMTP credentials are present.
func (m MailConfig) Enabled() bool {
	return m.User != "" && m.AppPassword != ""
}

// BlobConfig configures where uploads go.
type BlobConfig struct {
	Backend   string `env:"BLOB_BACKEND" envDefault:"local"`
	Dir       string `env:"BLOB_DIR" envDefault:"uploads"`
	PublicURL string `env:"BLOB_PUBLIC_URL" envDefault:"/api/files"`
	MaxBytes  int64  `env:"UPLOAD_MAX_BYTES" envDefault:"10485760"`
}

// ChangeStreamConfig configures the optional Redis change stream.
type ChangeStreamConfig struct {
	RedisURL  string `env:"REDIS_URL"`
	MaxLength int64  `env:"CHANGE_STREAM_MAXLEN" envDefault:"10000"`
}

// Enabled reports whether a Redis URL was configured.
func (c ChangeStreamConfig) Enabled() bool {
	return c.RedisURL != ""
}

// Config holds all configuration for the coaching module.
type Config struct {
	Storage StorageConfig
	Mail    MailConfig
	Blob    BlobConfig
	Changes ChangeStreamConfig

	CronSecret string `env:"CRON_SECRET"`
	BasePath   string `env:"API_BASE_PATH" envDefault:"/api"`
}

// LoadConfig parses the environment and validates the result.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to load coaching configuration from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks backend selections and the settings each of them requires.
func (c *Config) Validate() error {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	switch c.Storage.Backend {
	case BackendPostgres:
		if c.Storage.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres storage backend")
		}
	case BackendMongoDB:
		if c.Storage.MongoDBURI == "" {
			return errors.New("MONGODB_URI is required for the mongodb storage backend")
		}
	case BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}

	if c.Storage.Table == "" || !isIdentifier(c.Storage.Table) {
		return fmt.Errorf("STORE_TABLE %q is not a valid table name", c.Storage.Table)
	}

	switch c.Blob.Backend {
	case BlobLocal:
	case BlobGridFS:
		if c.Storage.MongoDBURI == "" {
			return errors.New("MONGODB_URI is required for the gridfs blob backend")
		}
	default:
		return fmt.Errorf("unknown BLOB_BACKEND %q", c.Blob.Backend)
	}
	if c.Blob.MaxBytes <= 0 {
		return errors.New("UPLOAD_MAX_BYTES must be positive")
	}
	return nil
}

// isIdentifier accepts [A-Za-z_][A-Za-z0-9_]*; the table name is interpolated into DDL.
func isIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// DefaultConfig returns an in-memory configuration for tests and local runs.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend:       BackendMemory,
			Table:         "collections",
			MongoDatabase: "coach_portal",
			SQLitePath:    "coach-portal.db",
		},
		Mail: MailConfig{
			Host:      "smtp.gmail.com",
			Port:      587,
			FromName:  "Coach Portal",
			PortalURL: "http://localhost:3000",
		},
		Blob: BlobConfig{
			Backend:   BlobLocal,
			Dir:       "uploads",
			PublicURL: "/api/files",
			MaxBytes:  10 << 20,
		},
		Changes:  ChangeStreamConfig{MaxLength: 10000},
		BasePath: "/api",
	}
}
