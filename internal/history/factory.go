package history

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	apierrors "github.com/diogo/pulsechat/internal/errors"
)

// Driver names a Backend implementation.
type Driver string

const (
	DriverMemory Driver = "memory"
	DriverFile   Driver = "file"
	DriverRedis  Driver = "redis"
	DriverSQLite Driver = "sqlite"
)

// BackendOption configures NewBackend.
type BackendOption func(*backendConfig)

type backendConfig struct {
	dir         string
	sqlitePath  string
	redisURL    string
	redisClient *redis.Client
}

// WithDir sets the directory for the file driver
func WithDir(dir string) BackendOption {
	return func(c *backendConfig) {
		c.dir = dir
	}
}

// WithSQLitePath sets the database path for the sqlite driver
func WithSQLitePath(path string) BackendOption {
	return func(c *backendConfig) {
		c.sqlitePath = path
	}
}

// WithRedisURL sets a redis:// URL for the redis driver
func WithRedisURL(url string) BackendOption {
	return func(c *backendConfig) {
		c.redisURL = url
	}
}

// WithRedisClient supplies an existing client for the redis driver
func WithRedisClient(client *redis.Client) BackendOption {
	return func(c *backendConfig) {
		c.redisClient = client
	}
}

// NewBackend creates a Backend for the given driver
func NewBackend(driver Driver, opts ...BackendOption) (Backend, error) {
	cfg := &backendConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	switch driver {
	case DriverMemory:
		return NewMemoryBackend(), nil

	case DriverFile, "":
		return NewFileBackend(cfg.dir)

	case DriverSQLite:
		return NewSQLiteBackend(cfg.sqlitePath)

	case DriverRedis:
		client := cfg.redisClient
		if client == nil {
			if cfg.redisURL == "" {
				return nil, fmt.Errorf("redis driver requires a URL or client: %w", apierrors.ErrInvalidConfig)
			}
			opt, err := redis.ParseURL(cfg.redisURL)
			if err != nil {
				return nil, fmt.Errorf("invalid redis URL: %w", err)
			}
			client = redis.NewClient(opt)
		}
		return NewRedisBackend(client), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q: %w", driver, apierrors.ErrInvalidConfig)
	}
}
