package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"
)

// Driver names accepted by Open
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMongo    = "mongo"
)

// Options selects and configures a backend
type Options struct {
	Driver         string
	DSN            string // directory, sqlite path, postgres DSN, redis URL or mongo URI depending on Driver
	MongoDatabase  string
	MigrationsPath string // root holding sqlite/ and postgres/ migration dirs
	Breaker        BreakerSettings
}

// Open builds the backend named by opts.Driver. Remote backends are wrapped in a BreakerStore.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (Store, error) {
	switch opts.Driver {
	case DriverMemory:
		return NewMemoryStore(), nil

	case DriverFile:
		return NewFileStore(opts.DSN)

	case DriverSQLite:
		s, err := NewSQLiteStore(opts.DSN)
		if err != nil {
			return nil, err
		}
		if err := s.RunMigrations(filepath.Join(opts.MigrationsPath, "sqlite")); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil

	case DriverPostgres:
		s, err := NewPostgresStore(opts.DSN)
		if err != nil {
			return nil, err
		}
		if err := s.RunMigrations(filepath.Join(opts.MigrationsPath, "postgres")); err != nil {
			s.Close()
			return nil, err
		}
		return withBreaker(s, opts, logger), nil

	case DriverRedis:
		client, err := ConnectRedis(ctx, opts.DSN, 3, 2*time.Second)
		if err != nil {
			return nil, err
		}
		return withBreaker(NewRedisStore(client), opts, logger), nil

	case DriverMongo:
		db, err := ConnectMongoDB(ctx, opts.DSN, opts.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return withBreaker(NewMongoStore(db), opts, logger), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
}

func withBreaker(s Store, opts Options, logger *slog.Logger) Store {
	settings := opts.Breaker
	if settings.Name == "" {
		settings.Name = "storage-" + opts.Driver
	}
	return NewBreakerStore(s, settings, logger)
}
