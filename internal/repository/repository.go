// Package repository provides the grid store backends.
package repository

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tsunderebot/covers/internal/model"
)

// Backend names the kind of store behind a connection string.
type Backend string

const (
	BackendMongo    Backend = "mongodb"
	BackendPostgres Backend = "postgres"
	BackendRedis    Backend = "redis"
)

// ErrUnsupportedScheme is returned when a connection string names no known backend.
var ErrUnsupportedScheme = errors.New("unsupported store URL scheme")

// Store is a grid store plus the lifecycle hooks main and the health checks need.
type Store interface {
	CreateGrid(ctx context.Context, grid *model.Grid) error
	ListGridsByOwner(ctx context.Context, userID string) ([]*model.Grid, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
	Backend() Backend
}

// Options configures Open.
type Options struct {
	URL string
	// MongoDatabase is used when a MongoDB URL carries no database path.
	MongoDatabase string
}

// Open connects to the store named by opts.URL, picking the backend from its scheme.
func Open(ctx context.Context, opts Options) (Store, error) {
	backend, err := backendFor(opts.URL)
	if err != nil {
		return nil, err
	}

	switch backend {
	case BackendMongo:
		return NewMongo(ctx, opts.URL, opts.MongoDatabase)
	case BackendRedis:
		return NewRedis(ctx, opts.URL)
	default:
		repo, err := New(ctx, opts.URL)
		if err != nil {
			return nil, err
		}
		if err := repo.EnsureSchema(ctx); err != nil {
			repo.pool.Close()
			return nil, err
		}
		return repo, nil
	}
}

func backendFor(rawURL string) (Backend, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse store URL: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "mongodb", "mongodb+srv":
		return BackendMongo, nil
	case "postgres", "postgresql":
		return BackendPostgres, nil
	case "redis", "rediss":
		return BackendRedis, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

// Repository is the PostgreSQL grid store.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new Repository with a connection pool.
func New(ctx context.Context, databaseURL string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{pool: pool}, nil
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool.
func (r *Repository) Close(context.Context) error {
	r.pool.Close()
	return nil
}

// Backend reports BackendPostgres.
func (r *Repository) Backend() Backend {
	return BackendPostgres
}
