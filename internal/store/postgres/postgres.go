// Package postgres backs the disaster, cache, and resource stores with
// PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/couchcryptid/disaster-response-service/internal/domain"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store implements domain.DisasterStore, domain.CacheStore, and
// domain.ResourceFinder backed by a PostgreSQL database.
type Store struct {
	db *sql.DB
}

var (
	_ domain.DisasterStore  = (*Store)(nil)
	_ domain.CacheStore     = (*Store)(nil)
	_ domain.ResourceFinder = (*Store)(nil)
)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CheckReadiness verifies the database connection is alive.
func (s *Store) CheckReadiness(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) CreateDisaster(ctx context.Context, d *domain.Disaster) error {
	return queryCreateDisaster(ctx, s.db, d)
}

func (s *Store) GetDisaster(ctx context.Context, id string) (*domain.Disaster, error) {
	return queryGetDisaster(ctx, s.db, id)
}

func (s *Store) ListDisasters(ctx context.Context, filter domain.DisasterFilter) ([]*domain.Disaster, error) {
	return queryListDisasters(ctx, s.db, filter)
}

func (s *Store) UpdateDisaster(ctx context.Context, d *domain.Disaster, event domain.AuditEvent) error {
	return queryUpdateDisaster(ctx, s.db, d, event)
}

func (s *Store) DeleteDisaster(ctx context.Context, id string) error {
	return queryDeleteDisaster(ctx, s.db, id)
}

func (s *Store) GetEntry(ctx context.Context, key string) (domain.CacheEntry, bool, error) {
	return queryGetEntry(ctx, s.db, key)
}

func (s *Store) UpsertEntry(ctx context.Context, key string, value json.RawMessage, expiresAt time.Time) error {
	return queryUpsertEntry(ctx, s.db, key, value, expiresAt)
}

func (s *Store) NearbyResources(ctx context.Context, disasterID string, lat, lon, radiusMeters float64) ([]domain.Resource, error) {
	return queryNearbyResources(ctx, s.db, lat, lon, radiusMeters)
}
