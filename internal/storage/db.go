// Package storage is the PostgreSQL journal of sync runs and logged
// exercises used by the liftsync server.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
)

// migrationsDir is the directory inside the migrations FS holding the SQL files.
const migrationsDir = "migrations"

// maxConns bounds the pool. The journal sees one write per request.
const maxConns = 4

// DB is the journal store.
type DB struct {
	pool *pgxpool.Pool
}

// Open connects to the journal database and verifies the connection.
func Open(ctx context.Context, dsn string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing journal dsn: %w", err)
	}
	cfg.MaxConns = maxConns
	cfg.ConnConfig.RuntimeParams["application_name"] = "liftsync"

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating journal pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging journal database: %w", err)
	}
	return &DB{pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	db.pool.Close()
}

// Migrate applies pending journal migrations read from migrations/ in fsys.
// It returns the schema version after migrating.
func Migrate(dsn string, fsys fs.FS) (uint, error) {
	src, err := migrationSource(fsys)
	if err != nil {
		return 0, err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return 0, fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("running journal migrations: %w", err)
	}
	version, _, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}

func migrationSource(fsys fs.FS) (source.Driver, error) {
	d, err := iofs.New(fsys, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("loading journal migrations: %w", err)
	}
	return d, nil
}
