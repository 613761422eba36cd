package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	_ "github.com/lib/pq" // database/sql driver used by goose
	"github.com/pressly/goose/v3"

	"lessonserver/internal/infra"
)

//go:embed migrations/*.sql
var embedded embed.FS

// Migrations returns the embedded migration files.
func Migrations() fs.FS {
	sub, err := fs.Sub(embedded, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Migrator applies the embedded schema to a PostgreSQL database.
type Migrator struct {
	db       *sql.DB
	provider *goose.Provider
	log      infra.Logger
}

// NewMigrator opens databaseURL through lib/pq and prepares a goose provider.
func NewMigrator(databaseURL string, log infra.Logger) (*Migrator, error) {
	if databaseURL == "" {
		return nil, infra.ErrNoDatabase
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, db, Migrations())
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return &Migrator{db: db, provider: provider, log: log}, nil
}

// Up applies every pending migration.
func (m *Migrator) Up(ctx context.Context) error {
	results, err := m.provider.Up(ctx)
	for _, res := range results {
		m.log.Info().
			Int64("version", res.Source.Version).
			Str("path", res.Source.Path).
			Dur("took", res.Duration).
			Msg("migration applied")
	}
	if err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Down rolls back the most recent migration.
func (m *Migrator) Down(ctx context.Context) error {
	res, err := m.provider.Down(ctx)
	if err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	m.log.Info().Int64("version", res.Source.Version).Msg("migration rolled back")
	return nil
}

// Status lists each migration with its applied state.
func (m *Migrator) Status(ctx context.Context) ([]*goose.MigrationStatus, error) {
	st, err := m.provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrate status: %w", err)
	}
	return st, nil
}

func (m *Migrator) Close() error {
	return m.db.Close()
}
