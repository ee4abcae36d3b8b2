package migration

import (
	"context"

	"github.com/jmoiron/sqlx"

	"pricebench/internal/errors"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createResearchesTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create researches table")
	}

	if err := r.createResearchItemsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create research_items table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createResearchesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS researches (
			id UUID PRIMARY KEY,
			process_number TEXT NOT NULL,
			kind TEXT NOT NULL,
			config JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createResearchItemsTable(ctx context.Context, db *sqlx.DB) error {
	// Quotations and the evaluation snapshot live as JSONB documents: they
	// are read and written as a unit with the item and never queried by
	// column.
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS research_items (
			id UUID PRIMARY KEY,
			research_id UUID NOT NULL REFERENCES researches(id) ON DELETE CASCADE,
			number INT NOT NULL,
			description TEXT NOT NULL,
			unit TEXT NOT NULL,
			quantity INT NOT NULL,
			contracted_unit_price DOUBLE PRECISION NOT NULL DEFAULT 0,
			quotations JSONB NOT NULL DEFAULT '[]',
			evaluation JSONB,
			use_minimum_price BOOLEAN NOT NULL DEFAULT FALSE,
			justification TEXT NOT NULL DEFAULT '',
			final_method TEXT NOT NULL DEFAULT '',
			unit_market_price DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_market_price DOUBLE PRECISION NOT NULL DEFAULT 0,
			UNIQUE (research_id, number)
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_research_items_research_id
			ON research_items(research_id)
	`)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_researches_process_number
			ON researches(process_number)
	`)
	return err
}
