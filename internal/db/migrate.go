package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateDependencyKindConstraint(db); err != nil {
		return fmt.Errorf("migrating dependencies kind constraint: %w", err)
	}
	return nil
}

// migrateDependencyKindConstraint rebuilds a dependencies table created
// before the kind column carried its CHECK constraint. Existing rows keep
// their kind, defaulting to finish_to_start.
func migrateDependencyKindConstraint(db *sql.DB) error {
	ctx := context.Background()
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquiring db connection: %w", err)
	}
	defer conn.Close()

	var createSQL string
	if err := conn.QueryRowContext(ctx, `SELECT sql FROM sqlite_master WHERE type = 'table' AND name = 'dependencies'`).Scan(&createSQL); err != nil {
		return fmt.Errorf("loading dependencies schema: %w", err)
	}
	if strings.Contains(strings.ToLower(createSQL), "'start_to_finish'") {
		return nil
	}

	if _, err := conn.ExecContext(ctx, `PRAGMA foreign_keys = OFF`); err != nil {
		return fmt.Errorf("disabling foreign keys: %w", err)
	}
	defer func() {
		_, _ = conn.ExecContext(ctx, `PRAGMA foreign_keys = ON`)
	}()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting migration transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS dependencies_new`); err != nil {
		return fmt.Errorf("dropping stale dependencies_new: %w", err)
	}
	if _, err := tx.ExecContext(ctx, createDependencies("dependencies_new")); err != nil {
		return fmt.Errorf("creating dependencies_new: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO dependencies_new (
		predecessor_work_item_id, successor_work_item_id, kind, created_at
	) SELECT
		predecessor_work_item_id, successor_work_item_id,
		CASE WHEN kind IN ('finish_to_start','start_to_start','finish_to_finish','start_to_finish')
		     THEN kind ELSE 'finish_to_start' END,
		created_at
	FROM dependencies`); err != nil {
		return fmt.Errorf("copying dependencies data: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DROP TABLE dependencies`); err != nil {
		return fmt.Errorf("dropping old dependencies: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `ALTER TABLE dependencies_new RENAME TO dependencies`); err != nil {
		return fmt.Errorf("renaming dependencies_new: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_dependencies_successor ON dependencies(successor_work_item_id)`); err != nil {
		return fmt.Errorf("recreating idx_dependencies_successor: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing dependencies migration: %w", err)
	}
	committed = true

	return nil
}

func createDependencies(table string) string {
	return `CREATE TABLE IF NOT EXISTS ` + table + ` (
		predecessor_work_item_id TEXT NOT NULL REFERENCES work_items(id) ON DELETE CASCADE,
		successor_work_item_id   TEXT NOT NULL REFERENCES work_items(id) ON DELETE CASCADE,
		kind                     TEXT NOT NULL DEFAULT 'finish_to_start'
		                         CHECK(kind IN ('finish_to_start','start_to_start','finish_to_finish','start_to_finish')),
		created_at               TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (predecessor_work_item_id, successor_work_item_id),
		CHECK(predecessor_work_item_id != successor_work_item_id)
	)`
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS resources (
		id           TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		weekly_hours REAL NOT NULL DEFAULT 40 CHECK(weekly_hours >= 0),
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS resource_availability (
		resource_id TEXT NOT NULL REFERENCES resources(id) ON DELETE CASCADE,
		date        TEXT NOT NULL,
		hours       REAL NOT NULL CHECK(hours >= 0),
		PRIMARY KEY (resource_id, date)
	)`,

	`CREATE TABLE IF NOT EXISTS work_items (
		id                   TEXT PRIMARY KEY,
		title                TEXT NOT NULL,
		status               TEXT NOT NULL DEFAULT 'todo'
		                     CHECK(status IN ('todo','in_progress','done')),
		estimated_hours      REAL CHECK(estimated_hours IS NULL OR estimated_hours >= 0),
		assigned_resource_id TEXT REFERENCES resources(id) ON DELETE SET NULL,
		due_date             TEXT,
		created_at           TEXT NOT NULL,
		updated_at           TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_work_items_status ON work_items(status)`,
	`CREATE INDEX IF NOT EXISTS idx_work_items_resource ON work_items(assigned_resource_id)`,

	createDependencies("dependencies"),

	`CREATE INDEX IF NOT EXISTS idx_dependencies_successor ON dependencies(successor_work_item_id)`,

	// Add role to resources
	`ALTER TABLE resources ADD COLUMN role TEXT NOT NULL DEFAULT ''`,

	// Skills and metadata filters, stored as JSON
	`ALTER TABLE resources ADD COLUMN skills TEXT NOT NULL DEFAULT '[]'`,
	`ALTER TABLE resources ADD COLUMN metadata_filters TEXT NOT NULL DEFAULT '{}'`,
	`ALTER TABLE work_items ADD COLUMN metadata TEXT NOT NULL DEFAULT '{}'`,
}
