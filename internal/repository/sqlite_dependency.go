package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/planwright/internal/db"
	"github.com/alexanderramin/planwright/internal/domain"
)

// SQLiteDependencyRepo implements DependencyRepo using a SQLite database.
type SQLiteDependencyRepo struct {
	db db.DBTX
}

// NewSQLiteDependencyRepo creates a new SQLiteDependencyRepo.
func NewSQLiteDependencyRepo(conn db.DBTX) *SQLiteDependencyRepo {
	return &SQLiteDependencyRepo{db: conn}
}

const dependencyColumns = `predecessor_work_item_id, successor_work_item_id, kind`

func (r *SQLiteDependencyRepo) Upsert(ctx context.Context, d *domain.Dependency) error {
	kind := d.Kind
	if kind == "" {
		kind = domain.FinishToStart
	}
	query := `INSERT INTO dependencies (predecessor_work_item_id, successor_work_item_id, kind, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(predecessor_work_item_id, successor_work_item_id) DO UPDATE SET kind = excluded.kind`
	_, err := r.db.ExecContext(ctx, query, d.From, d.To, string(kind), nowUTC())
	if err != nil {
		return fmt.Errorf("inserting dependency: %w", err)
	}
	return nil
}

func (r *SQLiteDependencyRepo) Delete(ctx context.Context, predecessorID, successorID string) (bool, error) {
	query := `DELETE FROM dependencies WHERE predecessor_work_item_id = ? AND successor_work_item_id = ?`
	res, err := r.db.ExecContext(ctx, query, predecessorID, successorID)
	if err != nil {
		return false, fmt.Errorf("deleting dependency: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking affected rows: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteDependencyRepo) List(ctx context.Context) ([]domain.Dependency, error) {
	query := `SELECT ` + dependencyColumns + ` FROM dependencies ORDER BY rowid`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing dependencies: %w", err)
	}
	defer rows.Close()
	return scanDependencies(rows)
}

func (r *SQLiteDependencyRepo) ListPredecessors(ctx context.Context, workItemID string) ([]domain.Dependency, error) {
	query := `SELECT ` + dependencyColumns + `
		FROM dependencies WHERE successor_work_item_id = ? ORDER BY rowid`
	rows, err := r.db.QueryContext(ctx, query, workItemID)
	if err != nil {
		return nil, fmt.Errorf("listing predecessors: %w", err)
	}
	defer rows.Close()
	return scanDependencies(rows)
}

func (r *SQLiteDependencyRepo) ListSuccessors(ctx context.Context, workItemID string) ([]domain.Dependency, error) {
	query := `SELECT ` + dependencyColumns + `
		FROM dependencies WHERE predecessor_work_item_id = ? ORDER BY rowid`
	rows, err := r.db.QueryContext(ctx, query, workItemID)
	if err != nil {
		return nil, fmt.Errorf("listing successors: %w", err)
	}
	defer rows.Close()
	return scanDependencies(rows)
}

func (r *SQLiteDependencyRepo) ListBlockedWorkItemIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	blocked := make(map[string]bool)
	if len(ids) == 0 {
		return blocked, nil
	}
	args := make([]any, 0, len(ids)+1)
	args = append(args, string(domain.FinishToStart))
	for _, id := range ids {
		args = append(args, id)
	}
	query := `SELECT DISTINCT d.successor_work_item_id FROM dependencies d
		JOIN work_items w ON d.predecessor_work_item_id = w.id
		WHERE d.kind = ?
		  AND w.status != 'done'
		  AND d.successor_work_item_id IN (` + placeholders(len(ids)) + `)`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing blocked work items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning blocked work item: %w", err)
		}
		blocked[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating blocked work items: %w", err)
	}
	return blocked, nil
}

// scanDependencies scans multiple dependency rows from *sql.Rows.
func scanDependencies(rows *sql.Rows) ([]domain.Dependency, error) {
	var deps []domain.Dependency
	for rows.Next() {
		var d domain.Dependency
		var kind string
		if err := rows.Scan(&d.From, &d.To, &kind); err != nil {
			return nil, fmt.Errorf("scanning dependency: %w", err)
		}
		d.Kind = domain.DependencyType(kind)
		deps = append(deps, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating dependencies: %w", err)
	}
	return deps, nil
}
