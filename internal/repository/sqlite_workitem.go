package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/planwright/internal/db"
	"github.com/alexanderramin/planwright/internal/domain"
)

// workItemColumns is the canonical SELECT column list for work_items.
const workItemColumns = `id, title, status, estimated_hours, assigned_resource_id,
		due_date, metadata, created_at, updated_at`

// SQLiteWorkItemRepo implements WorkItemRepo using a SQLite database.
type SQLiteWorkItemRepo struct {
	db db.DBTX
}

// NewSQLiteWorkItemRepo creates a new SQLiteWorkItemRepo.
func NewSQLiteWorkItemRepo(conn db.DBTX) *SQLiteWorkItemRepo {
	return &SQLiteWorkItemRepo{db: conn}
}

func (r *SQLiteWorkItemRepo) Create(ctx context.Context, w *domain.WorkItem) error {
	metadata, err := encodeStringMap(w.Metadata, "work item metadata")
	if err != nil {
		return err
	}
	query := `INSERT INTO work_items (id, title, status, estimated_hours, assigned_resource_id,
		due_date, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		w.ID,
		w.Title,
		string(w.Status),
		nullableFloatToValue(w.EstimatedHours),
		nullableStringToValue(w.AssignedResourceID),
		nullableTimeToString(w.DueDate, dateLayout),
		metadata,
		w.CreatedAt.Format(time.RFC3339),
		w.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting work item: %w", err)
	}
	return nil
}

func (r *SQLiteWorkItemRepo) GetByID(ctx context.Context, id string) (*domain.WorkItem, error) {
	query := `SELECT ` + workItemColumns + ` FROM work_items WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	return scanWorkItem(row)
}

func (r *SQLiteWorkItemRepo) List(ctx context.Context) ([]*domain.WorkItem, error) {
	query := `SELECT ` + workItemColumns + ` FROM work_items ORDER BY created_at, rowid`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing work items: %w", err)
	}
	defer rows.Close()
	return scanWorkItems(rows)
}

func (r *SQLiteWorkItemRepo) ListByStatus(ctx context.Context, status domain.WorkItemStatus) ([]*domain.WorkItem, error) {
	query := `SELECT ` + workItemColumns + ` FROM work_items WHERE status = ? ORDER BY created_at, rowid`
	rows, err := r.db.QueryContext(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("listing work items by status: %w", err)
	}
	defer rows.Close()
	return scanWorkItems(rows)
}

func (r *SQLiteWorkItemRepo) Update(ctx context.Context, w *domain.WorkItem) error {
	metadata, err := encodeStringMap(w.Metadata, "work item metadata")
	if err != nil {
		return err
	}
	query := `UPDATE work_items SET title = ?, status = ?, estimated_hours = ?,
		assigned_resource_id = ?, due_date = ?, metadata = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		w.Title,
		string(w.Status),
		nullableFloatToValue(w.EstimatedHours),
		nullableStringToValue(w.AssignedResourceID),
		nullableTimeToString(w.DueDate, dateLayout),
		metadata,
		w.UpdatedAt.Format(time.RFC3339),
		w.ID,
	)
	if err != nil {
		return fmt.Errorf("updating work item: %w", err)
	}
	return requireAffected(res, "work item")
}

func (r *SQLiteWorkItemRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM work_items WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting work item: %w", err)
	}
	return requireAffected(res, "work item")
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkItem(row rowScanner) (*domain.WorkItem, error) {
	var w domain.WorkItem
	var statusStr, metadataStr, createdAtStr, updatedAtStr string
	var estimate sql.NullFloat64
	var resourceID, dueDateStr sql.NullString

	err := row.Scan(
		&w.ID, &w.Title, &statusStr, &estimate, &resourceID,
		&dueDateStr, &metadataStr, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("work item: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning work item: %w", err)
	}

	w.Status = domain.WorkItemStatus(statusStr)
	w.EstimatedHours = parseNullableFloat(estimate)
	w.AssignedResourceID = parseNullableString(resourceID)
	w.DueDate = parseNullableTime(dueDateStr, dateLayout)
	if w.Metadata, err = decodeStringMap(metadataStr, "work item metadata"); err != nil {
		return nil, err
	}
	w.CreatedAt = parseTimestamp(createdAtStr)
	w.UpdatedAt = parseTimestamp(updatedAtStr)
	return &w, nil
}

func scanWorkItems(rows *sql.Rows) ([]*domain.WorkItem, error) {
	var items []*domain.WorkItem
	for rows.Next() {
		w, err := scanWorkItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating work items: %w", err)
	}
	return items, nil
}

// requireAffected maps a zero-row UPDATE or DELETE to ErrNotFound.
func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
