package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/planwright/internal/db"
	"github.com/alexanderramin/planwright/internal/domain"
)

// SQLiteResourceRepo implements ResourceRepo. Availability overrides live in
// resource_availability and are loaded alongside each resource.
type SQLiteResourceRepo struct {
	db db.DBTX
}

// NewSQLiteResourceRepo creates a new SQLiteResourceRepo.
func NewSQLiteResourceRepo(conn db.DBTX) *SQLiteResourceRepo {
	return &SQLiteResourceRepo{db: conn}
}

const resourceColumns = `id, name, role, weekly_hours, skills, metadata_filters, created_at, updated_at`

func (r *SQLiteResourceRepo) Create(ctx context.Context, res *domain.Resource) error {
	skills, filters, err := encodeResourceTags(res)
	if err != nil {
		return err
	}
	query := `INSERT INTO resources (id, name, role, weekly_hours, skills, metadata_filters, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		res.ID,
		res.Name,
		res.Role,
		res.WeeklyHours,
		skills,
		filters,
		res.CreatedAt.Format(time.RFC3339),
		res.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting resource: %w", err)
	}
	for key, hours := range res.Availability {
		if err := r.upsertAvailability(ctx, res.ID, key, hours); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteResourceRepo) GetByID(ctx context.Context, id string) (*domain.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources WHERE id = ?`
	res, err := scanResource(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	avail, err := r.loadAvailability(ctx, `WHERE resource_id = ?`, id)
	if err != nil {
		return nil, err
	}
	if days, ok := avail[id]; ok {
		res.Availability = days
	}
	return res, nil
}

func (r *SQLiteResourceRepo) List(ctx context.Context) ([]*domain.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources ORDER BY name, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing resources: %w", err)
	}
	defer rows.Close()

	var resources []*domain.Resource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		resources = append(resources, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating resources: %w", err)
	}
	rows.Close()

	avail, err := r.loadAvailability(ctx, ``)
	if err != nil {
		return nil, err
	}
	for _, res := range resources {
		if days, ok := avail[res.ID]; ok {
			res.Availability = days
		}
	}
	return resources, nil
}

func (r *SQLiteResourceRepo) Update(ctx context.Context, res *domain.Resource) error {
	skills, filters, err := encodeResourceTags(res)
	if err != nil {
		return err
	}
	query := `UPDATE resources SET name = ?, role = ?, weekly_hours = ?, skills = ?, metadata_filters = ?,
		updated_at = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query,
		res.Name,
		res.Role,
		res.WeeklyHours,
		skills,
		filters,
		res.UpdatedAt.Format(time.RFC3339),
		res.ID,
	)
	if err != nil {
		return fmt.Errorf("updating resource: %w", err)
	}
	return requireAffected(result, "resource")
}

func (r *SQLiteResourceRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM resources WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting resource: %w", err)
	}
	return requireAffected(result, "resource")
}

func (r *SQLiteResourceRepo) SetAvailability(ctx context.Context, resourceID string, date time.Time, hours float64) error {
	return r.upsertAvailability(ctx, resourceID, domain.DateKey(date), hours)
}

func (r *SQLiteResourceRepo) ClearAvailability(ctx context.Context, resourceID string, date time.Time) error {
	query := `DELETE FROM resource_availability WHERE resource_id = ? AND date = ?`
	if _, err := r.db.ExecContext(ctx, query, resourceID, domain.DateKey(date)); err != nil {
		return fmt.Errorf("clearing availability: %w", err)
	}
	return nil
}

func (r *SQLiteResourceRepo) upsertAvailability(ctx context.Context, resourceID, dateKey string, hours float64) error {
	query := `INSERT INTO resource_availability (resource_id, date, hours) VALUES (?, ?, ?)
		ON CONFLICT(resource_id, date) DO UPDATE SET hours = excluded.hours`
	if _, err := r.db.ExecContext(ctx, query, resourceID, dateKey, hours); err != nil {
		return fmt.Errorf("setting availability: %w", err)
	}
	return nil
}

// loadAvailability returns resource id -> date key -> hours for the rows
// matched by where.
func (r *SQLiteResourceRepo) loadAvailability(ctx context.Context, where string, args ...any) (map[string]map[string]float64, error) {
	query := `SELECT resource_id, date, hours FROM resource_availability ` + where
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("loading availability: %w", err)
	}
	defer rows.Close()

	out := make(map[string]map[string]float64)
	for rows.Next() {
		var resID, key string
		var hours float64
		if err := rows.Scan(&resID, &key, &hours); err != nil {
			return nil, fmt.Errorf("scanning availability: %w", err)
		}
		if out[resID] == nil {
			out[resID] = make(map[string]float64)
		}
		out[resID][key] = hours
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating availability: %w", err)
	}
	return out, nil
}

func scanResource(row rowScanner) (*domain.Resource, error) {
	var res domain.Resource
	var skillsStr, filtersStr, createdAtStr, updatedAtStr string
	err := row.Scan(&res.ID, &res.Name, &res.Role, &res.WeeklyHours, &skillsStr, &filtersStr, &createdAtStr, &updatedAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("resource: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning resource: %w", err)
	}
	if res.Skills, err = decodeStrings(skillsStr, "resource skills"); err != nil {
		return nil, err
	}
	if res.MetadataFilters, err = decodeStringMap(filtersStr, "resource metadata filters"); err != nil {
		return nil, err
	}
	res.CreatedAt = parseTimestamp(createdAtStr)
	res.UpdatedAt = parseTimestamp(updatedAtStr)
	res.Availability = map[string]float64{}
	return &res, nil
}

func encodeResourceTags(res *domain.Resource) (skills, filters string, err error) {
	if skills, err = encodeStrings(res.Skills, "resource skills"); err != nil {
		return "", "", err
	}
	if filters, err = encodeStringMap(res.MetadataFilters, "resource metadata filters"); err != nil {
		return "", "", err
	}
	return skills, filters, nil
}
