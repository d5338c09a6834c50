package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/planwright/internal/domain"
)

type WorkItemRepo interface {
	Create(ctx context.Context, w *domain.WorkItem) error
	GetByID(ctx context.Context, id string) (*domain.WorkItem, error)
	List(ctx context.Context) ([]*domain.WorkItem, error)
	ListByStatus(ctx context.Context, status domain.WorkItemStatus) ([]*domain.WorkItem, error)
	Update(ctx context.Context, w *domain.WorkItem) error
	Delete(ctx context.Context, id string) error
}

type ResourceRepo interface {
	Create(ctx context.Context, r *domain.Resource) error
	GetByID(ctx context.Context, id string) (*domain.Resource, error)
	List(ctx context.Context) ([]*domain.Resource, error)
	Update(ctx context.Context, r *domain.Resource) error
	Delete(ctx context.Context, id string) error
	SetAvailability(ctx context.Context, resourceID string, date time.Time, hours float64) error
	ClearAvailability(ctx context.Context, resourceID string, date time.Time) error
}

type DependencyRepo interface {
	// Upsert inserts the edge or replaces the kind of an existing one.
	Upsert(ctx context.Context, d *domain.Dependency) error
	Delete(ctx context.Context, predecessorID, successorID string) (bool, error)
	// List returns every edge in insertion order.
	List(ctx context.Context) ([]domain.Dependency, error)
	ListPredecessors(ctx context.Context, workItemID string) ([]domain.Dependency, error)
	ListSuccessors(ctx context.Context, workItemID string) ([]domain.Dependency, error)
	// ListBlockedWorkItemIDs returns the subset of ids that have a
	// finish-to-start predecessor which is not done.
	ListBlockedWorkItemIDs(ctx context.Context, ids []string) (map[string]bool, error)
}
