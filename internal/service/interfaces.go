package service

import (
	"context"
	"time"

	"github.com/alexanderramin/planwright/internal/domain"
	"github.com/alexanderramin/planwright/internal/export"
	"github.com/alexanderramin/planwright/internal/importer"
	"github.com/alexanderramin/planwright/internal/scheduler"
)

type WorkItemService interface {
	Create(ctx context.Context, w *domain.WorkItem) error
	GetByID(ctx context.Context, id string) (*domain.WorkItem, error)
	List(ctx context.Context) ([]*domain.WorkItem, error)
	Update(ctx context.Context, w *domain.WorkItem) error
	MarkDone(ctx context.Context, id string) (*domain.WorkItem, error)
	Delete(ctx context.Context, id string) error
}

type ResourceService interface {
	Create(ctx context.Context, r *domain.Resource) error
	GetByID(ctx context.Context, id string) (*domain.Resource, error)
	List(ctx context.Context) ([]*domain.Resource, error)
	SetAvailability(ctx context.Context, id string, date time.Time, hours float64) error
	ClearAvailability(ctx context.Context, id string, date time.Time) error
	Delete(ctx context.Context, id string) error
}

type DependencyService interface {
	// Add records an edge. It fails with graph.ErrCycleDetected, leaving
	// storage untouched, when the edge would close a cycle.
	Add(ctx context.Context, dep domain.Dependency) error
	Remove(ctx context.Context, from, to string) (bool, error)
	List(ctx context.Context) ([]domain.Dependency, error)
}

// PlanService answers ordering, readiness and scheduling questions over the
// stored plan. Every call rebuilds the graph from storage.
type PlanService interface {
	Order(ctx context.Context) (*OrderResult, error)
	CriticalPath(ctx context.Context) (*CriticalPathResult, error)
	Ready(ctx context.Context, id string) (*ReadyResult, error)
	ReadyItems(ctx context.Context) ([]*domain.WorkItem, error)
	Schedule(ctx context.Context, req ScheduleRequest) (*ScheduleResult, error)
	Export(ctx context.Context, req ExportRequest) (*export.Document, error)
}

type ImportService interface {
	ImportPlan(ctx context.Context, filePath string) (*ImportResult, error)
	ImportPlanFromSchema(ctx context.Context, schema *importer.ImportSchema) (*ImportResult, error)
}

// OrderResult is the dependency order plus where chains begin and end.
type OrderResult struct {
	Items []*domain.WorkItem
	// Starts holds ids with no predecessors, Ends ids with no successors.
	Starts map[string]bool
	Ends   map[string]bool
}

// CriticalPathResult is the longest estimate-weighted chain.
type CriticalPathResult struct {
	Items      []*domain.WorkItem
	TotalHours float64
}

// ReadyResult reports whether one item can start and, if not, which
// finish-to-start predecessors are still open.
type ReadyResult struct {
	Item      *domain.WorkItem
	Ready     bool
	BlockedBy []*domain.WorkItem
}

type ScheduleRequest struct {
	Start time.Time
	// IncludeDone schedules completed items too. By default they are left
	// out, and edges from them stop constraining their successors.
	IncludeDone bool
}

// ScheduleResult pairs the computed timeline with the domain objects it was
// computed from, keyed by id.
type ScheduleResult struct {
	Start     time.Time
	Timeline  *scheduler.TimelineSchedule
	Items     map[string]*domain.WorkItem
	Resources map[string]*domain.Resource
	// Dependencies lists the stored edges, grouped by predecessor.
	Dependencies []domain.Dependency
}

type ExportRequest struct {
	ScheduleRequest
	ShowCriticalPath bool
	ShowWeekends     bool
}

// ImportResult summarises a successful plan import.
type ImportResult struct {
	ResourceCount   int
	ItemCount       int
	DependencyCount int
	// Refs maps file refs to the generated ids.
	Refs map[string]string
}
