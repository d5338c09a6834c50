package testutil

import (
	"time"

	"github.com/alexanderramin/planwright/internal/domain"
	"github.com/google/uuid"
)

// WorkItem options
type WorkItemOption func(*domain.WorkItem)

func WithEstimate(hours float64) WorkItemOption {
	return func(w *domain.WorkItem) {
		w.EstimatedHours = &hours
	}
}

func WithoutEstimate() WorkItemOption {
	return func(w *domain.WorkItem) {
		w.EstimatedHours = nil
	}
}

func WithResource(id string) WorkItemOption {
	return func(w *domain.WorkItem) {
		w.AssignedResourceID = &id
	}
}

func WithDueDate(d time.Time) WorkItemOption {
	return func(w *domain.WorkItem) {
		d = domain.Day(d)
		w.DueDate = &d
	}
}

func WithWorkItemStatus(s domain.WorkItemStatus) WorkItemOption {
	return func(w *domain.WorkItem) {
		w.Status = s
	}
}

func WithMetadata(key, value string) WorkItemOption {
	return func(w *domain.WorkItem) {
		if w.Metadata == nil {
			w.Metadata = map[string]string{}
		}
		w.Metadata[key] = value
	}
}

func WithWorkItemID(id string) WorkItemOption {
	return func(w *domain.WorkItem) {
		w.ID = id
	}
}

// NewTestWorkItem returns a todo item with an 8h estimate and no resource.
func NewTestWorkItem(title string, opts ...WorkItemOption) *domain.WorkItem {
	now := time.Now().UTC().Truncate(time.Second)
	est := 8.0
	w := &domain.WorkItem{
		ID:             uuid.New().String(),
		Title:          title,
		Status:         domain.WorkItemTodo,
		EstimatedHours: &est,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Resource options
type ResourceOption func(*domain.Resource)

func WithWeeklyHours(h float64) ResourceOption {
	return func(r *domain.Resource) {
		r.WeeklyHours = h
	}
}

func WithRole(role string) ResourceOption {
	return func(r *domain.Resource) {
		r.Role = role
	}
}

func WithAvailability(date time.Time, hours float64) ResourceOption {
	return func(r *domain.Resource) {
		r.Availability[domain.DateKey(date)] = hours
	}
}

func WithSkills(skills ...string) ResourceOption {
	return func(r *domain.Resource) {
		r.Skills = append(r.Skills, skills...)
	}
}

func WithMetadataFilter(key, value string) ResourceOption {
	return func(r *domain.Resource) {
		if r.MetadataFilters == nil {
			r.MetadataFilters = map[string]string{}
		}
		r.MetadataFilters[key] = value
	}
}

func WithResourceID(id string) ResourceOption {
	return func(r *domain.Resource) {
		r.ID = id
	}
}

// NewTestResource returns a 40h/week resource with no overrides.
func NewTestResource(name string, opts ...ResourceOption) *domain.Resource {
	now := time.Now().UTC().Truncate(time.Second)
	r := &domain.Resource{
		ID:           uuid.New().String(),
		Name:         name,
		WeeklyHours:  40,
		Availability: map[string]float64{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Date returns midnight UTC on the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
