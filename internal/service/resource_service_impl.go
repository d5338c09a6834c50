package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/planwright/internal/domain"
	"github.com/alexanderramin/planwright/internal/repository"
	"github.com/google/uuid"
)

type resourceService struct {
	resources repository.ResourceRepo
	observer  UseCaseObserver
}

func NewResourceService(resources repository.ResourceRepo, observers ...UseCaseObserver) ResourceService {
	return &resourceService{
		resources: resources,
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *resourceService) Create(ctx context.Context, r *domain.Resource) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"name": r.Name}
	defer func() { observe(ctx, s.observer, "create-resource", startedAt, fields, err) }()

	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("resource name is required")
	}
	if r.WeeklyHours < 0 {
		return fmt.Errorf("weekly hours must be non-negative, got %g", r.WeeklyHours)
	}
	for date, hours := range r.Availability {
		if hours < 0 {
			return fmt.Errorf("availability for %s must be non-negative, got %g", date, hours)
		}
	}
	if _, ok := r.MetadataFilters[""]; ok {
		return fmt.Errorf("metadata filter keys must not be empty")
	}
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
	fields["resource_id"] = r.ID
	if err := s.resources.Create(ctx, r); err != nil {
		return fmt.Errorf("creating resource %q: %w", r.Name, err)
	}
	return nil
}

func (s *resourceService) GetByID(ctx context.Context, id string) (*domain.Resource, error) {
	return s.resources.GetByID(ctx, id)
}

func (s *resourceService) List(ctx context.Context) ([]*domain.Resource, error) {
	return s.resources.List(ctx)
}

func (s *resourceService) SetAvailability(ctx context.Context, id string, date time.Time, hours float64) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"resource_id": id, "date": domain.DateKey(date), "hours": hours}
	defer func() { observe(ctx, s.observer, "set-availability", startedAt, fields, err) }()

	if hours < 0 {
		return fmt.Errorf("availability hours must be non-negative, got %g", hours)
	}
	if _, err := s.resources.GetByID(ctx, id); err != nil {
		return fmt.Errorf("loading resource %s: %w", id, err)
	}
	if err := s.resources.SetAvailability(ctx, id, date, hours); err != nil {
		return fmt.Errorf("setting availability for %s: %w", id, err)
	}
	return nil
}

func (s *resourceService) ClearAvailability(ctx context.Context, id string, date time.Time) error {
	if err := s.resources.ClearAvailability(ctx, id, date); err != nil {
		return fmt.Errorf("clearing availability for %s: %w", id, err)
	}
	return nil
}

func (s *resourceService) Delete(ctx context.Context, id string) error {
	if err := s.resources.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting resource %s: %w", id, err)
	}
	return nil
}
