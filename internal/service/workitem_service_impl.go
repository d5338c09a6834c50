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

type workItemService struct {
	workItems repository.WorkItemRepo
	resources repository.ResourceRepo
	observer  UseCaseObserver
}

func NewWorkItemService(
	workItems repository.WorkItemRepo,
	resources repository.ResourceRepo,
	observers ...UseCaseObserver,
) WorkItemService {
	return &workItemService{
		workItems: workItems,
		resources: resources,
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *workItemService) Create(ctx context.Context, w *domain.WorkItem) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"title": w.Title}
	defer func() { observe(ctx, s.observer, "create-item", startedAt, fields, err) }()

	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	if w.Status == "" {
		w.Status = domain.WorkItemTodo
	}
	if err := s.validate(ctx, w); err != nil {
		return err
	}
	now := time.Now().UTC()
	w.CreatedAt = now
	w.UpdatedAt = now
	fields["item_id"] = w.ID
	if err := s.workItems.Create(ctx, w); err != nil {
		return fmt.Errorf("creating work item %q: %w", w.Title, err)
	}
	return nil
}

func (s *workItemService) GetByID(ctx context.Context, id string) (*domain.WorkItem, error) {
	return s.workItems.GetByID(ctx, id)
}

func (s *workItemService) List(ctx context.Context) ([]*domain.WorkItem, error) {
	return s.workItems.List(ctx)
}

func (s *workItemService) Update(ctx context.Context, w *domain.WorkItem) error {
	if err := s.validate(ctx, w); err != nil {
		return err
	}
	w.UpdatedAt = time.Now().UTC()
	if err := s.workItems.Update(ctx, w); err != nil {
		return fmt.Errorf("updating work item %s: %w", w.ID, err)
	}
	return nil
}

func (s *workItemService) MarkDone(ctx context.Context, id string) (w *domain.WorkItem, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"item_id": id}
	defer func() { observe(ctx, s.observer, "mark-item-done", startedAt, fields, err) }()

	w, err = s.workItems.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading work item %s: %w", id, err)
	}
	if w.IsDone() {
		fields["already_done"] = true
		return w, nil
	}
	w.MarkDone(time.Now().UTC())
	if err := s.workItems.Update(ctx, w); err != nil {
		return nil, fmt.Errorf("updating work item %s: %w", id, err)
	}
	return w, nil
}

func (s *workItemService) Delete(ctx context.Context, id string) error {
	if err := s.workItems.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting work item %s: %w", id, err)
	}
	return nil
}

func (s *workItemService) validate(ctx context.Context, w *domain.WorkItem) error {
	if strings.TrimSpace(w.Title) == "" {
		return fmt.Errorf("work item title is required")
	}
	if !domain.ValidWorkItemStatuses[string(w.Status)] {
		return fmt.Errorf("invalid work item status %q (expected todo, in_progress or done)", w.Status)
	}
	if w.EstimatedHours != nil && *w.EstimatedHours < 0 {
		return fmt.Errorf("estimated hours must be non-negative, got %g", *w.EstimatedHours)
	}
	if _, ok := w.Metadata[""]; ok {
		return fmt.Errorf("metadata keys must not be empty")
	}
	if resID := domain.ValueOr(w.AssignedResourceID, ""); resID != "" {
		if _, err := s.resources.GetByID(ctx, resID); err != nil {
			return fmt.Errorf("resolving assigned resource %s: %w", resID, err)
		}
	}
	return nil
}
