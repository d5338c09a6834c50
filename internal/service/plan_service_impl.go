package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/planwright/internal/domain"
	"github.com/alexanderramin/planwright/internal/export"
	"github.com/alexanderramin/planwright/internal/repository"
	"github.com/alexanderramin/planwright/internal/scheduler"
)

type planService struct {
	workItems repository.WorkItemRepo
	resources repository.ResourceRepo
	deps      repository.DependencyRepo
	scheduler *scheduler.Scheduler
	observer  UseCaseObserver
}

func NewPlanService(
	workItems repository.WorkItemRepo,
	resources repository.ResourceRepo,
	deps repository.DependencyRepo,
	opts scheduler.Options,
	observers ...UseCaseObserver,
) PlanService {
	return &planService{
		workItems: workItems,
		resources: resources,
		deps:      deps,
		scheduler: scheduler.New(opts),
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *planService) Order(ctx context.Context) (res *OrderResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() { observe(ctx, s.observer, "order", startedAt, fields, err) }()

	snap, err := loadPlan(ctx, s.workItems, nil, s.deps)
	if err != nil {
		return nil, err
	}
	order, err := snap.graph.TopologicalSort()
	if err != nil {
		return nil, fmt.Errorf("ordering work items: %w", err)
	}
	res = &OrderResult{
		Items:  lookupItems(order, snap.itemByID),
		Starts: idSet(snap.graph.Roots()),
		Ends:   idSet(snap.graph.Leaves()),
	}
	fields["item_count"] = len(res.Items)
	return res, nil
}

func (s *planService) CriticalPath(ctx context.Context) (res *CriticalPathResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() { observe(ctx, s.observer, "critical-path", startedAt, fields, err) }()

	snap, err := loadPlan(ctx, s.workItems, nil, s.deps)
	if err != nil {
		return nil, err
	}
	estimates := make(map[string]float64, len(snap.items))
	for _, item := range snap.items {
		estimates[item.ID] = item.Estimate()
	}
	path := snap.graph.CriticalPath(estimates)

	res = &CriticalPathResult{Items: lookupItems(path, snap.itemByID)}
	for _, item := range res.Items {
		res.TotalHours += item.Estimate()
	}
	fields["length"] = len(res.Items)
	fields["total_hours"] = res.TotalHours
	return res, nil
}

func (s *planService) Ready(ctx context.Context, id string) (res *ReadyResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"item_id": id}
	defer func() { observe(ctx, s.observer, "ready", startedAt, fields, err) }()

	snap, err := loadPlan(ctx, s.workItems, nil, s.deps)
	if err != nil {
		return nil, err
	}
	item, ok := snap.itemByID[id]
	if !ok {
		return nil, fmt.Errorf("loading work item %s: %w", id, repository.ErrNotFound)
	}

	completed := completedSet(snap.items)
	res = &ReadyResult{
		Item:  item,
		Ready: snap.graph.CanStartTask(id, completed),
	}
	for _, e := range snap.graph.Dependencies(id) {
		if e.Kind == domain.FinishToStart && !completed[e.ID] {
			if pred, ok := snap.itemByID[e.ID]; ok {
				res.BlockedBy = append(res.BlockedBy, pred)
			}
		}
	}
	fields["ready"] = res.Ready
	fields["blocked_by"] = len(res.BlockedBy)
	return res, nil
}

// ReadyItems lists open items whose finish-to-start predecessors are all
// done, in creation order.
func (s *planService) ReadyItems(ctx context.Context) (ready []*domain.WorkItem, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() { observe(ctx, s.observer, "ready-items", startedAt, fields, err) }()

	items, err := s.workItems.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading work items: %w", err)
	}
	var open []*domain.WorkItem
	var ids []string
	for _, item := range items {
		if !item.IsDone() {
			open = append(open, item)
			ids = append(ids, item.ID)
		}
	}
	blocked, err := s.deps.ListBlockedWorkItemIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("checking dependencies: %w", err)
	}
	ready = make([]*domain.WorkItem, 0, len(open))
	for _, item := range open {
		if !blocked[item.ID] {
			ready = append(ready, item)
		}
	}
	fields["open"] = len(open)
	fields["ready"] = len(ready)
	return ready, nil
}

func (s *planService) Schedule(ctx context.Context, req ScheduleRequest) (res *ScheduleResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"include_done": req.IncludeDone}
	defer func() { observe(ctx, s.observer, "schedule", startedAt, fields, err) }()

	res, err = s.schedule(ctx, req)
	if err != nil {
		return nil, err
	}
	fields["start"] = domain.DateKey(res.Start)
	fields["item_count"] = len(res.Items)
	fields["warning_count"] = len(res.Timeline.Warnings)
	fields["total_days"] = res.Timeline.TotalDurationDays()
	return res, nil
}

func (s *planService) Export(ctx context.Context, req ExportRequest) (doc *export.Document, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"include_done": req.IncludeDone}
	defer func() { observe(ctx, s.observer, "export-timeline", startedAt, fields, err) }()

	res, err := s.schedule(ctx, req.ScheduleRequest)
	if err != nil {
		return nil, err
	}
	doc = export.Build(res.Items, res.Resources, res.Dependencies, res.Timeline, export.Options{
		Start:            res.Start,
		ShowCriticalPath: req.ShowCriticalPath,
		ShowWeekends:     req.ShowWeekends,
	})
	fields["task_count"] = len(doc.Tasks)
	fields["link_count"] = len(doc.Dependencies)
	fields["resource_count"] = len(doc.Resources)
	return doc, nil
}

func (s *planService) schedule(ctx context.Context, req ScheduleRequest) (*ScheduleResult, error) {
	snap, err := loadPlan(ctx, s.workItems, s.resources, s.deps)
	if err != nil {
		return nil, err
	}
	start := req.Start
	if start.IsZero() {
		start = time.Now().UTC()
	}
	start = domain.Day(start)

	items := make(map[string]*domain.WorkItem, len(snap.items))
	for _, item := range snap.items {
		if item.IsDone() && !req.IncludeDone {
			continue
		}
		items[item.ID] = item
	}

	timeline, err := s.scheduler.CalculateSchedule(items, snap.resources, snap.graph, start)
	if err != nil {
		return nil, fmt.Errorf("calculating schedule: %w", err)
	}
	return &ScheduleResult{
		Start:        start,
		Timeline:     timeline,
		Items:        items,
		Resources:    snap.resources,
		Dependencies: snap.graph.AllDependencies(),
	}, nil
}
