// Package scheduler turns a dependency graph, per-item estimates and
// resource calendars into a dated timeline.
//
// CalculateSchedule is a pure function of its inputs: it never mutates the
// items, resources or graph it is given and returns a fresh
// TimelineSchedule on every call.
package scheduler

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/alexanderramin/planwright/internal/domain"
	"github.com/alexanderramin/planwright/internal/graph"
)

// ErrCyclicGraph is returned when the supplied graph cannot be ordered.
var ErrCyclicGraph = errors.New("dependency graph contains a cycle")

// Graph is the read-only view of the dependency graph the scheduler needs.
// *graph.DependencyGraph satisfies it.
type Graph interface {
	TopologicalSort() ([]string, error)
	Dependencies(id string) []graph.Edge
	Contains(id string) bool
	CriticalPath(estimates map[string]float64) []string
}

var _ Graph = (*graph.DependencyGraph)(nil)

// Options tunes the scheduling model. Zero fields take the defaults.
type Options struct {
	// HoursPerDay is the business-day capacity used for items without a
	// usable resource.
	HoursPerDay float64
	// HorizonDays bounds the day-by-day walk for a single item.
	HorizonDays int
	// AtRiskBufferDays is how close to its due date an item may end before
	// it is classified at_risk.
	AtRiskBufferDays int
}

// DefaultOptions returns the standard 8h business day and a ten-year horizon.
func DefaultOptions() Options {
	return Options{
		HoursPerDay:      8,
		HorizonDays:      3660,
		AtRiskBufferDays: 2,
	}
}

// Scheduler computes timelines with a fixed set of options.
type Scheduler struct {
	opts Options
}

// New returns a Scheduler, filling unset options with defaults.
func New(opts Options) *Scheduler {
	def := DefaultOptions()
	if opts.HoursPerDay <= 0 {
		opts.HoursPerDay = def.HoursPerDay
	}
	if opts.HorizonDays <= 0 {
		opts.HorizonDays = def.HorizonDays
	}
	if opts.AtRiskBufferDays < 0 {
		opts.AtRiskBufferDays = def.AtRiskBufferDays
	}
	return &Scheduler{opts: opts}
}

// CalculateSchedule schedules items with DefaultOptions.
func CalculateSchedule(
	items map[string]*domain.WorkItem,
	resources map[string]*domain.Resource,
	g Graph,
	start time.Time,
) (*TimelineSchedule, error) {
	return New(DefaultOptions()).CalculateSchedule(items, resources, g, start)
}

// CalculateSchedule places every item on the calendar starting no earlier
// than start. Items are processed in dependency order; an item earlier in
// that order always gets first claim on shared resource capacity.
//
// Items the graph has never seen are scheduled after the graph order and
// count as single-item chains when the critical path is chosen. Nil entries
// in items are ignored.
//
// The only error is ErrCyclicGraph. Unassigned items, missing or zero
// estimates, unknown resources, resources whose filters reject the item and
// exhausted capacity are reported as warnings on the result.
func (s *Scheduler) CalculateSchedule(
	items map[string]*domain.WorkItem,
	resources map[string]*domain.Resource,
	g Graph,
	start time.Time,
) (*TimelineSchedule, error) {
	if g == nil {
		g = graph.New()
	}
	start = domain.Day(start)

	order, err := processingOrder(g, items)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCyclicGraph, err)
	}

	result := &TimelineSchedule{
		ItemSchedules: make(map[string]domain.ScheduledItem, len(order)),
		Risk:          make(map[string]domain.RiskLevel),
		Order:         order,
	}
	book := newLedger()

	for _, id := range order {
		item := items[id]
		res, resWarning := s.resolveResource(item, resources)
		if res != nil && !res.CanWorkOn(item.Metadata) {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"%s does not match the metadata filters of %s", item.Label(), res.Label()))
		}
		earliest := s.earliestStart(item, res, g, result.ItemSchedules, start)

		var scheduled domain.ScheduledItem
		switch {
		case res == nil || item.EstimatedHours == nil:
			if resWarning != "" {
				result.Warnings = append(result.Warnings, resWarning)
			}
			if item.EstimatedHours == nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf("%s has no estimate", item.Label()))
			}
			scheduled = s.scheduleBusinessDays(item, earliest)
		default:
			var warning string
			scheduled, warning = s.scheduleOnResource(item, res, earliest, book)
			if warning != "" {
				result.Warnings = append(result.Warnings, warning)
			}
			result.Allocations = append(result.Allocations, ResourceAllocation{
				ResourceID: res.ID,
				ItemID:     item.ID,
				Hours:      scheduled.AllocatedHours,
				StartDate:  scheduled.StartDate,
				EndDate:    scheduled.EndDate,
			})
		}
		result.ItemSchedules[id] = scheduled
	}

	result.CriticalPath = criticalPath(g, items, order)

	for _, id := range order {
		item := items[id]
		if item.DueDate == nil {
			continue
		}
		sched := result.ItemSchedules[id]
		due := domain.Day(*item.DueDate)
		result.Risk[id] = ClassifyDueRisk(sched.EndDate, due, s.opts.AtRiskBufferDays)
		if sched.EndDate.After(due) {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"%s is overdue: ends %s, due %s",
				item.Label(), domain.DateKey(sched.EndDate), domain.DateKey(due)))
		}
	}

	result.ResourceLoad = book.snapshot()
	return result, nil
}

// resolveResource returns the item's resource, or nil with the warning that
// explains why the item falls back to the business-day model.
func (s *Scheduler) resolveResource(item *domain.WorkItem, resources map[string]*domain.Resource) (*domain.Resource, string) {
	if item.AssignedResourceID == nil || *item.AssignedResourceID == "" {
		return nil, fmt.Sprintf("%s is unassigned", item.Label())
	}
	res, ok := resources[*item.AssignedResourceID]
	if !ok || res == nil {
		return nil, fmt.Sprintf("%s is assigned to unknown resource %s", item.Label(), *item.AssignedResourceID)
	}
	return res, ""
}

// earliestStart applies every predecessor constraint and returns the latest
// of the resulting dates, never earlier than start.
func (s *Scheduler) earliestStart(
	item *domain.WorkItem,
	res *domain.Resource,
	g Graph,
	scheduled map[string]domain.ScheduledItem,
	start time.Time,
) time.Time {
	earliest := start
	duration := s.nominalDurationDays(item, res)

	for _, e := range g.Dependencies(item.ID) {
		pred, ok := scheduled[e.ID]
		if !ok {
			continue
		}
		var required time.Time
		switch e.Kind {
		case domain.FinishToStart:
			required = domain.AddDays(pred.EndDate, 1)
		case domain.StartToStart:
			required = pred.StartDate
		case domain.FinishToFinish:
			required = domain.AddDays(pred.EndDate, -(duration - 1))
		case domain.StartToFinish:
			required = domain.AddDays(pred.StartDate, -(duration - 1))
		default:
			panic(fmt.Sprintf("scheduler: unhandled dependency type %q", e.Kind))
		}
		if required.Before(start) {
			required = start
		}
		if required.After(earliest) {
			earliest = required
		}
	}
	return earliest
}

// nominalDurationDays estimates how many working days the item needs at full
// capacity. Used only to back-compute FF and SF start dates.
func (s *Scheduler) nominalDurationDays(item *domain.WorkItem, res *domain.Resource) int {
	daily := s.opts.HoursPerDay
	if res != nil && res.DefaultDailyHours() > 0 {
		daily = res.DefaultDailyHours()
	}
	days := int(math.Ceil(item.Estimate() / daily))
	if days < 1 {
		return 1
	}
	return days
}

// criticalPath runs the graph's longest-path search over raw estimates, then
// lets an isolated item replace it when its own estimate is strictly larger.
func criticalPath(g Graph, items map[string]*domain.WorkItem, order []string) []string {
	estimates := make(map[string]float64, len(items))
	for id, item := range items {
		if item == nil {
			continue
		}
		estimates[id] = item.Estimate()
	}

	path := g.CriticalPath(estimates)
	best := 0.0
	for _, id := range path {
		best += estimates[id]
	}
	for _, id := range order {
		if g.Contains(id) {
			continue
		}
		if e := estimates[id]; e > best || (len(path) == 0 && e >= best) {
			path, best = []string{id}, e
		}
	}
	return path
}
