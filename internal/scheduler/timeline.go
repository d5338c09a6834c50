package scheduler

import (
	"time"

	"github.com/alexanderramin/planwright/internal/domain"
)

// ResourceAllocation summarises the hours one item claimed from one resource.
type ResourceAllocation struct {
	ResourceID string
	ItemID     string
	Hours      float64
	StartDate  time.Time
	EndDate    time.Time
}

// DurationDays is the inclusive calendar span of the allocation.
func (a ResourceAllocation) DurationDays() int {
	return domain.DaysBetween(a.StartDate, a.EndDate) + 1
}

// DailyHours spreads Hours evenly over the span.
func (a ResourceAllocation) DailyHours() float64 {
	return a.Hours / float64(a.DurationDays())
}

// TimelineSchedule is an immutable snapshot produced by CalculateSchedule.
// It holds no reference to the graph or items it was computed from.
type TimelineSchedule struct {
	ItemSchedules map[string]domain.ScheduledItem
	CriticalPath  []string
	Warnings      []string

	// Allocations lists resource-backed items in processing order.
	Allocations []ResourceAllocation
	// ResourceLoad is the final ledger: resource id -> YYYY-MM-DD -> hours.
	ResourceLoad map[string]map[string]float64
	// Order is the sequence in which items were allocated.
	Order []string
	// Risk grades items that carry a due date.
	Risk map[string]domain.RiskLevel
}

// Bounds returns the earliest start and latest end across all items.
func (s *TimelineSchedule) Bounds() (start, end time.Time, ok bool) {
	for _, item := range s.ItemSchedules {
		if !ok || item.StartDate.Before(start) {
			start = item.StartDate
		}
		if !ok || item.EndDate.After(end) {
			end = item.EndDate
		}
		ok = true
	}
	return start, end, ok
}

// TotalDurationDays is the inclusive span from the earliest start to the
// latest end, or 0 for an empty schedule.
func (s *TimelineSchedule) TotalDurationDays() int {
	start, end, ok := s.Bounds()
	if !ok {
		return 0
	}
	return domain.DaysBetween(start, end) + 1
}

// IsCritical reports whether id lies on the critical path.
func (s *TimelineSchedule) IsCritical(id string) bool {
	for _, c := range s.CriticalPath {
		if c == id {
			return true
		}
	}
	return false
}

// Utilization returns committed hours as a percentage of the resource's
// available hours over the schedule's span. It is 0 when the resource has no
// capacity in that span.
func (s *TimelineSchedule) Utilization(res *domain.Resource) float64 {
	start, end, ok := s.Bounds()
	if !ok || res == nil {
		return 0
	}
	var available, committed float64
	for day := start; !day.After(end); day = domain.AddDays(day, 1) {
		available += res.AvailabilityFor(day)
		committed += s.ResourceLoad[res.ID][domain.DateKey(day)]
	}
	if available <= 0 {
		return 0
	}
	return committed / available * 100
}
