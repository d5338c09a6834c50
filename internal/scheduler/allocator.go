package scheduler

import (
	"fmt"
	"math"
	"time"

	"github.com/alexanderramin/planwright/internal/domain"
)

// epsilon absorbs float drift when comparing remaining hours to zero.
const epsilon = 1e-9

// scheduleOnResource walks forward one calendar day at a time from earliest,
// claiming whatever capacity the resource has left on each day until the
// estimate is covered.
func (s *Scheduler) scheduleOnResource(
	item *domain.WorkItem,
	res *domain.Resource,
	earliest time.Time,
	book ledger,
) (domain.ScheduledItem, string) {
	resID := res.ID
	scheduled := domain.ScheduledItem{
		ItemID:     item.ID,
		ResourceID: &resID,
		StartDate:  earliest,
		EndDate:    earliest,
	}

	remaining := item.Estimate()
	if remaining <= epsilon {
		return scheduled, fmt.Sprintf("%s has a zero estimate", item.Label())
	}

	allocated := 0.0
	first := true
	day := earliest
	for i := 0; i < s.opts.HorizonDays && remaining > epsilon; i++ {
		free := res.AvailabilityFor(day) - book.committed(res.ID, day)
		if free > epsilon {
			take := math.Min(free, remaining)
			book.commit(res.ID, day, take)
			allocated += take
			remaining -= take
			if first {
				scheduled.StartDate = day
				first = false
			}
			scheduled.EndDate = day
		}
		day = domain.AddDays(day, 1)
	}
	scheduled.AllocatedHours = allocated

	if remaining > epsilon {
		return scheduled, fmt.Sprintf(
			"%s could not be fully allocated on %s within %d days (%.1fh of %.1fh placed)",
			item.Label(), res.Label(), s.opts.HorizonDays, allocated, item.Estimate())
	}
	return scheduled, ""
}

// scheduleBusinessDays places an item without touching any resource ledger:
// HoursPerDay on each weekday, weekends skipped.
func (s *Scheduler) scheduleBusinessDays(item *domain.WorkItem, earliest time.Time) domain.ScheduledItem {
	hours := item.Estimate()
	startDay := nextBusinessDay(earliest)

	days := int(math.Ceil(hours / s.opts.HoursPerDay))
	end := startDay
	for counted := 1; counted < days; {
		end = domain.AddDays(end, 1)
		if !domain.IsWeekend(end) {
			counted++
		}
	}

	return domain.ScheduledItem{
		ItemID:         item.ID,
		StartDate:      startDay,
		EndDate:        end,
		AllocatedHours: hours,
	}
}

// nextBusinessDay returns t, or the following Monday when t is a weekend.
func nextBusinessDay(t time.Time) time.Time {
	for domain.IsWeekend(t) {
		t = domain.AddDays(t, 1)
	}
	return t
}

// ledger records hours already committed per resource per calendar day.
type ledger map[string]map[string]float64

func newLedger() ledger {
	return make(ledger)
}

func (l ledger) committed(resourceID string, day time.Time) float64 {
	return l[resourceID][domain.DateKey(day)]
}

func (l ledger) commit(resourceID string, day time.Time, hours float64) {
	days, ok := l[resourceID]
	if !ok {
		days = make(map[string]float64)
		l[resourceID] = days
	}
	days[domain.DateKey(day)] += hours
}

func (l ledger) snapshot() map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(l))
	for res, days := range l {
		cp := make(map[string]float64, len(days))
		for k, v := range days {
			cp[k] = v
		}
		out[res] = cp
	}
	return out
}
