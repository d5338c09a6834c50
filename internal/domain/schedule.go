package domain

import "time"

// ScheduledItem is the computed placement of one work item. Dates are
// inclusive calendar days at midnight UTC.
type ScheduledItem struct {
	ItemID         string
	ResourceID     *string
	StartDate      time.Time
	EndDate        time.Time
	AllocatedHours float64
}

// DurationDays is the inclusive calendar span of the item.
func (s ScheduledItem) DurationDays() int {
	return DaysBetween(s.StartDate, s.EndDate) + 1
}
