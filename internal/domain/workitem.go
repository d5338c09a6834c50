package domain

import "time"

// WorkItem is a unit of plannable work. EstimatedHours and
// AssignedResourceID are optional; the scheduler warns when either is absent.
type WorkItem struct {
	ID                 string
	Title              string
	Status             WorkItemStatus
	EstimatedHours     *float64
	AssignedResourceID *string

	// DueDate is an external deadline used only for overdue warnings.
	DueDate *time.Time
	// Metadata is free-form key/value tagging matched against resource
	// filters.
	Metadata map[string]string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Label returns the title, or the id when the title is empty.
func (w *WorkItem) Label() string {
	return CoalesceStr(w.Title, w.ID)
}

// IsDone reports whether the item counts as completed for readiness checks.
func (w *WorkItem) IsDone() bool {
	return w.Status == WorkItemDone
}

// Estimate returns the estimate in hours, or 0 when none is set.
func (w *WorkItem) Estimate() float64 {
	return ValueOr(w.EstimatedHours, 0)
}

// MarkDone transitions the item to done. Already-done items are left untouched.
func (w *WorkItem) MarkDone(now time.Time) {
	if w.Status == WorkItemDone {
		return
	}
	w.Status = WorkItemDone
	w.UpdatedAt = now
}
