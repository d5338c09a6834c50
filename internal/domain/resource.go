package domain

import "time"

// Resource is a staffing unit with a weekly capacity and sparse per-date
// overrides. Availability keys use DateLayout.
type Resource struct {
	ID           string
	Name         string
	Role         string
	WeeklyHours  float64
	Availability map[string]float64

	// Skills is informational; it does not gate scheduling.
	Skills []string
	// MetadataFilters restricts which items the resource takes on, e.g.
	// "category" => "infrastructure". Empty means anything.
	MetadataFilters map[string]string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Label returns the name, or the id when the name is empty.
func (r *Resource) Label() string {
	return CoalesceStr(r.Name, r.ID)
}

// DefaultDailyHours is the weekday share of WeeklyHours.
func (r *Resource) DefaultDailyHours() float64 {
	return r.WeeklyHours / 5
}

// AvailabilityFor returns the hours available on the given date: the override
// when one exists, otherwise WeeklyHours/5 on weekdays and 0 on weekends.
func (r *Resource) AvailabilityFor(date time.Time) float64 {
	if h, ok := r.Availability[DateKey(date)]; ok {
		return h
	}
	if IsWeekend(date) {
		return 0
	}
	return r.DefaultDailyHours()
}

// AvailabilityForWeek sums the overrides that fall inside the seven days
// starting at weekStart. When none of them is positive the nominal
// WeeklyHours is returned.
func (r *Resource) AvailabilityForWeek(weekStart time.Time) float64 {
	var custom float64
	for i := 0; i < 7; i++ {
		if h, ok := r.Availability[DateKey(AddDays(weekStart, i))]; ok {
			custom += h
		}
	}
	if custom > 0 {
		return custom
	}
	return r.WeeklyHours
}

// SetAvailability records an override for the given date.
func (r *Resource) SetAvailability(date time.Time, hours float64, now time.Time) {
	if r.Availability == nil {
		r.Availability = make(map[string]float64)
	}
	r.Availability[DateKey(date)] = hours
	r.UpdatedAt = now
}

// CanWorkOn reports whether an item with the given metadata passes the
// resource's filters. A single matching key/value pair is enough.
func (r *Resource) CanWorkOn(metadata map[string]string) bool {
	if len(r.MetadataFilters) == 0 {
		return true
	}
	for key, want := range r.MetadataFilters {
		if got, ok := metadata[key]; ok && got == want {
			return true
		}
	}
	return false
}
