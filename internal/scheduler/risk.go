package scheduler

import (
	"time"

	"github.com/alexanderramin/planwright/internal/domain"
)

// ClassifyDueRisk grades a computed end date against a due date:
// critical once it ends after the due date, at_risk when it ends within
// bufferDays of it, on_track otherwise.
func ClassifyDueRisk(end, due time.Time, bufferDays int) domain.RiskLevel {
	slack := domain.DaysBetween(end, due)
	switch {
	case slack < 0:
		return domain.RiskCritical
	case slack < bufferDays:
		return domain.RiskAtRisk
	default:
		return domain.RiskOnTrack
	}
}

// RiskPriority returns a sort priority (lower = more urgent).
func RiskPriority(r domain.RiskLevel) int {
	switch r {
	case domain.RiskCritical:
		return 0
	case domain.RiskAtRisk:
		return 1
	default:
		return 2
	}
}
