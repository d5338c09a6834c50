package domain

import (
	"fmt"
	"strings"
)

type RiskLevel string

const (
	RiskOnTrack  RiskLevel = "on_track"
	RiskAtRisk   RiskLevel = "at_risk"
	RiskCritical RiskLevel = "critical"
)

type WorkItemStatus string

const (
	WorkItemTodo       WorkItemStatus = "todo"
	WorkItemInProgress WorkItemStatus = "in_progress"
	WorkItemDone       WorkItemStatus = "done"
)

// ValidWorkItemStatuses is the canonical set of accepted work item status strings.
var ValidWorkItemStatuses = map[string]bool{
	"todo": true, "in_progress": true, "done": true,
}

// DependencyType is a precedence relation between two work items.
// The set is closed: every switch over it must handle all four values.
type DependencyType string

const (
	FinishToStart  DependencyType = "finish_to_start"
	StartToStart   DependencyType = "start_to_start"
	FinishToFinish DependencyType = "finish_to_finish"
	StartToFinish  DependencyType = "start_to_finish"
)

// Valid reports whether d is one of the four precedence relations.
func (d DependencyType) Valid() bool {
	switch d {
	case FinishToStart, StartToStart, FinishToFinish, StartToFinish:
		return true
	default:
		return false
	}
}

// Short returns the two-letter abbreviation used in tables (FS, SS, FF, SF).
func (d DependencyType) Short() string {
	switch d {
	case FinishToStart:
		return "FS"
	case StartToStart:
		return "SS"
	case FinishToFinish:
		return "FF"
	case StartToFinish:
		return "SF"
	default:
		return "??"
	}
}

// ParseDependencyType accepts the canonical names and the FS/SS/FF/SF
// abbreviations, case-insensitively. An empty string means FinishToStart.
func ParseDependencyType(s string) (DependencyType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fs", string(FinishToStart):
		return FinishToStart, nil
	case "ss", string(StartToStart):
		return StartToStart, nil
	case "ff", string(FinishToFinish):
		return FinishToFinish, nil
	case "sf", string(StartToFinish):
		return StartToFinish, nil
	}
	return "", fmt.Errorf("unknown dependency type %q (expected finish_to_start, start_to_start, finish_to_finish or start_to_finish)", s)
}
