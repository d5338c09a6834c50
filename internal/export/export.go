// Package export renders a computed timeline as a JSON document suitable for
// chart tooling.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/alexanderramin/planwright/internal/domain"
	"github.com/alexanderramin/planwright/internal/scheduler"
)

// Document is the top-level export shape.
type Document struct {
	Tasks         []Task        `json:"tasks"`
	Dependencies  []Link        `json:"dependencies"`
	Resources     []Resource    `json:"resources"`
	Schedule      Schedule      `json:"schedule"`
	ChartSettings ChartSettings `json:"chart_settings"`
}

// Link is a dependency arrow between two exported tasks.
type Link struct {
	From string `json:"from"`
	To   string `json:"to"`
	Kind string `json:"kind"`
}

type Task struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Status         string   `json:"status"`
	EstimatedHours *float64 `json:"estimated_hours"`
	ResourceID     *string  `json:"resource_id"`
	DueDate        *string  `json:"due_date,omitempty"`
}

type Resource struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Role         string             `json:"role,omitempty"`
	WeeklyHours  float64            `json:"weekly_hours"`
	Availability map[string]float64 `json:"availability,omitempty"`
	Utilization  float64            `json:"utilization_pct"`
}

type Schedule struct {
	Items             []ScheduledItem `json:"items"`
	Allocations       []Allocation    `json:"allocations"`
	CriticalPath      []string        `json:"critical_path"`
	Warnings          []string        `json:"warnings"`
	TotalDurationDays int             `json:"total_duration_days"`
}

// Allocation is the hours one task draws from one resource, with the
// average per calendar day over its span.
type Allocation struct {
	ResourceID string  `json:"resource_id"`
	ItemID     string  `json:"item_id"`
	Hours      float64 `json:"hours"`
	DailyHours float64 `json:"daily_hours"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
}

type ScheduledItem struct {
	ItemID         string  `json:"item_id"`
	ResourceID     *string `json:"resource_id"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	DurationDays   int     `json:"duration_days"`
	AllocatedHours float64 `json:"allocated_hours"`
	Critical       bool    `json:"critical"`
	Risk           string  `json:"risk,omitempty"`
}

type ChartSettings struct {
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	TotalDays        int    `json:"total_days"`
	ShowCriticalPath bool   `json:"show_critical_path"`
	ShowWeekends     bool   `json:"show_weekends"`
}

// Options controls the chart_settings block.
type Options struct {
	// Start anchors the chart when the schedule is empty.
	Start            time.Time
	ShowCriticalPath bool
	ShowWeekends     bool
}

// Build assembles a Document. Tasks and scheduled items follow the
// schedule's processing order; resources are sorted by name. Only
// dependencies whose endpoints are both exported tasks become links.
func Build(
	items map[string]*domain.WorkItem,
	resources map[string]*domain.Resource,
	deps []domain.Dependency,
	sched *scheduler.TimelineSchedule,
	opts Options,
) *Document {
	doc := &Document{
		Tasks:        make([]Task, 0, len(items)),
		Dependencies: make([]Link, 0, len(deps)),
		Resources:    make([]Resource, 0, len(resources)),
		Schedule: Schedule{
			Items:             make([]ScheduledItem, 0, len(sched.ItemSchedules)),
			Allocations:       make([]Allocation, 0, len(sched.Allocations)),
			CriticalPath:      append([]string{}, sched.CriticalPath...),
			Warnings:          append([]string{}, sched.Warnings...),
			TotalDurationDays: sched.TotalDurationDays(),
		},
	}

	for _, id := range taskOrder(items, sched) {
		w := items[id]
		task := Task{
			ID:             w.ID,
			Title:          w.Title,
			Status:         string(w.Status),
			EstimatedHours: w.EstimatedHours,
			ResourceID:     w.AssignedResourceID,
		}
		if w.DueDate != nil {
			due := domain.DateKey(*w.DueDate)
			task.DueDate = &due
		}
		doc.Tasks = append(doc.Tasks, task)

		s, ok := sched.ItemSchedules[id]
		if !ok {
			continue
		}
		doc.Schedule.Items = append(doc.Schedule.Items, ScheduledItem{
			ItemID:         s.ItemID,
			ResourceID:     s.ResourceID,
			StartDate:      domain.DateKey(s.StartDate),
			EndDate:        domain.DateKey(s.EndDate),
			DurationDays:   s.DurationDays(),
			AllocatedHours: s.AllocatedHours,
			Critical:       sched.IsCritical(id),
			Risk:           string(sched.Risk[id]),
		})
	}

	for _, d := range deps {
		if items[d.From] == nil || items[d.To] == nil {
			continue
		}
		doc.Dependencies = append(doc.Dependencies, Link{From: d.From, To: d.To, Kind: string(d.Kind)})
	}

	for _, a := range sched.Allocations {
		doc.Schedule.Allocations = append(doc.Schedule.Allocations, Allocation{
			ResourceID: a.ResourceID,
			ItemID:     a.ItemID,
			Hours:      a.Hours,
			DailyHours: a.DailyHours(),
			StartDate:  domain.DateKey(a.StartDate),
			EndDate:    domain.DateKey(a.EndDate),
		})
	}

	resList := make([]*domain.Resource, 0, len(resources))
	for _, r := range resources {
		resList = append(resList, r)
	}
	sort.Slice(resList, func(i, j int) bool {
		if resList[i].Name != resList[j].Name {
			return resList[i].Name < resList[j].Name
		}
		return resList[i].ID < resList[j].ID
	})
	for _, r := range resList {
		doc.Resources = append(doc.Resources, Resource{
			ID:           r.ID,
			Name:         r.Name,
			Role:         r.Role,
			WeeklyHours:  r.WeeklyHours,
			Availability: r.Availability,
			Utilization:  sched.Utilization(r),
		})
	}

	start, end, ok := sched.Bounds()
	if !ok {
		start = domain.Day(opts.Start)
		end = start
	}
	doc.ChartSettings = ChartSettings{
		StartDate:        domain.DateKey(start),
		EndDate:          domain.DateKey(end),
		TotalDays:        domain.DaysBetween(start, end) + 1,
		ShowCriticalPath: opts.ShowCriticalPath,
		ShowWeekends:     opts.ShowWeekends,
	}
	return doc
}

// taskOrder lists scheduled ids first, then any items the schedule skipped,
// by id.
func taskOrder(items map[string]*domain.WorkItem, sched *scheduler.TimelineSchedule) []string {
	seen := make(map[string]bool, len(items))
	order := make([]string, 0, len(items))
	for _, id := range sched.Order {
		if _, ok := items[id]; ok && !seen[id] {
			seen[id] = true
			order = append(order, id)
		}
	}
	var rest []string
	for id := range items {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

// Write encodes doc as indented JSON.
func Write(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding timeline export: %w", err)
	}
	return nil
}
