package formatter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/alexanderramin/planwright/internal/domain"
	"github.com/alexanderramin/planwright/internal/scheduler"
)

// ScheduleView is everything FormatSchedule needs.
type ScheduleView struct {
	Timeline  *scheduler.TimelineSchedule
	Items     map[string]*domain.WorkItem
	Resources map[string]*domain.Resource
}

// FormatSchedule renders the timeline table, per-resource utilization and
// any warnings.
func FormatSchedule(v ScheduleView) string {
	tl := v.Timeline
	if len(tl.Order) == 0 {
		return Dim("Nothing to schedule.") + "\n"
	}

	rows := make([][]string, 0, len(tl.Order))
	for _, id := range tl.Order {
		s, ok := tl.ItemSchedules[id]
		if !ok {
			continue
		}
		marker := " "
		if tl.IsCritical(id) {
			marker = StyleRed.Render("★")
		}
		risk := Dim("--")
		if r, ok := tl.Risk[id]; ok {
			risk = RiskIndicator(r)
		}
		hours := s.AllocatedHours
		rows = append(rows, []string{
			marker,
			Bold(itemLabel(id, v.Items)),
			resourceName(s.ResourceID, v.Resources),
			FormatDate(s.StartDate),
			FormatDate(s.EndDate),
			strconv.Itoa(s.DurationDays()),
			FormatHours(&hours),
			risk,
		})
	}
	table := Table{
		Headers: []string{"", "ITEM", "RESOURCE", "START", "END", "DAYS", "HOURS", "RISK"},
		Rows:    rows,
		Right:   map[int]bool{5: true, 6: true},
	}

	var b strings.Builder
	b.WriteString(table.Render())

	start, end, _ := tl.Bounds()
	b.WriteString(fmt.Sprintf("\n%s %s → %s (%d days)\n",
		Dim("SPAN"), domain.DateKey(start), domain.DateKey(end), tl.TotalDurationDays()))

	if util := formatUtilization(v); util != "" {
		b.WriteString("\n" + Header("Utilization") + "\n")
		b.WriteString(util)
	}

	if atRisk := formatAtRisk(v); atRisk != "" {
		b.WriteString("\n" + Header("At risk") + "\n")
		b.WriteString(atRisk)
	}

	if len(tl.Warnings) > 0 {
		b.WriteString("\n" + Header("Warnings") + "\n")
		for _, w := range tl.Warnings {
			b.WriteString(fmt.Sprintf("%s %s\n", StyleYellow.Render("!"), w))
		}
	}

	return RenderBox("Schedule", strings.TrimRight(b.String(), "\n"))
}

func formatUtilization(v ScheduleView) string {
	list := make([]*domain.Resource, 0, len(v.Resources))
	for _, r := range v.Resources {
		list = append(list, r)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})

	rows := make([][]string, 0, len(list))
	for _, r := range list {
		rows = append(rows, []string{r.Name, RenderBar(v.Timeline.Utilization(r), 20)})
	}
	if len(rows) == 0 {
		return ""
	}
	return Table{Headers: []string{"RESOURCE", "LOAD"}, Rows: rows}.Render()
}

// formatAtRisk lists items that are not on track, most urgent first.
func formatAtRisk(v ScheduleView) string {
	tl := v.Timeline
	var ids []string
	for id, r := range tl.Risk {
		if r != domain.RiskOnTrack {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		pi, pj := scheduler.RiskPriority(tl.Risk[ids[i]]), scheduler.RiskPriority(tl.Risk[ids[j]])
		if pi != pj {
			return pi < pj
		}
		ei, ej := tl.ItemSchedules[ids[i]].EndDate, tl.ItemSchedules[ids[j]].EndDate
		if !ei.Equal(ej) {
			return ei.Before(ej)
		}
		return ids[i] < ids[j]
	})

	var b strings.Builder
	for _, id := range ids {
		due := ""
		if item, ok := v.Items[id]; ok && item.DueDate != nil {
			due = " due " + domain.DateKey(*item.DueDate)
		}
		b.WriteString(fmt.Sprintf("%s %s%s\n", RiskIndicator(tl.Risk[id]), itemLabel(id, v.Items), Dim(due)))
	}
	return b.String()
}
