package formatter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/planwright/internal/domain"
)

// FormatItemList renders work items with their assignee names.
func FormatItemList(items []*domain.WorkItem, resources map[string]*domain.Resource) string {
	if len(items) == 0 {
		return Dim("No work items.") + "\n"
	}
	rows := make([][]string, 0, len(items))
	for _, w := range items {
		rows = append(rows, []string{
			TruncID(w.ID),
			Bold(w.Title),
			WorkItemStatusPill(w.Status),
			FormatHours(w.EstimatedHours),
			resourceName(w.AssignedResourceID, resources),
			OptionalDate(w.DueDate),
			domain.CoalesceStr(formatTags(w.Metadata), Dim("--")),
		})
	}
	table := Table{
		Headers: []string{"ID", "TITLE", "STATUS", "EST", "RESOURCE", "DUE", "META"},
		Rows:    rows,
		Right:   map[int]bool{3: true},
	}
	return RenderBox("Work Items", table.Render())
}

// FormatResourceList renders resources with their calendar overrides, tags
// and capacity for the week starting at weekStart.
func FormatResourceList(resources []*domain.Resource, weekStart time.Time) string {
	if len(resources) == 0 {
		return Dim("No resources.") + "\n"
	}
	rows := make([][]string, 0, len(resources))
	for _, r := range resources {
		weekly := r.WeeklyHours
		thisWeek := r.AvailabilityForWeek(weekStart)
		rows = append(rows, []string{
			TruncID(r.ID),
			Bold(r.Name),
			domain.CoalesceStr(r.Role, Dim("--")),
			FormatHours(&weekly),
			FormatHours(&thisWeek),
			strconv.Itoa(len(r.Availability)),
			domain.CoalesceStr(strings.Join(r.Skills, ", "), Dim("--")),
			domain.CoalesceStr(formatTags(r.MetadataFilters), Dim("any")),
		})
	}
	table := Table{
		Headers: []string{"ID", "NAME", "ROLE", "WEEKLY", "WEEK OF " + domain.DateKey(weekStart), "OVERRIDES", "SKILLS", "FILTERS"},
		Rows:    rows,
		Right:   map[int]bool{3: true, 4: true, 5: true},
	}
	return RenderBox("Resources", table.Render())
}

// formatTags renders a map as sorted key=value pairs.
func formatTags(tags map[string]string) string {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + tags[k]
	}
	return strings.Join(pairs, ", ")
}

// FormatDependencyList renders edges as "predecessor -> successor".
func FormatDependencyList(deps []domain.Dependency, items map[string]*domain.WorkItem) string {
	if len(deps) == 0 {
		return Dim("No dependencies.") + "\n"
	}
	rows := make([][]string, 0, len(deps))
	for _, d := range deps {
		rows = append(rows, []string{
			itemLabel(d.From, items),
			Dim("→"),
			itemLabel(d.To, items),
			KindBadge(d.Kind),
		})
	}
	return RenderBox("Dependencies", RenderTable([]string{"FROM", "", "TO", "KIND"}, rows))
}

// FormatOrder renders a numbered topological order. Items in starts or ends
// are tagged as the first or last step of their chain.
func FormatOrder(items []*domain.WorkItem, starts, ends map[string]bool) string {
	if len(items) == 0 {
		return Dim("No work items.") + "\n"
	}
	var b strings.Builder
	for i, w := range items {
		b.WriteString(fmt.Sprintf("%3d. %s %s%s\n", i+1, Bold(w.Title), TruncID(w.ID), orderTag(starts[w.ID], ends[w.ID])))
	}
	return RenderBox("Order", strings.TrimRight(b.String(), "\n"))
}

func orderTag(start, end bool) string {
	switch {
	case start && end:
		return " " + Dim("standalone")
	case start:
		return " " + StyleGreen.Render("start")
	case end:
		return " " + StylePurple.Render("end")
	default:
		return ""
	}
}

// FormatCriticalPath renders the chain and its total estimate.
func FormatCriticalPath(items []*domain.WorkItem, totalHours float64) string {
	if len(items) == 0 {
		return Dim("No critical path: the plan is empty.") + "\n"
	}
	names := make([]string, len(items))
	for i, w := range items {
		names[i] = Bold(w.Title)
	}
	chain := strings.Join(names, Dim(" → "))
	total := fmt.Sprintf("%s %s", Dim("TOTAL"), FormatHours(&totalHours))
	return RenderBox("Critical Path", chain+"\n\n"+total)
}

// FormatReady renders a single readiness verdict.
func FormatReady(item *domain.WorkItem, ready bool, blockedBy []*domain.WorkItem) string {
	if item.IsDone() {
		return fmt.Sprintf("%s is already done.\n", Bold(item.Title))
	}
	if ready {
		return fmt.Sprintf("%s %s is ready to start.\n", StyleGreen.Render("✔"), Bold(item.Title))
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s %s is blocked by:\n", StyleRed.Render("✖"), Bold(item.Title)))
	for _, p := range blockedBy {
		b.WriteString(fmt.Sprintf("  - %s %s\n", p.Title, WorkItemStatusPill(p.Status)))
	}
	return b.String()
}

// FormatReadyList renders the items that can start now.
func FormatReadyList(items []*domain.WorkItem) string {
	if len(items) == 0 {
		return Dim("Nothing is ready to start.") + "\n"
	}
	rows := make([][]string, 0, len(items))
	for _, w := range items {
		rows = append(rows, []string{TruncID(w.ID), Bold(w.Title), FormatHours(w.EstimatedHours)})
	}
	table := Table{Headers: []string{"ID", "TITLE", "EST"}, Rows: rows, Right: map[int]bool{2: true}}
	return RenderBox("Ready", table.Render())
}

func itemLabel(id string, items map[string]*domain.WorkItem) string {
	if w, ok := items[id]; ok {
		return w.Label()
	}
	return TruncID(id)
}

func resourceName(id *string, resources map[string]*domain.Resource) string {
	if id == nil || *id == "" {
		return Dim("unassigned")
	}
	if r, ok := resources[*id]; ok {
		return r.Name
	}
	return TruncID(*id)
}
