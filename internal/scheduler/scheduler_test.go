package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/planwright/internal/domain"
	"github.com/alexanderramin/planwright/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var monday = date(2024, 1, 1)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func hours(h float64) *float64 { return &h }

func strPtr(s string) *string { return &s }

func item(id string, h *float64, resourceID string) *domain.WorkItem {
	w := &domain.WorkItem{ID: id, Title: id, Status: domain.WorkItemTodo, EstimatedHours: h}
	if resourceID != "" {
		w.AssignedResourceID = strPtr(resourceID)
	}
	return w
}

func resource(id string, weekly float64) *domain.Resource {
	return &domain.Resource{ID: id, Name: id, WeeklyHours: weekly, Availability: map[string]float64{}}
}

func itemsOf(ws ...*domain.WorkItem) map[string]*domain.WorkItem {
	m := make(map[string]*domain.WorkItem, len(ws))
	for _, w := range ws {
		m[w.ID] = w
	}
	return m
}

func resourcesOf(rs ...*domain.Resource) map[string]*domain.Resource {
	m := make(map[string]*domain.Resource, len(rs))
	for _, r := range rs {
		m[r.ID] = r
	}
	return m
}

func dep(from, to string, kind domain.DependencyType) domain.Dependency {
	return domain.Dependency{From: from, To: to, Kind: kind}
}

func TestCalculateSchedule_SingleItem(t *testing.T) {
	items := itemsOf(item("A", hours(8), "R"))
	g := graph.New()
	g.AddTask("A")

	sched, err := CalculateSchedule(items, resourcesOf(resource("R", 40)), g, monday)
	require.NoError(t, err)
	require.Len(t, sched.ItemSchedules, 1)

	a := sched.ItemSchedules["A"]
	assert.Equal(t, monday, a.StartDate)
	assert.Equal(t, monday, a.EndDate)
	assert.Equal(t, 8.0, a.AllocatedHours)
	require.NotNil(t, a.ResourceID)
	assert.Equal(t, "R", *a.ResourceID)
	assert.Empty(t, sched.Warnings)
}

func TestCalculateSchedule_FinishToStartChain(t *testing.T) {
	items := itemsOf(item("A", hours(8), "R"), item("B", hours(16), "R"))
	g := graph.New()
	require.NoError(t, g.AddDependency(dep("A", "B", domain.FinishToStart)))

	sched, err := CalculateSchedule(items, resourcesOf(resource("R", 40)), g, monday)
	require.NoError(t, err)

	b := sched.ItemSchedules["B"]
	assert.Equal(t, date(2024, 1, 2), b.StartDate)
	assert.Equal(t, date(2024, 1, 3), b.EndDate)
	assert.Equal(t, []string{"A", "B"}, sched.CriticalPath)
}

func TestCalculateSchedule_SharedResourceSpillsToNextWeek(t *testing.T) {
	items := itemsOf(item("first", hours(40), "R"), item("second", hours(20), "R"))

	sched, err := CalculateSchedule(items, resourcesOf(resource("R", 40)), graph.New(), monday)
	require.NoError(t, err)

	first := sched.ItemSchedules["first"]
	second := sched.ItemSchedules["second"]
	assert.Equal(t, monday, first.StartDate)
	assert.Equal(t, date(2024, 1, 5), first.EndDate)
	assert.Equal(t, date(2024, 1, 8), second.StartDate)
	assert.Equal(t, date(2024, 1, 10), second.EndDate)
	assert.Equal(t, []string{"first", "second"}, sched.Order)
}

func TestCalculateSchedule_GraphOrderBreaksResourceTies(t *testing.T) {
	items := itemsOf(item("z", hours(8), "R"), item("a", hours(8), "R"))
	g := graph.New()
	g.AddTask("z")
	g.AddTask("a")

	sched, err := CalculateSchedule(items, resourcesOf(resource("R", 40)), g, monday)
	require.NoError(t, err)

	assert.Equal(t, monday, sched.ItemSchedules["z"].StartDate, "z was registered first")
	assert.Equal(t, date(2024, 1, 2), sched.ItemSchedules["a"].StartDate)
}

func TestCalculateSchedule_UnassignedItem(t *testing.T) {
	w := item("U", hours(16), "")
	w.Title = "Write runbook"

	sched, err := CalculateSchedule(itemsOf(w), nil, graph.New(), monday)
	require.NoError(t, err)

	u, ok := sched.ItemSchedules["U"]
	require.True(t, ok)
	assert.Nil(t, u.ResourceID)
	assert.Equal(t, monday, u.StartDate)
	assert.Equal(t, date(2024, 1, 2), u.EndDate)
	assert.Equal(t, 16.0, u.AllocatedHours)
	require.Len(t, sched.Warnings, 1)
	assert.Contains(t, sched.Warnings[0], "unassigned")
	assert.Contains(t, sched.Warnings[0], "Write runbook")
	assert.Empty(t, sched.Allocations)
}

func TestCalculateSchedule_UnassignedSkipsWeekends(t *testing.T) {
	friday := date(2024, 1, 5)
	sched, err := CalculateSchedule(itemsOf(item("U", hours(20), "")), nil, graph.New(), friday)
	require.NoError(t, err)

	u := sched.ItemSchedules["U"]
	assert.Equal(t, friday, u.StartDate)
	assert.Equal(t, date(2024, 1, 9), u.EndDate, "fri + mon + tue")

	saturday := date(2024, 1, 6)
	sched, err = CalculateSchedule(itemsOf(item("U", hours(8), "")), nil, graph.New(), saturday)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 1, 8), sched.ItemSchedules["U"].StartDate)
}

func TestCalculateSchedule_MissingEstimate(t *testing.T) {
	items := itemsOf(item("N", nil, "R"))
	sched, err := CalculateSchedule(items, resourcesOf(resource("R", 40)), graph.New(), monday)
	require.NoError(t, err)

	n := sched.ItemSchedules["N"]
	assert.Equal(t, monday, n.StartDate)
	assert.Equal(t, monday, n.EndDate)
	assert.Equal(t, 0.0, n.AllocatedHours)
	require.Len(t, sched.Warnings, 1)
	assert.Contains(t, sched.Warnings[0], "has no estimate")
	assert.Empty(t, sched.ResourceLoad["R"], "business-day model never touches the ledger")
}

func TestCalculateSchedule_UnassignedAndMissingEstimate(t *testing.T) {
	sched, err := CalculateSchedule(itemsOf(item("X", nil, "")), nil, graph.New(), monday)
	require.NoError(t, err)
	require.Len(t, sched.Warnings, 2)
	assert.Contains(t, sched.Warnings[0], "unassigned")
	assert.Contains(t, sched.Warnings[1], "has no estimate")
}

func TestCalculateSchedule_UnknownResource(t *testing.T) {
	sched, err := CalculateSchedule(itemsOf(item("A", hours(8), "ghost")), nil, graph.New(), monday)
	require.NoError(t, err)

	require.Len(t, sched.Warnings, 1)
	assert.Contains(t, sched.Warnings[0], "unknown resource ghost")
	assert.Equal(t, monday, sched.ItemSchedules["A"].EndDate)
}

func TestCalculateSchedule_FilterMismatchWarnsButSchedules(t *testing.T) {
	infra := resource("R", 40)
	infra.MetadataFilters = map[string]string{"category": "infrastructure"}
	ui := item("UI", hours(8), "R")
	ui.Metadata = map[string]string{"category": "frontend"}
	db := item("DB", hours(8), "R")
	db.Metadata = map[string]string{"category": "infrastructure"}

	g := graph.New()
	g.AddTask("DB")
	g.AddTask("UI")
	sched, err := CalculateSchedule(itemsOf(ui, db), resourcesOf(infra), g, monday)
	require.NoError(t, err)

	assert.Equal(t, []string{"UI does not match the metadata filters of R"}, sched.Warnings)
	assert.Equal(t, 8.0, sched.ItemSchedules["UI"].AllocatedHours)
	assert.Equal(t, date(2024, 1, 2), sched.ItemSchedules["UI"].StartDate)
	assert.Len(t, sched.Allocations, 2)
}

func TestCalculateSchedule_ZeroEstimate(t *testing.T) {
	sched, err := CalculateSchedule(itemsOf(item("Z", hours(0), "R")), resourcesOf(resource("R", 40)), graph.New(), monday)
	require.NoError(t, err)

	z := sched.ItemSchedules["Z"]
	assert.Equal(t, monday, z.StartDate)
	assert.Equal(t, monday, z.EndDate)
	require.Len(t, sched.Warnings, 1)
	assert.Contains(t, sched.Warnings[0], "zero estimate")
}

func TestCalculateSchedule_StartToStart(t *testing.T) {
	items := itemsOf(item("A", hours(16), "R1"), item("B", hours(8), "R2"))
	g := graph.New()
	require.NoError(t, g.AddDependency(dep("X", "A", domain.FinishToStart)))
	require.NoError(t, g.AddDependency(dep("A", "B", domain.StartToStart)))
	items["X"] = item("X", hours(8), "R1")

	sched, err := CalculateSchedule(items, resourcesOf(resource("R1", 40), resource("R2", 40)), g, monday)
	require.NoError(t, err)

	assert.Equal(t, date(2024, 1, 2), sched.ItemSchedules["A"].StartDate)
	assert.Equal(t, date(2024, 1, 2), sched.ItemSchedules["B"].StartDate)
}

func TestCalculateSchedule_FinishToFinish(t *testing.T) {
	items := itemsOf(item("A", hours(24), "R1"), item("B", hours(8), "R2"))
	g := graph.New()
	require.NoError(t, g.AddDependency(dep("A", "B", domain.FinishToFinish)))

	sched, err := CalculateSchedule(items, resourcesOf(resource("R1", 40), resource("R2", 40)), g, monday)
	require.NoError(t, err)

	a := sched.ItemSchedules["A"]
	b := sched.ItemSchedules["B"]
	assert.Equal(t, date(2024, 1, 3), a.EndDate)
	assert.Equal(t, date(2024, 1, 3), b.StartDate)
	assert.False(t, b.EndDate.Before(a.EndDate))
}

func TestCalculateSchedule_FinishToFinishFlooredAtStart(t *testing.T) {
	items := itemsOf(item("A", hours(8), "R1"), item("B", hours(40), "R2"))
	g := graph.New()
	require.NoError(t, g.AddDependency(dep("A", "B", domain.FinishToFinish)))

	sched, err := CalculateSchedule(items, resourcesOf(resource("R1", 40), resource("R2", 40)), g, monday)
	require.NoError(t, err)
	assert.Equal(t, monday, sched.ItemSchedules["B"].StartDate)
}

func TestCalculateSchedule_StartToFinish(t *testing.T) {
	items := itemsOf(
		item("X", hours(40), "R1"),
		item("A", hours(8), "R1"),
		item("B", hours(16), "R2"),
	)
	g := graph.New()
	require.NoError(t, g.AddDependency(dep("X", "A", domain.FinishToStart)))
	require.NoError(t, g.AddDependency(dep("A", "B", domain.StartToFinish)))

	sched, err := CalculateSchedule(items, resourcesOf(resource("R1", 40), resource("R2", 40)), g, monday)
	require.NoError(t, err)

	assert.Equal(t, date(2024, 1, 8), sched.ItemSchedules["A"].StartDate)
	// Required start is sunday 01-07; R2 has no weekend capacity.
	b := sched.ItemSchedules["B"]
	assert.Equal(t, date(2024, 1, 8), b.StartDate)
	assert.Equal(t, date(2024, 1, 9), b.EndDate)
}

func TestCalculateSchedule_AvailabilityOverrides(t *testing.T) {
	r := resource("R", 40)
	r.Availability["2024-01-01"] = 4
	r.Availability["2024-01-06"] = 8 // saturday

	items := itemsOf(item("A", hours(8), "R"), item("B", hours(36), "R"))
	g := graph.New()
	g.AddTask("A")
	g.AddTask("B")

	sched, err := CalculateSchedule(items, resourcesOf(r), g, monday)
	require.NoError(t, err)

	a := sched.ItemSchedules["A"]
	assert.Equal(t, monday, a.StartDate)
	assert.Equal(t, date(2024, 1, 2), a.EndDate, "4h on the reduced monday, 4h tuesday")

	b := sched.ItemSchedules["B"]
	assert.Equal(t, date(2024, 1, 2), b.StartDate, "uses the 4h left on tuesday")
	assert.Equal(t, date(2024, 1, 6), b.EndDate, "saturday override carries the tail")

	assert.InDelta(t, 4.0, sched.ResourceLoad["R"]["2024-01-01"], 1e-9)
	assert.InDelta(t, 8.0, sched.ResourceLoad["R"]["2024-01-02"], 1e-9)
	assert.InDelta(t, 8.0, sched.ResourceLoad["R"]["2024-01-06"], 1e-9)
}

func TestCalculateSchedule_ExhaustedHorizonWarns(t *testing.T) {
	s := New(Options{HorizonDays: 30})
	sched, err := s.CalculateSchedule(itemsOf(item("A", hours(8), "idle")), resourcesOf(resource("idle", 0)), graph.New(), monday)
	require.NoError(t, err)

	a := sched.ItemSchedules["A"]
	assert.Equal(t, monday, a.StartDate)
	assert.Equal(t, 0.0, a.AllocatedHours)
	require.Len(t, sched.Warnings, 1)
	assert.Contains(t, sched.Warnings[0], "could not be fully allocated")
}

func TestCalculateSchedule_OverdueAndRisk(t *testing.T) {
	late := item("late", hours(24), "R1")
	late.DueDate = timePtr(date(2024, 1, 2))
	tight := item("tight", hours(24), "R2")
	tight.DueDate = timePtr(date(2024, 1, 4))
	easy := item("easy", hours(8), "R3")
	easy.DueDate = timePtr(date(2024, 2, 1))

	sched, err := CalculateSchedule(itemsOf(late, tight, easy),
		resourcesOf(resource("R1", 40), resource("R2", 40), resource("R3", 40)), graph.New(), monday)
	require.NoError(t, err)

	require.Len(t, sched.Warnings, 1)
	assert.Contains(t, sched.Warnings[0], "late is overdue")
	assert.Equal(t, domain.RiskCritical, sched.Risk["late"])
	assert.Equal(t, domain.RiskAtRisk, sched.Risk["tight"])
	assert.Equal(t, domain.RiskOnTrack, sched.Risk["easy"])
}

func TestCalculateSchedule_CriticalPathUsesRawEstimates(t *testing.T) {
	// "slow" finishes last because its resource has 1h/day, but "big" has
	// the larger estimate.
	items := itemsOf(item("slow", hours(8), "R1"), item("big", hours(16), "R2"))
	sched, err := CalculateSchedule(items, resourcesOf(resource("R1", 5), resource("R2", 40)), graph.New(), monday)
	require.NoError(t, err)

	assert.True(t, sched.ItemSchedules["slow"].EndDate.After(sched.ItemSchedules["big"].EndDate))
	assert.Equal(t, []string{"big"}, sched.CriticalPath, "isolated items count as single-item chains")

	g := graph.New()
	g.AddTask("slow")
	g.AddTask("big")
	sched, err = CalculateSchedule(items, resourcesOf(resource("R1", 5), resource("R2", 40)), g, monday)
	require.NoError(t, err)
	assert.Equal(t, []string{"big"}, sched.CriticalPath)
}

func TestCalculateSchedule_IsolatedItemOutweighsGraphPath(t *testing.T) {
	items := itemsOf(item("A", hours(8), ""), item("B", hours(8), ""), item("solo", hours(24), ""))
	g := graph.New()
	require.NoError(t, g.AddDependency(dep("A", "B", domain.FinishToStart)))

	sched, err := CalculateSchedule(items, nil, g, monday)
	require.NoError(t, err)
	assert.Equal(t, []string{"solo"}, sched.CriticalPath)

	items["solo"] = item("solo", hours(16), "")
	sched, err = CalculateSchedule(items, nil, g, monday)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, sched.CriticalPath, "a tie keeps the graph path")
}

func TestCalculateSchedule_NilItemsAreIgnored(t *testing.T) {
	items := map[string]*domain.WorkItem{
		"a": item("a", hours(8), "R"),
		"b": nil,
	}
	g := graph.New()
	g.AddTask("a")
	g.AddTask("b")

	var sched *TimelineSchedule
	var err error
	require.NotPanics(t, func() {
		sched, err = CalculateSchedule(items, resourcesOf(resource("R", 40)), g, monday)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, sched.Order)
	assert.Len(t, sched.ItemSchedules, 1)
	assert.Equal(t, []string{"a"}, sched.CriticalPath)
}

func TestCalculateSchedule_DiamondCriticalPath(t *testing.T) {
	items := itemsOf(item("Start", hours(0), ""), item("A", hours(40), ""), item("B", hours(16), ""), item("End", hours(0), ""))
	g := graph.New()
	require.NoError(t, g.AddDependency(dep("Start", "A", domain.FinishToStart)))
	require.NoError(t, g.AddDependency(dep("Start", "B", domain.FinishToStart)))
	require.NoError(t, g.AddDependency(dep("A", "End", domain.FinishToStart)))
	require.NoError(t, g.AddDependency(dep("B", "End", domain.FinishToStart)))

	sched, err := CalculateSchedule(items, nil, g, monday)
	require.NoError(t, err)
	assert.Equal(t, []string{"Start", "A", "End"}, sched.CriticalPath)
}

func TestCalculateSchedule_GraphNodesWithoutItemsAreSkipped(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.AddDependency(dep("ghost", "A", domain.FinishToStart)))

	sched, err := CalculateSchedule(itemsOf(item("A", hours(8), "R")), resourcesOf(resource("R", 40)), g, monday)
	require.NoError(t, err)
	assert.Len(t, sched.ItemSchedules, 1)
	assert.Equal(t, monday, sched.ItemSchedules["A"].StartDate)
}

type cyclicGraph struct{ *graph.DependencyGraph }

func (cyclicGraph) TopologicalSort() ([]string, error) {
	return nil, graph.ErrCycleDetected
}

func TestCalculateSchedule_CyclicGraphIsFatal(t *testing.T) {
	_, err := CalculateSchedule(itemsOf(item("A", hours(8), "R")), nil, cyclicGraph{graph.New()}, monday)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCyclicGraph))
}

func TestCalculateSchedule_DoesNotMutateInputs(t *testing.T) {
	r := resource("R", 40)
	r.Availability["2024-01-02"] = 2
	a := item("A", hours(12), "R")
	items := itemsOf(a)
	g := graph.New()
	g.AddTask("A")

	_, err := CalculateSchedule(items, resourcesOf(r), g, monday)
	require.NoError(t, err)

	assert.Equal(t, 12.0, *a.EstimatedHours)
	assert.Equal(t, map[string]float64{"2024-01-02": 2}, r.Availability)
	assert.Equal(t, 1, g.Len())
}

func TestCalculateSchedule_Deterministic(t *testing.T) {
	build := func() (*TimelineSchedule, error) {
		items := itemsOf(item("a", hours(30), "R"), item("b", hours(10), "R"), item("c", hours(5), "R"), item("d", hours(12), ""))
		g := graph.New()
		g.AddTask("c")
		require.NoError(t, g.AddDependency(dep("b", "a", domain.FinishToStart)))
		return CalculateSchedule(items, resourcesOf(resource("R", 30)), g, monday)
	}
	first, err := build()
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := build()
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCalculateSchedule_StartIsTruncatedToDay(t *testing.T) {
	start := time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC)
	sched, err := CalculateSchedule(itemsOf(item("A", hours(8), "R")), resourcesOf(resource("R", 40)), graph.New(), start)
	require.NoError(t, err)
	assert.Equal(t, monday, sched.ItemSchedules["A"].StartDate)
}

func TestTimelineSchedule_Summaries(t *testing.T) {
	items := itemsOf(item("A", hours(40), "R"), item("B", hours(20), "R"))
	r := resource("R", 40)
	sched, err := CalculateSchedule(items, resourcesOf(r), graph.New(), monday)
	require.NoError(t, err)

	assert.Equal(t, 10, sched.TotalDurationDays(), "2024-01-01..2024-01-10")
	require.Len(t, sched.Allocations, 2)
	assert.Equal(t, 5, sched.Allocations[0].DurationDays())
	assert.InDelta(t, 8.0, sched.Allocations[0].DailyHours(), 1e-9)
	assert.InDelta(t, 60.0/64.0*100, sched.Utilization(r), 1e-9)

	empty := &TimelineSchedule{}
	assert.Equal(t, 0, empty.TotalDurationDays())
	assert.Equal(t, 0.0, empty.Utilization(r))
}

func TestClassifyDueRisk(t *testing.T) {
	due := date(2024, 1, 10)
	assert.Equal(t, domain.RiskCritical, ClassifyDueRisk(date(2024, 1, 11), due, 2))
	assert.Equal(t, domain.RiskAtRisk, ClassifyDueRisk(date(2024, 1, 10), due, 2))
	assert.Equal(t, domain.RiskAtRisk, ClassifyDueRisk(date(2024, 1, 9), due, 2))
	assert.Equal(t, domain.RiskOnTrack, ClassifyDueRisk(date(2024, 1, 8), due, 2))
	assert.Less(t, RiskPriority(domain.RiskCritical), RiskPriority(domain.RiskAtRisk))
}

func timePtr(t time.Time) *time.Time { return &t }
