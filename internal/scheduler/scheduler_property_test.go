package scheduler

import (
	"fmt"
	"testing"

	"github.com/alexanderramin/planwright/internal/domain"
	"github.com/alexanderramin/planwright/internal/graph"
	"pgregory.net/rapid"
)

var allKinds = []domain.DependencyType{
	domain.FinishToStart, domain.StartToStart, domain.FinishToFinish, domain.StartToFinish,
}

type plan struct {
	items     map[string]*domain.WorkItem
	resources map[string]*domain.Resource
	g         *graph.DependencyGraph
}

func drawPlan(t *rapid.T) plan {
	resources := map[string]*domain.Resource{}
	resIDs := []string{""}
	for i, n := 0, rapid.IntRange(1, 3).Draw(t, "resources"); i < n; i++ {
		r := resource(fmt.Sprintf("r%d", i), float64(rapid.IntRange(0, 60).Draw(t, "weekly")))
		for k, m := 0, rapid.IntRange(0, 4).Draw(t, "overrides"); k < m; k++ {
			day := domain.AddDays(monday, rapid.IntRange(0, 20).Draw(t, "offset"))
			r.Availability[domain.DateKey(day)] = float64(rapid.IntRange(0, 10).Draw(t, "override"))
		}
		resources[r.ID] = r
		resIDs = append(resIDs, r.ID)
	}

	items := map[string]*domain.WorkItem{}
	ids := make([]string, rapid.IntRange(1, 8).Draw(t, "items"))
	g := graph.New()
	for i := range ids {
		ids[i] = fmt.Sprintf("w%d", i)
		var est *float64
		if rapid.IntRange(0, 9).Draw(t, "hasEstimate") > 0 {
			est = hours(float64(rapid.IntRange(0, 60).Draw(t, "hours")))
		}
		items[ids[i]] = item(ids[i], est, rapid.SampledFrom(resIDs).Draw(t, "resource"))
		if rapid.Bool().Draw(t, "inGraph") {
			g.AddTask(ids[i])
		}
	}
	for k, m := 0, rapid.IntRange(0, 12).Draw(t, "edges"); k < m; k++ {
		// Rejected edges leave the graph untouched.
		_ = g.AddDependency(domain.Dependency{
			From: rapid.SampledFrom(ids).Draw(t, "from"),
			To:   rapid.SampledFrom(ids).Draw(t, "to"),
			Kind: rapid.SampledFrom(allKinds).Draw(t, "kind"),
		})
	}
	return plan{items: items, resources: resources, g: g}
}

func TestProperty_LedgerNeverExceedsAvailability(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := drawPlan(t)
		sched, err := New(Options{HorizonDays: 400}).CalculateSchedule(p.items, p.resources, p.g, monday)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for resID, days := range sched.ResourceLoad {
			res := p.resources[resID]
			for key, load := range days {
				day, err := domain.ParseDate(key)
				if err != nil {
					t.Fatalf("bad ledger key %q: %v", key, err)
				}
				if avail := res.AvailabilityFor(day); load > avail+epsilon {
					t.Fatalf("%s overbooked on %s: %.2fh of %.2fh", resID, key, load, avail)
				}
			}
		}
	})
}

func TestProperty_EveryItemScheduledWithinConstraints(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := drawPlan(t)
		sched, err := New(Options{HorizonDays: 400}).CalculateSchedule(p.items, p.resources, p.g, monday)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(sched.ItemSchedules) != len(p.items) {
			t.Fatalf("scheduled %d of %d items", len(sched.ItemSchedules), len(p.items))
		}
		for id, s := range sched.ItemSchedules {
			if s.StartDate.Before(monday) {
				t.Fatalf("%s starts before the plan start: %s", id, domain.DateKey(s.StartDate))
			}
			if s.EndDate.Before(s.StartDate) {
				t.Fatalf("%s ends before it starts", id)
			}
		}
		for _, e := range p.g.AllDependencies() {
			pred, succ := sched.ItemSchedules[e.From], sched.ItemSchedules[e.To]
			switch e.Kind {
			case domain.FinishToStart:
				if !succ.StartDate.After(pred.EndDate) {
					t.Fatalf("FS %s -> %s violated: %s starts %s, pred ends %s",
						e.From, e.To, e.To, domain.DateKey(succ.StartDate), domain.DateKey(pred.EndDate))
				}
			case domain.StartToStart:
				if succ.StartDate.Before(pred.StartDate) {
					t.Fatalf("SS %s -> %s violated", e.From, e.To)
				}
			}
		}
	})
}
