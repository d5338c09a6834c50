package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/alexanderramin/planwright/internal/domain"
	"github.com/alexanderramin/planwright/internal/importer"
	"github.com/alexanderramin/planwright/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rollbackSchema() *importer.ImportSchema {
	return &importer.ImportSchema{
		Resources: []importer.ResourceImport{
			{Ref: "r1", Name: "Alice", WeeklyHours: ptrFloat(40), Availability: map[string]float64{"2026-01-05": 4}},
		},
		Items: []importer.WorkItemImport{
			{Ref: "t1", Title: "Task 1", EstimatedHours: ptrFloat(4), ResourceRef: ptrStr("r1")},
			{Ref: "t2", Title: "Task 2", EstimatedHours: ptrFloat(6), ResourceRef: ptrStr("r1")},
			{Ref: "t3", Title: "Task 3"},
		},
		Dependencies: []importer.DependencyImport{
			{From: "t1", To: "t2"},
			{From: "t2", To: "t3", Kind: "start_to_start"},
		},
	}
}

func TestImportPlan_RollbackOnFailure(t *testing.T) {
	// ExecContext calls in ImportPlanFromSchema:
	// #1 = resource, #2 = its availability override,
	// #3..#5 = work items, #6..#7 = dependencies
	tests := []struct {
		name   string
		failOn int32
	}{
		{"resource create", 1},
		{"availability override", 2},
		{"second work item", 4},
		{"last work item", 5},
		{"first dependency", 6},
		{"last dependency", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupServices(t)
			injected := fmt.Errorf("injected failure on exec #%d", tt.failOn)
			svc := NewImportService(&testutil.FailOnNthExecUoW{
				DB:     s.db,
				FailOn: tt.failOn,
				Err:    injected,
			})

			_, err := svc.ImportPlanFromSchema(context.Background(), rollbackSchema())
			require.Error(t, err)
			assert.ErrorIs(t, err, injected)

			testutil.AssertEmptyPlan(t, s.db)
		})
	}
}

func TestImportPlan_NoFailureBeyondLastExec(t *testing.T) {
	s := setupServices(t)
	svc := NewImportService(&testutil.FailOnNthExecUoW{
		DB:     s.db,
		FailOn: 8,
		Err:    fmt.Errorf("never reached"),
	})

	result, err := svc.ImportPlanFromSchema(context.Background(), rollbackSchema())
	require.NoError(t, err)
	assert.Equal(t, 3, result.ItemCount)

	items, err := s.workItems.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestDependencyAdd_RollbackOnUpsertFailure(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	a := s.addItem(t, "A")
	b := s.addItem(t, "B")

	injected := fmt.Errorf("injected upsert failure")
	svc := NewDependencyService(s.deps, &testutil.FailOnNthExecUoW{DB: s.db, FailOn: 1, Err: injected})

	err := svc.Add(ctx, domain.Dependency{From: a.ID, To: b.ID, Kind: domain.FinishToStart})
	require.Error(t, err)
	assert.ErrorIs(t, err, injected)

	deps, err := s.deps.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, deps)
}

func TestDependencyRemove_RollbackOnDeleteFailure(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	a := s.addItem(t, "A")
	b := s.addItem(t, "B")
	s.link(t, a, b, domain.FinishToStart)

	injected := fmt.Errorf("injected delete failure")
	svc := NewDependencyService(s.deps, &testutil.FailOnNthExecUoW{DB: s.db, FailOn: 1, Err: injected})

	removed, err := svc.Remove(ctx, a.ID, b.ID)
	require.ErrorIs(t, err, injected)
	assert.False(t, removed)
	assert.Equal(t, 1, testutil.CountRows(t, s.db, "dependencies"))
}

func TestDependencyRemove_MissingEdgeSkipsWrite(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	a := s.addItem(t, "A")
	b := s.addItem(t, "B")

	uow := &testutil.FailOnNthExecUoW{DB: s.db, FailOn: 1, Err: fmt.Errorf("unexpected write")}
	svc := NewDependencyService(s.deps, uow)

	removed, err := svc.Remove(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Zero(t, uow.Execs())
}

func TestDependencyAdd_ObservesGraphSize(t *testing.T) {
	obs := &recordingObserver{}
	s := setupServices(t, obs)
	a := s.addItem(t, "A")
	b := s.addItem(t, "B")
	s.addItem(t, "C")

	require.NoError(t, s.depSvc.Add(context.Background(), domain.Dependency{From: a.ID, To: b.ID}))

	e := obs.events[len(obs.events)-1]
	assert.Equal(t, "add-dependency", e.Name)
	assert.Equal(t, 3, e.Fields["graph_size"])
}
