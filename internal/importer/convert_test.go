package importer

import (
	"testing"

	"github.com/alexanderramin/planwright/internal/domain"
	"github.com/alexanderramin/planwright/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert_MinimalPlan(t *testing.T) {
	plan, err := Convert(validMinimalSchema())
	require.NoError(t, err)

	require.Len(t, plan.Items, 1)
	w := plan.Items[0]
	assert.NotEmpty(t, w.ID)
	assert.Equal(t, "Task 1", w.Title)
	assert.Equal(t, domain.WorkItemTodo, w.Status)
	assert.Nil(t, w.EstimatedHours)
	assert.Nil(t, w.AssignedResourceID)
	assert.Empty(t, plan.Resources)
	assert.Empty(t, plan.Dependencies)
	assert.True(t, plan.Graph.Contains(w.ID), "every item is registered in the graph")
}

func TestConvert_FullPlan(t *testing.T) {
	plan, err := Convert(validFullSchema())
	require.NoError(t, err)

	require.Len(t, plan.Resources, 2)
	dev := plan.Resources[0]
	assert.Equal(t, "Dana", dev.Name)
	assert.Equal(t, "backend", dev.Role)
	assert.Equal(t, 40.0, dev.WeeklyHours)
	assert.Equal(t, map[string]float64{"2024-01-06": 4}, dev.Availability)
	assert.Equal(t, 40.0, plan.Resources[1].WeeklyHours, "weekly_hours defaults to 40")

	require.Len(t, plan.Items, 3)
	design, build, test := plan.Items[0], plan.Items[1], plan.Items[2]
	require.NotNil(t, design.AssignedResourceID)
	assert.Equal(t, dev.ID, *design.AssignedResourceID)
	assert.Equal(t, plan.Resources[1].ID, *test.AssignedResourceID)
	assert.Equal(t, domain.WorkItemInProgress, test.Status)
	require.NotNil(t, build.DueDate)
	assert.Equal(t, "2024-01-31", domain.DateKey(*build.DueDate))

	require.Len(t, plan.Dependencies, 2)
	assert.Equal(t, domain.Dependency{From: design.ID, To: build.ID, Kind: domain.FinishToStart}, plan.Dependencies[0])
	assert.Equal(t, domain.Dependency{From: build.ID, To: test.ID, Kind: domain.StartToStart}, plan.Dependencies[1])

	assert.Equal(t, design.ID, plan.Refs["design"])
	assert.Equal(t, dev.ID, plan.Refs["dev"])

	order, err := plan.Graph.TopologicalSort()
	require.NoError(t, err)
	assert.Equal(t, []string{design.ID, build.ID, test.ID}, order)
}

func TestConvert_UniqueIDs(t *testing.T) {
	plan, err := Convert(validFullSchema())
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, id := range plan.Refs {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, 5)
}

func TestConvert_RejectsCycle(t *testing.T) {
	s := validFullSchema()
	s.Dependencies = append(s.Dependencies, DependencyImport{From: "test", To: "design"})

	_, err := Convert(s)
	require.Error(t, err)
	assert.ErrorIs(t, err, graph.ErrCycleDetected)
}

func TestConvert_RejectsUnknownRefs(t *testing.T) {
	s := validFullSchema()
	s.Items[0].ResourceRef = ptrStr("ghost")
	_, err := Convert(s)
	assert.ErrorContains(t, err, `resource_ref "ghost" not found`)

	s = validFullSchema()
	s.Dependencies = []DependencyImport{{From: "design", To: "ghost"}}
	_, err = Convert(s)
	assert.ErrorContains(t, err, `to ref "ghost" not found`)
}

func TestConvert_CopiesSkillsAndMetadata(t *testing.T) {
	schema := &ImportSchema{
		Resources: []ResourceImport{{
			Ref: "ops", Name: "Ops",
			Skills:          []string{"terraform"},
			MetadataFilters: map[string]string{"category": "infrastructure"},
		}},
		Items: []WorkItemImport{
			{Ref: "vpc", Title: "VPC", ResourceRef: ptrStr("ops"), Metadata: map[string]string{"category": "infrastructure"}},
			{Ref: "plain", Title: "Plain"},
		},
	}

	plan, err := Convert(schema)
	require.NoError(t, err)

	ops := plan.Resources[0]
	assert.Equal(t, []string{"terraform"}, ops.Skills)
	assert.Equal(t, map[string]string{"category": "infrastructure"}, ops.MetadataFilters)
	assert.True(t, ops.CanWorkOn(plan.Items[0].Metadata))
	assert.False(t, ops.CanWorkOn(plan.Items[1].Metadata))

	schema.Items[0].Metadata["category"] = "changed"
	assert.Equal(t, "infrastructure", plan.Items[0].Metadata["category"], "metadata is copied, not shared")
}
