package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/planwright/internal/domain"
	"github.com/alexanderramin/planwright/internal/graph"
	"github.com/alexanderramin/planwright/internal/repository"
)

// planSnapshot is the stored plan loaded in one pass.
type planSnapshot struct {
	items     []*domain.WorkItem
	itemByID  map[string]*domain.WorkItem
	resources map[string]*domain.Resource
	graph     *graph.DependencyGraph
}

// loadPlan reads items, resources and edges and rebuilds the graph. Items
// are registered in creation order and edges in insertion order, so graph
// tie-breaks follow the order the user entered things.
func loadPlan(
	ctx context.Context,
	workItems repository.WorkItemRepo,
	resources repository.ResourceRepo,
	deps repository.DependencyRepo,
) (*planSnapshot, error) {
	items, err := workItems.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading work items: %w", err)
	}
	edges, err := deps.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading dependencies: %w", err)
	}
	g, err := buildGraph(items, edges)
	if err != nil {
		return nil, err
	}

	snap := &planSnapshot{
		items:     items,
		itemByID:  indexItems(items),
		resources: map[string]*domain.Resource{},
		graph:     g,
	}
	if resources != nil {
		list, err := resources.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading resources: %w", err)
		}
		for _, r := range list {
			snap.resources[r.ID] = r
		}
	}
	return snap, nil
}

func buildGraph(items []*domain.WorkItem, edges []domain.Dependency) (*graph.DependencyGraph, error) {
	g := graph.New()
	for _, item := range items {
		g.AddTask(item.ID)
	}
	for _, e := range edges {
		if err := g.AddDependency(e); err != nil {
			return nil, fmt.Errorf("rebuilding dependency graph at %s -> %s: %w", e.From, e.To, err)
		}
	}
	return g, nil
}

func indexItems(items []*domain.WorkItem) map[string]*domain.WorkItem {
	m := make(map[string]*domain.WorkItem, len(items))
	for _, item := range items {
		m[item.ID] = item
	}
	return m
}

func completedSet(items []*domain.WorkItem) map[string]bool {
	done := make(map[string]bool)
	for _, item := range items {
		if item.IsDone() {
			done[item.ID] = true
		}
	}
	return done
}

func idSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func lookupItems(ids []string, byID map[string]*domain.WorkItem) []*domain.WorkItem {
	out := make([]*domain.WorkItem, 0, len(ids))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			out = append(out, item)
		}
	}
	return out
}

func formatValidationErrors(errs []error) error {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return fmt.Errorf("import validation failed (%d errors):\n  - %s", len(errs), strings.Join(msgs, "\n  - "))
}
