package scheduler

import (
	"sort"

	"github.com/alexanderramin/planwright/internal/domain"
)

// processingOrder returns the ids of items in the order they are allocated:
// the graph's topological order restricted to known items, followed by items
// the graph has never seen, by ascending id. Graph nodes without an item are
// dropped.
func processingOrder(g Graph, items map[string]*domain.WorkItem) ([]string, error) {
	sorted, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}

	order := make([]string, 0, len(items))
	for _, id := range sorted {
		if item, ok := items[id]; ok && item != nil {
			order = append(order, id)
		}
	}

	var isolated []string
	for id, item := range items {
		if item != nil && !g.Contains(id) {
			isolated = append(isolated, id)
		}
	}
	sort.Strings(isolated)

	return append(order, isolated...), nil
}
