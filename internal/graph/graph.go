// Package graph maintains the dependency DAG over work items.
//
// A DependencyGraph keeps forward (predecessor -> successors) and backward
// (successor -> predecessors) adjacency side by side so that both directions
// are map lookups. Every mutation keeps the graph acyclic.
package graph

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/planwright/internal/domain"
)

var (
	// ErrCycleDetected is returned when a dependency would close a cycle, or
	// when a sort finds nodes that can never reach in-degree zero.
	ErrCycleDetected = errors.New("dependency would create a cycle")

	// ErrInvalidDependencyType is returned for kinds outside the four
	// precedence relations.
	ErrInvalidDependencyType = errors.New("invalid dependency type")
)

// Edge is one adjacency entry: the node on the other end and the relation.
type Edge struct {
	ID   string
	Kind domain.DependencyType
}

// DependencyGraph is a directed acyclic graph of work item ids.
// It is not safe for concurrent mutation; callers that share a graph
// across goroutines guard it with their own lock.
type DependencyGraph struct {
	index    map[string]int // id -> insertion index
	order    []string       // ids in insertion order
	forward  map[string][]Edge
	backward map[string][]Edge
}

// New returns an empty graph.
func New() *DependencyGraph {
	return &DependencyGraph{
		index:    make(map[string]int),
		forward:  make(map[string][]Edge),
		backward: make(map[string][]Edge),
	}
}

// AddTask registers id. It is a no-op when id is already present.
func (g *DependencyGraph) AddTask(id string) {
	if _, ok := g.index[id]; ok {
		return
	}
	g.index[id] = len(g.order)
	g.order = append(g.order, id)
}

// AddDependency inserts dep.From -> dep.To, registering unseen endpoints.
// If the edge would make dep.From reachable from dep.To the graph is left
// untouched and ErrCycleDetected is returned. Re-adding an existing pair
// replaces its kind.
func (g *DependencyGraph) AddDependency(dep domain.Dependency) error {
	if !dep.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDependencyType, dep.Kind)
	}
	if dep.From == dep.To {
		return fmt.Errorf("%w: %s depends on itself", ErrCycleDetected, dep.From)
	}
	if g.reachable(dep.To, dep.From) {
		return fmt.Errorf("%w: %s already depends on %s", ErrCycleDetected, dep.From, dep.To)
	}

	g.AddTask(dep.From)
	g.AddTask(dep.To)

	if i := findEdge(g.forward[dep.From], dep.To); i >= 0 {
		g.forward[dep.From][i].Kind = dep.Kind
		j := findEdge(g.backward[dep.To], dep.From)
		g.backward[dep.To][j].Kind = dep.Kind
		return nil
	}
	g.forward[dep.From] = append(g.forward[dep.From], Edge{ID: dep.To, Kind: dep.Kind})
	g.backward[dep.To] = append(g.backward[dep.To], Edge{ID: dep.From, Kind: dep.Kind})
	return nil
}

// RemoveDependency deletes the from -> to edge from both directions.
// It reports whether an edge was removed.
func (g *DependencyGraph) RemoveDependency(from, to string) bool {
	i := findEdge(g.forward[from], to)
	if i < 0 {
		return false
	}
	g.forward[from] = removeAt(g.forward[from], i)
	if len(g.forward[from]) == 0 {
		delete(g.forward, from)
	}
	if j := findEdge(g.backward[to], from); j >= 0 {
		g.backward[to] = removeAt(g.backward[to], j)
		if len(g.backward[to]) == 0 {
			delete(g.backward, to)
		}
	}
	return true
}

// Dependencies returns the predecessors of id. The result is a copy.
func (g *DependencyGraph) Dependencies(id string) []Edge {
	return copyEdges(g.backward[id])
}

// Dependents returns the successors of id. The result is a copy.
func (g *DependencyGraph) Dependents(id string) []Edge {
	return copyEdges(g.forward[id])
}

// CanStartTask reports whether every FinishToStart predecessor of id is in
// completed. Other relations do not gate readiness.
func (g *DependencyGraph) CanStartTask(id string, completed map[string]bool) bool {
	for _, e := range g.backward[id] {
		switch e.Kind {
		case domain.FinishToStart:
			if !completed[e.ID] {
				return false
			}
		case domain.StartToStart, domain.FinishToFinish, domain.StartToFinish:
		}
	}
	return true
}

// AllDependencies lists every edge, grouped by predecessor in insertion order.
func (g *DependencyGraph) AllDependencies() []domain.Dependency {
	var deps []domain.Dependency
	for _, from := range g.order {
		for _, e := range g.forward[from] {
			deps = append(deps, domain.Dependency{From: from, To: e.ID, Kind: e.Kind})
		}
	}
	return deps
}

// Contains reports whether id is registered.
func (g *DependencyGraph) Contains(id string) bool {
	_, ok := g.index[id]
	return ok
}

// Len returns the number of registered ids.
func (g *DependencyGraph) Len() int {
	return len(g.order)
}

// Roots returns ids with no predecessors, in insertion order.
func (g *DependencyGraph) Roots() []string {
	var roots []string
	for _, id := range g.order {
		if len(g.backward[id]) == 0 {
			roots = append(roots, id)
		}
	}
	return roots
}

// Leaves returns ids with no successors, in insertion order.
func (g *DependencyGraph) Leaves() []string {
	var leaves []string
	for _, id := range g.order {
		if len(g.forward[id]) == 0 {
			leaves = append(leaves, id)
		}
	}
	return leaves
}

// reachable runs a breadth-first search from start along forward edges.
func (g *DependencyGraph) reachable(start, target string) bool {
	if _, ok := g.index[start]; !ok {
		return false
	}
	visited := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if node == target {
			return true
		}
		for _, e := range g.forward[node] {
			if !visited[e.ID] {
				visited[e.ID] = true
				queue = append(queue, e.ID)
			}
		}
	}
	return false
}

func findEdge(edges []Edge, id string) int {
	for i, e := range edges {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func removeAt(edges []Edge, i int) []Edge {
	out := make([]Edge, 0, len(edges)-1)
	out = append(out, edges[:i]...)
	return append(out, edges[i+1:]...)
}

func copyEdges(edges []Edge) []Edge {
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}
