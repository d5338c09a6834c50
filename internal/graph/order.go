package graph

import (
	"container/heap"
	"fmt"
)

// TopologicalSort orders all ids with Kahn's algorithm. Among ready nodes
// the one registered first is emitted first, so results are reproducible.
func (g *DependencyGraph) TopologicalSort() ([]string, error) {
	inDegree := make(map[string]int, len(g.order))
	ready := &indexHeap{}
	for _, id := range g.order {
		inDegree[id] = len(g.backward[id])
		if inDegree[id] == 0 {
			heap.Push(ready, g.index[id])
		}
	}

	order := make([]string, 0, len(g.order))
	for ready.Len() > 0 {
		node := g.order[heap.Pop(ready).(int)]
		order = append(order, node)

		for _, e := range g.forward[node] {
			inDegree[e.ID]--
			if inDegree[e.ID] == 0 {
				heap.Push(ready, g.index[e.ID])
			}
		}
	}

	if len(order) != len(g.order) {
		return nil, fmt.Errorf("%w: %d of %d work items sorted", ErrCycleDetected, len(order), len(g.order))
	}
	return order, nil
}

// CriticalPath returns the source-to-sink path with the largest summed
// estimate. Missing estimates count as zero. Ties go to whichever candidate
// comes first in topological order. An empty or cyclic graph yields an
// empty path.
func (g *DependencyGraph) CriticalPath(estimates map[string]float64) []string {
	order, err := g.TopologicalSort()
	if err != nil || len(order) == 0 {
		return []string{}
	}

	position := make(map[string]int, len(order))
	for i, id := range order {
		position[id] = i
	}

	finish := make(map[string]float64, len(order))
	via := make(map[string]string, len(order)) // back-pointer to the maximising predecessor

	for _, id := range order {
		best := 0.0
		bestPred := ""
		bestPos := len(order)
		for _, e := range g.backward[id] {
			f := finish[e.ID]
			p := position[e.ID]
			if bestPred == "" || f > best || (f == best && p < bestPos) {
				best, bestPred, bestPos = f, e.ID, p
			}
		}
		finish[id] = estimates[id] + best
		if bestPred != "" {
			via[id] = bestPred
		}
	}

	sink := order[0]
	for _, id := range order[1:] {
		if finish[id] > finish[sink] {
			sink = id
		}
	}

	var path []string
	for cur, ok := sink, true; ok; cur, ok = via[cur] {
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// indexHeap is a min-heap of insertion indexes.
type indexHeap []int

func (h indexHeap) Len() int           { return len(h) }
func (h indexHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h indexHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *indexHeap) Push(x any) { *h = append(*h, x.(int)) }

func (h *indexHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
