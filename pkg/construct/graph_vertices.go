package construct

import (
	"errors"
	"fmt"
	"sort"
)

// sortedIds sorts ResourceIds by their content for deterministic output when no dependency ordering applies.
type sortedIds []ResourceId

func (s sortedIds) Len() int           { return len(s) }
func (s sortedIds) Less(i, j int) bool { return ResourceIdLess(s[i], s[j]) }
func (s sortedIds) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

func ResourceIdLess(a, b ResourceId) bool {
	if a.Provider != b.Provider {
		return a.Provider < b.Provider
	}
	if a.Type != b.Type {
		return a.Type < b.Type
	}
	if a.Namespace != b.Namespace {
		return a.Namespace < b.Namespace
	}
	return a.Name < b.Name
}

// CreationOrder returns every resource id such that each resource comes after all the resources it depends
// on. Ties are broken by id so the order is stable across runs. Returns an error if the graph has a cycle.
func CreationOrder(g Graph) ([]ResourceId, error) {
	adj, err := g.AdjacencyMap()
	if err != nil {
		return nil, fmt.Errorf("failed to get adjacency map: %w", err)
	}
	pred, err := g.PredecessorMap()
	if err != nil {
		return nil, fmt.Errorf("failed to get predecessor map: %w", err)
	}

	// remaining counts the unresolved dependencies (outgoing edges) of each resource
	remaining := make(map[ResourceId]int, len(adj))
	var ready []ResourceId
	for id, deps := range adj {
		remaining[id] = len(deps)
		if len(deps) == 0 {
			ready = append(ready, id)
		}
	}
	sort.Sort(sortedIds(ready))

	order := make([]ResourceId, 0, len(adj))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		var unblocked []ResourceId
		for dependent := range pred[id] {
			remaining[dependent]--
			if remaining[dependent] == 0 {
				unblocked = append(unblocked, dependent)
			}
		}
		sort.Sort(sortedIds(unblocked))
		ready = append(ready, unblocked...)
	}

	if len(order) != len(adj) {
		var cyclic []ResourceId
		for id, n := range remaining {
			if n > 0 {
				cyclic = append(cyclic, id)
			}
		}
		sort.Sort(sortedIds(cyclic))
		return nil, fmt.Errorf("dependency cycle between resources %v", cyclic)
	}
	return order, nil
}

// TopologicalSort orders dependents before their dependencies (the reverse of [CreationOrder]), which is the
// order resources can be safely deleted in.
func TopologicalSort(g Graph) ([]ResourceId, error) {
	order, err := CreationOrder(g)
	if err != nil {
		return nil, err
	}
	for i := 0; i < len(order)/2; i++ {
		order[i], order[len(order)-i-1] = order[len(order)-i-1], order[i]
	}
	return order, nil
}

// WalkGraphFunc is much like `fs.WalkDirFunc` and is used in [WalkGraph] for the callback during graph
// traversal. Return [StopWalk] to end the walk.
type WalkGraphFunc func(id ResourceId, resource *Resource, nerr error) error

// StopWalk is a special error that can be returned from WalkGraphFunc to stop walking the graph.
var StopWalk = errors.New("stop walking")

// WalkGraph visits resources in creation order.
func WalkGraph(g Graph, fn WalkGraphFunc) error {
	order, err := CreationOrder(g)
	if err != nil {
		return err
	}
	var werr error
	for _, id := range order {
		r, verr := g.Vertex(id)
		werr = fn(id, r, errors.Join(werr, verr))
		if errors.Is(werr, StopWalk) {
			return nil
		}
	}
	return werr
}
