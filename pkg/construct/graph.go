package construct

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dominikbraun/graph"
)

type (
	Graph = graph.Graph[ResourceId, *Resource]
	Edge  = graph.Edge[ResourceId]
)

// DependsOnAttribute marks an edge that only orders creation: the source does not reference the target
// in its properties, but must still wait for it.
const DependsOnAttribute = "dependsOn"

func NewAcyclicGraph() Graph {
	return Graph(graph.New(
		func(r *Resource) ResourceId {
			return r.ID
		},
		graph.Directed(),
		graph.Acyclic(),
		graph.PreventCycles(),
	))
}

// AddResource adds `r` to `g` along with an edge to every resource it references. All referenced
// resources must already be in the graph, which forces declarations to happen in dependency order.
func AddResource(g Graph, r *Resource) error {
	if err := r.ID.Validate(); err != nil {
		return err
	}
	if err := g.AddVertex(r); err != nil {
		if errors.Is(err, graph.ErrVertexAlreadyExists) {
			return fmt.Errorf("resource %s is already declared: %w", r.ID, err)
		}
		return fmt.Errorf("could not add resource %s: %w", r.ID, err)
	}
	return AddReferenceEdges(g, r)
}

// AddReferenceEdges adds edges from `r` to every resource referenced by its properties. Existing edges are kept.
func AddReferenceEdges(g Graph, r *Resource) error {
	var errs error
	for _, dep := range References(r.Properties) {
		if dep == r.ID {
			continue
		}
		err := g.AddEdge(r.ID, dep)
		switch {
		case err == nil, errors.Is(err, graph.ErrEdgeAlreadyExists):
		case errors.Is(err, graph.ErrVertexNotFound):
			errs = errors.Join(errs, fmt.Errorf("%s references undeclared resource %s", r.ID, dep))
		default:
			errs = errors.Join(errs, fmt.Errorf("could not add dependency %s -> %s: %w", r.ID, dep, err))
		}
	}
	return errs
}

// AddDependsOn adds an ordering-only dependency from `source` onto `target`.
func AddDependsOn(g Graph, source, target ResourceId) error {
	err := g.AddEdge(source, target, graph.EdgeAttribute(DependsOnAttribute, "true"))
	if errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return g.UpdateEdge(source, target, graph.EdgeAttribute(DependsOnAttribute, "true"))
	}
	return err
}

// IsDependsOn reports whether `e` was added through [AddDependsOn].
func IsDependsOn(e Edge) bool {
	return e.Properties.Attributes[DependsOnAttribute] == "true"
}

// String lists every resource in topological order, each followed by `-> <id>` lines for its dependencies.
func String(g Graph) (string, error) {
	w := new(strings.Builder)
	err := stringTo(g, w)
	return w.String(), err
}

func stringTo(g Graph, w io.Writer) error {
	topo, err := TopologicalSort(g)
	if err != nil {
		return err
	}
	adjacent, err := g.AdjacencyMap()
	if err != nil {
		return err
	}

	for _, id := range topo {
		_, err := fmt.Fprintf(w, "%s\n", id)
		if err != nil {
			return err
		}

		targets := make([]ResourceId, 0, len(adjacent[id]))
		for t := range adjacent[id] {
			targets = append(targets, t)
		}
		sort.Sort(sortedIds(targets))

		for _, t := range targets {
			// Adjacent edges always have `id` as the source, so just write the target.
			_, err := fmt.Fprintf(w, "-> %s\n", t)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// ResourcesOfType returns the resources in `g` whose id matches `selector`, sorted by id.
func ResourcesOfType(g Graph, selector ResourceId) ([]*Resource, error) {
	adj, err := g.AdjacencyMap()
	if err != nil {
		return nil, err
	}
	ids := make([]ResourceId, 0, len(adj))
	for id := range adj {
		if selector.Matches(id) {
			ids = append(ids, id)
		}
	}
	sort.Sort(sortedIds(ids))

	resources := make([]*Resource, 0, len(ids))
	for _, id := range ids {
		r, err := g.Vertex(id)
		if err != nil {
			return nil, err
		}
		resources = append(resources, r)
	}
	return resources, nil
}
