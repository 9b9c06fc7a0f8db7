package construct

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/dominikbraun/graph/draw"
	"gopkg.in/yaml.v3"
)

// GraphToYAML renders the graph `g` as YAML to `w`: resources (with their properties) in creation order,
// followed by the dependency edges.
func GraphToYAML(g Graph, w io.Writer) error {
	order, err := CreationOrder(g)
	if err != nil {
		return err
	}
	adj, err := g.AdjacencyMap()
	if err != nil {
		return err
	}

	// Build the document node explicitly so we can control the order of the keys
	// for resources and the edges.
	resources := &yaml.Node{Kind: yaml.MappingNode}
	edges := &yaml.Node{Kind: yaml.SequenceNode}
	var errs error
	for _, id := range order {
		r, err := g.Vertex(id)
		if err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		value := &yaml.Node{}
		if len(r.Properties) > 0 {
			if err := value.Encode(r.Properties); err != nil {
				errs = errors.Join(errs, fmt.Errorf("could not encode %s: %w", id, err))
				continue
			}
		} else {
			value.Kind = yaml.ScalarNode
			value.Tag = "!!null"
		}
		resources.Content = append(resources.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: id.String()},
			value,
		)

		targets := make([]ResourceId, 0, len(adj[id]))
		for t := range adj[id] {
			targets = append(targets, t)
		}
		sort.Sort(sortedIds(targets))
		for _, t := range targets {
			edges.Content = append(edges.Content, &yaml.Node{
				Kind:  yaml.ScalarNode,
				Value: fmt.Sprintf("%s -> %s", id, t),
			})
		}
	}
	if errs != nil {
		return errs
	}

	doc := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
		{Kind: yaml.ScalarNode, Value: "resources"}, resources,
		{Kind: yaml.ScalarNode, Value: "edges"}, edges,
	}}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

// GraphToDOT renders the dependency graph in Graphviz DOT format.
func GraphToDOT(g Graph, w io.Writer) error {
	return draw.DOT(g, w, draw.GraphAttribute("rankdir", "LR"))
}
