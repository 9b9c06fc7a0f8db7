package construct

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dominikbraun/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func testId(typ, name string) ResourceId {
	return ResourceId{Provider: "aws", Type: typ, Namespace: "infra", Name: name}
}

func withProps(id ResourceId, props Properties) *Resource {
	r := CreateResource(id)
	for k, v := range props {
		r.Properties[k] = v
	}
	return r
}

func TestAddResource(t *testing.T) {
	vpc := testId("vpc", "vpc")
	subnet := testId("vpc_subnet", "subnet")

	tests := []struct {
		name     string
		existing []*Resource
		add      *Resource
		wantErr  string
		// wantDeps are the targets of edges from the added resource
		wantDeps []ResourceId
	}{
		{
			name: "no references",
			add:  CreateResource(vpc),
		},
		{
			name:     "reference edge",
			existing: []*Resource{CreateResource(vpc)},
			add:      withProps(subnet, Properties{"VpcId": Ref(vpc)}),
			wantDeps: []ResourceId{vpc},
		},
		{
			name:    "undeclared reference",
			add:     withProps(subnet, Properties{"VpcId": Ref(vpc)}),
			wantErr: "references undeclared resource aws:vpc:infra:vpc",
		},
		{
			name:     "duplicate",
			existing: []*Resource{CreateResource(vpc)},
			add:      CreateResource(vpc),
			wantErr:  "already declared",
		},
		{
			name:    "invalid id",
			add:     CreateResource(ResourceId{Provider: "aws", Type: "vpc", Name: "my vpc"}),
			wantErr: "invalid name",
		},
		{
			name: "self reference ignored",
			add:  withProps(vpc, Properties{"Self": Ref(vpc)}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			g := NewAcyclicGraph()
			for _, r := range tt.existing {
				require.NoError(AddResource(g, r))
			}

			err := AddResource(g, tt.add)
			if tt.wantErr != "" {
				require.Error(err)
				assert.Contains(err.Error(), tt.wantErr)
				return
			}
			require.NoError(err)

			adj, err := g.AdjacencyMap()
			require.NoError(err)
			var deps []ResourceId
			for target := range adj[tt.add.ID] {
				deps = append(deps, target)
			}
			assert.ElementsMatch(tt.wantDeps, deps)
		})
	}
}

func TestAddDependsOn(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	vpc, igw, route := testId("vpc", "vpc"), testId("internet_gateway", "igw"), testId("route", "route")

	g := NewAcyclicGraph()
	require.NoError(AddResource(g, CreateResource(vpc)))
	require.NoError(AddResource(g, CreateResource(igw)))
	require.NoError(AddResource(g, withProps(route, Properties{"GatewayId": Ref(igw)})))

	// upgrades the existing reference edge
	require.NoError(AddDependsOn(g, route, igw))
	require.NoError(AddDependsOn(g, route, vpc))

	edges, err := g.Edges()
	require.NoError(err)
	assert.Len(edges, 2)
	for _, e := range edges {
		assert.True(IsDependsOn(e), "edge %s -> %s", e.Source, e.Target)
	}

	assert.Error(AddDependsOn(g, vpc, route), "cycle must be rejected")
	assert.Error(AddDependsOn(g, vpc, testId("vpc", "missing")))
}

func TestCreationOrder(t *testing.T) {
	tests := []struct {
		name  string
		edges map[string][]string
		want  []string
	}{
		{
			name:  "independent resources sorted by id",
			edges: map[string][]string{"c": nil, "a": nil, "b": nil},
			want:  []string{"a", "b", "c"},
		},
		{
			name: "diamond",
			edges: map[string][]string{
				"top":   {"left", "right"},
				"left":  {"base"},
				"right": {"base"},
				"base":  nil,
			},
			want: []string{"base", "left", "right", "top"},
		},
		{
			name: "dependency before lower id",
			edges: map[string][]string{
				"a": {"z"},
				"b": nil,
				"z": nil,
			},
			want: []string{"b", "z", "a"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			g := NewAcyclicGraph()
			for name := range tt.edges {
				require.NoError(g.AddVertex(CreateResource(testId("thing", name))))
			}
			for name, deps := range tt.edges {
				for _, dep := range deps {
					require.NoError(g.AddEdge(testId("thing", name), testId("thing", dep)))
				}
			}

			// run a few times, map iteration must not leak into the result
			for i := 0; i < 5; i++ {
				order, err := CreationOrder(g)
				require.NoError(err)
				names := make([]string, len(order))
				for j, id := range order {
					names[j] = id.Name
				}
				assert.Equal(tt.want, names)
			}

			topo, err := TopologicalSort(g)
			require.NoError(err)
			assert.Equal(tt.want[len(tt.want)-1], topo[0].Name)
		})
	}
}

func TestCreationOrder_cycle(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	// unguarded graph, AddEdge on an acyclic one rejects the cycle before CreationOrder sees it
	g := Graph(graph.New(func(r *Resource) ResourceId { return r.ID }, graph.Directed()))
	a, b := testId("thing", "a"), testId("thing", "b")
	require.NoError(g.AddVertex(CreateResource(a)))
	require.NoError(g.AddVertex(CreateResource(b)))
	require.NoError(g.AddEdge(a, b))
	require.NoError(g.AddEdge(b, a))

	_, err := CreationOrder(g)
	if assert.Error(err) {
		assert.Contains(err.Error(), "dependency cycle")
	}
}

func TestWalkGraph(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	g := NewAcyclicGraph()
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(AddResource(g, CreateResource(testId("thing", name))))
	}

	var visited []string
	err := WalkGraph(g, func(id ResourceId, r *Resource, nerr error) error {
		visited = append(visited, r.ID.Name)
		if id.Name == "b" {
			return StopWalk
		}
		return nerr
	})
	assert.NoError(err)
	assert.Equal([]string{"a", "b"}, visited)
}

func TestResourcesOfType(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	g := NewAcyclicGraph()
	require.NoError(AddResource(g, CreateResource(testId("iam_role", "b"))))
	require.NoError(AddResource(g, CreateResource(testId("iam_role", "a"))))
	require.NoError(AddResource(g, CreateResource(testId("vpc", "vpc"))))

	roles, err := ResourcesOfType(g, ResourceId{Provider: "aws", Type: "iam_role"})
	require.NoError(err)
	if assert.Len(roles, 2) {
		assert.Equal("a", roles[0].ID.Name)
		assert.Equal("b", roles[1].ID.Name)
	}
}

func TestString(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	vpc, subnet := testId("vpc", "vpc"), testId("vpc_subnet", "subnet")
	g := NewAcyclicGraph()
	require.NoError(AddResource(g, CreateResource(vpc)))
	require.NoError(AddResource(g, withProps(subnet, Properties{"VpcId": Ref(vpc)})))

	s, err := String(g)
	require.NoError(err)
	assert.Equal("aws:vpc_subnet:infra:subnet\n-> aws:vpc:infra:vpc\naws:vpc:infra:vpc\n", s)
}

func TestGraphToYAML(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	vpc, subnet := testId("vpc", "vpc"), testId("vpc_subnet", "subnet")
	g := NewAcyclicGraph()
	require.NoError(AddResource(g, withProps(vpc, Properties{"CidrBlock": "10.0.0.0/16"})))
	require.NoError(AddResource(g, withProps(subnet, Properties{"VpcId": Ref(vpc)})))
	require.NoError(AddResource(g, CreateResource(testId("internet_gateway", "igw"))))

	buf := new(bytes.Buffer)
	require.NoError(GraphToYAML(g, buf))
	out := buf.String()

	var decoded struct {
		Resources map[string]map[string]any `yaml:"resources"`
		Edges     []string                  `yaml:"edges"`
	}
	require.NoError(yaml.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(map[string]map[string]any{
		"aws:internet_gateway:infra:igw": nil,
		"aws:vpc:infra:vpc":              {"CidrBlock": "10.0.0.0/16"},
		"aws:vpc_subnet:infra:subnet":    {"VpcId": "aws:vpc:infra:vpc"},
	}, decoded.Resources)
	assert.Equal([]string{"aws:vpc_subnet:infra:subnet -> aws:vpc:infra:vpc"}, decoded.Edges)

	// creation order: dependencies are listed first
	assert.Less(strings.Index(out, "aws:vpc:infra:vpc"), strings.Index(out, "aws:vpc_subnet:infra:subnet"))
}

func TestGraphToDOT(t *testing.T) {
	require := require.New(t)

	g := NewAcyclicGraph()
	require.NoError(AddResource(g, CreateResource(testId("vpc", "vpc"))))

	buf := new(bytes.Buffer)
	require.NoError(GraphToDOT(g, buf))
	assert.Contains(t, buf.String(), "aws:vpc:infra:vpc")
}
