package construct

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scopedResource(scope Scope, typ, name string) *Resource {
	return CreateResource(ResourceId{Provider: "aws", Type: typ, Namespace: scope.Namespace(), Name: name})
}

func TestScope_Child(t *testing.T) {
	assert := assert.New(t)

	stack := NewStack("infra")
	root := stack.Root()
	assert.Equal("infra", root.Namespace())

	network := root.Child("network")
	a := network.Child("a")
	b := network.Child("b")
	assert.Equal("infra/network/a", a.Namespace())
	assert.Equal("infra/network/b", b.Namespace())
	assert.Equal([]string{"infra", "network"}, network.Path())
	assert.Same(stack, a.Stack())
}

func TestScope_Declare(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	stack := NewStack("infra")
	root := stack.Root()
	network := root.Child("network")

	require.NoError(network.Declare(scopedResource(network, "vpc", "vpc")))

	// same name in another scope is a different resource
	require.NoError(root.Declare(scopedResource(root, "vpc", "vpc")))

	err := root.Declare(scopedResource(network, "vpc", "other"))
	if assert.Error(err) {
		assert.Contains(err.Error(), "outside of its scope")
	}

	assert.Error(Scope{}.Declare(scopedResource(root, "vpc", "x")))

	order, err := CreationOrder(stack.Graph)
	require.NoError(err)
	assert.Len(order, 2)
}

func TestStack_ApplyOverrides(t *testing.T) {
	tests := []struct {
		name      string
		overrides func(s Scope, role, pool ResourceId)
		want      Properties
		wantErr   string
		wantEdge  bool
	}{
		{
			name: "sets property",
			overrides: func(s Scope, role, _ ResourceId) {
				s.Override("role-name", role, "RoleName", "prefix-role")
			},
			want: Properties{"RoleName": "prefix-role", "Description": "role"},
		},
		{
			name: "later override wins",
			overrides: func(s Scope, role, _ ResourceId) {
				s.Override("first", role, "RoleName", "one")
				s.Override("second", role, "RoleName", "two")
			},
			want: Properties{"RoleName": "two", "Description": "role"},
		},
		{
			name: "reference adds edge",
			overrides: func(s Scope, role, pool ResourceId) {
				s.Override("pool", role, "Tags.Pool", Ref(pool))
			},
			want: Properties{
				"Description": "role",
				"Tags":        map[string]any{"Pool": Ref(ResourceId{Provider: "aws", Type: "cognito_identity_pool", Namespace: "infra", Name: "pool"})},
			},
			wantEdge: true,
		},
		{
			name: "unknown resource",
			overrides: func(s Scope, _, _ ResourceId) {
				s.Override("missing", ResourceId{Provider: "aws", Type: "iam_role", Namespace: "infra", Name: "missing"}, "RoleName", "x")
			},
			wantErr: `override "missing"`,
		},
		{
			name: "bad path",
			overrides: func(s Scope, role, _ ResourceId) {
				s.Override("through-scalar", role, "Description.Nested", "x")
			},
			wantErr: `override "through-scalar"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			stack := NewStack("infra")
			root := stack.Root()
			pool := scopedResource(root, "cognito_identity_pool", "pool")
			require.NoError(root.Declare(pool))
			role := withProps(ResourceId{Provider: "aws", Type: "iam_role", Namespace: "infra", Name: "role"},
				Properties{"Description": "role"})
			require.NoError(root.Declare(role))

			tt.overrides(root, role.ID, pool.ID)

			err := stack.ApplyOverrides()
			if tt.wantErr != "" {
				if assert.Error(err) {
					assert.Contains(err.Error(), tt.wantErr)
				}
				return
			}
			require.NoError(err)
			assert.Equal(tt.want, role.Properties)

			_, err = stack.Graph.Edge(role.ID, pool.ID)
			assert.Equal(tt.wantEdge, err == nil)

			// a second apply does not re-run the overrides
			role.Properties["RoleName"] = "changed"
			require.NoError(stack.ApplyOverrides())
			assert.Equal("changed", role.Properties["RoleName"])
		})
	}
}

func TestStack_AddOutput(t *testing.T) {
	assert := assert.New(t)

	stack := NewStack("infra")
	id := ResourceId{Provider: "aws", Type: "cognito_user_pool", Namespace: "infra", Name: "pool"}
	assert.NoError(stack.AddOutput(Output{Name: "UserPoolId", Value: Ref(id)}))
	assert.NoError(stack.AddOutput(Output{Name: "ClientId", Value: "x"}))
	assert.Error(stack.AddOutput(Output{Name: "UserPoolId", Value: "y"}))

	outputs := stack.Outputs()
	if assert.Len(outputs, 2) {
		assert.Equal("UserPoolId", outputs[0].Name)
		assert.Equal("ClientId", outputs[1].Name)
	}
}
