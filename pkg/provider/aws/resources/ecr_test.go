package resources

import (
	"testing"

	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/construct"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewEcrDeployment(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	stack := construct.NewStack("test")
	repo, err := NewEcrRepository(stack.Root(), "Ecr", EcrRepositoryParams{
		RepositoryName: "P-Api_ECR",
		ScanOnPush:     true,
		RemovalPolicy:  construct.RemovalPolicyRetain,
	})
	require.NoError(err)
	assert.Equal("p-api_ecr", repo.Properties["RepositoryName"])
	assert.Nil(repo.Properties["EmptyOnDelete"])
	assert.Equal(construct.RemovalPolicyRetain, repo.RemovalPolicy)

	deploy, err := NewEcrDeployment(stack.Root(), "Deploy", EcrDeploymentParams{
		HandlerExport: "handler-arn",
		SrcImage:      "nginx:latest",
		DestImage:     repo.ImageUri("latest"),
	})
	require.NoError(err)
	assert.Equal(construct.ImportValue{Name: "handler-arn"}, deploy.Properties["ServiceToken"])
	assert.Equal("docker://nginx:latest", deploy.Properties["SrcImage"])
	assert.Equal(construct.Join{
		Delimiter: ":",
		Values:    []any{construct.Attr(repo.ID, "RepositoryUri"), "latest"},
	}, deploy.Properties["DestImage"])

	_, err = stack.Graph.Edge(deploy.ID, repo.ID)
	assert.NoError(err)
}
