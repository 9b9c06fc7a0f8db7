package constructs

import (
	"testing"

	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/construct"
	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/provider/aws/resources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_DeclareSecurityPolicy(t *testing.T) {
	tests := []struct {
		name        string
		ingressCidr string
		wantRule    resources.SecurityGroupRule
	}{
		{
			name: "defaults to anywhere",
			wantRule: resources.SecurityGroupRule{
				Description: "from anywhere",
				IpProtocol:  "tcp",
				FromPort:    80,
				ToPort:      80,
				CidrIp:      "0.0.0.0/0",
			},
		},
		{
			name:        "restricted cidr",
			ingressCidr: "203.0.113.0/24",
			wantRule: resources.SecurityGroupRule{
				Description: "from 203.0.113.0/24",
				IpProtocol:  "tcp",
				FromPort:    80,
				ToPort:      80,
				CidrIp:      "203.0.113.0/24",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			stack, network := declareTestNetwork(t)
			sg, err := DeclareSecurityPolicy(stack.Root(), AppSecurityGroupProps{
				NamePrefix:  "p",
				Vpc:         network.Vpc,
				IngressCidr: tt.ingressCidr,
			})
			require.NoError(err)

			assert.Equal("p-api-ecs-sg", sg.IngressGroup.Properties["GroupName"])
			assert.Equal("API ECS Security Group", sg.IngressGroup.Properties["GroupDescription"])
			assert.Equal([]resources.SecurityGroupRule{tt.wantRule}, sg.IngressGroup.IngressRules())

			assert.Equal("p-vpc-endpoint-sg", sg.InternalGroup.Properties["GroupName"])
			assert.Equal("VPC Endpoint Security Group", sg.InternalGroup.Properties["GroupDescription"])
			assert.Empty(sg.InternalGroup.IngressRules())
		})
	}
}

func Test_InternalGroupOnlyReachableFromIngressGroup(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	stack, network := declareTestNetwork(t)
	sg, err := DeclareSecurityPolicy(stack.Root(), AppSecurityGroupProps{NamePrefix: "p", Vpc: network.Vpc})
	require.NoError(err)

	ingress, err := construct.ResourcesOfType(stack.Graph, construct.ResourceId{
		Provider: resources.AWS_PROVIDER,
		Type:     resources.SG_INGRESS_TYPE,
	})
	require.NoError(err)

	var sources []any
	for _, rule := range ingress {
		if rule.Properties["GroupId"] == sg.InternalGroup.GroupId() {
			sources = append(sources, rule.Properties["SourceSecurityGroupId"])
			assert.Equal(443, rule.Properties["FromPort"])
			assert.Equal(443, rule.Properties["ToPort"])
			assert.Equal("from API ECS", rule.Properties["Description"])
		}
	}
	assert.Equal([]any{sg.IngressGroup.GroupId()}, sources)
}

func Test_DeclareSecurityPolicy_requiresVpc(t *testing.T) {
	stack := construct.NewStack("test")
	_, err := DeclareSecurityPolicy(stack.Root(), AppSecurityGroupProps{NamePrefix: "p"})
	assert.Error(t, err)
}
