package cloudformation

import (
	"bytes"
	"testing"

	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/construct"
	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/provider/aws/resources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testStack struct {
	*construct.Stack
	vpc  *resources.Vpc
	sg   *resources.SecurityGroup
	logs *resources.LogGroup
}

func newTestStack(t *testing.T) testStack {
	t.Helper()
	require := require.New(t)

	stack := construct.NewStack("infra")
	root := stack.Root()
	vpc, err := resources.NewVpc(root.Child("network"), "vpc", resources.VpcParams{
		CidrBlock:          "10.0.0.0/16",
		EnableDnsSupport:   true,
		EnableDnsHostnames: true,
	})
	require.NoError(err)
	logs, err := resources.NewLogGroup(root, "Logs", resources.LogGroupParams{
		LogGroupName:    "/ecs/api",
		RetentionInDays: 7,
		RemovalPolicy:   construct.RemovalPolicyDestroy,
	})
	require.NoError(err)
	sg, err := resources.NewSecurityGroup(root, "Sg", resources.SecurityGroupParams{
		GroupName:        "app-sg",
		Description:      "app",
		Vpc:              vpc,
		AllowAllOutbound: true,
	})
	require.NoError(err)
	require.NoError(root.DependsOn(sg.ID, logs.ID))
	require.NoError(stack.AddOutput(construct.Output{Name: "VpcId", Value: vpc.VpcId(), Description: "the vpc"}))
	require.NoError(stack.ApplyOverrides())
	return testStack{Stack: stack, vpc: vpc, sg: sg, logs: logs}
}

func TestSynthesize(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	stack := newTestStack(t)
	tmpl, err := Synthesize(stack.Stack)
	require.NoError(err)

	vpcLid := LogicalId(stack.vpc.ID)
	assert.Equal(FormatVersion, tmpl.AWSTemplateFormatVersion)
	assert.Equal([]string{"Logs", vpcLid, "Sg"}, tmpl.LogicalIds())

	assert.Equal(&ResourceEntry{
		Type: "AWS::EC2::VPC",
		Properties: map[string]any{
			"CidrBlock":          "10.0.0.0/16",
			"EnableDnsSupport":   true,
			"EnableDnsHostnames": true,
			"InstanceTenancy":    "default",
		},
		Metadata: map[string]any{PathMetadata: "infra/network/vpc"},
	}, tmpl.Resources[vpcLid])

	assert.Equal(&ResourceEntry{
		Type: "AWS::Logs::LogGroup",
		Properties: map[string]any{
			"LogGroupName":    "/ecs/api",
			"RetentionInDays": 7,
		},
		DeletionPolicy:      "Delete",
		UpdateReplacePolicy: "Delete",
		Metadata:            map[string]any{PathMetadata: "infra/Logs"},
	}, tmpl.Resources["Logs"])

	assert.Equal(&ResourceEntry{
		Type: "AWS::EC2::SecurityGroup",
		Properties: map[string]any{
			"GroupName":        "app-sg",
			"GroupDescription": "app",
			"VpcId":            map[string]any{"Ref": vpcLid},
			"SecurityGroupEgress": []any{
				map[string]any{
					"Description": "Allow all outbound traffic by default",
					"IpProtocol":  "-1",
					"CidrIp":      "0.0.0.0/0",
				},
			},
			"Tags": []any{
				map[string]any{"Key": "Name", "Value": "app-sg"},
			},
		},
		DependsOn: []string{"Logs"},
		Metadata:  map[string]any{PathMetadata: "infra/Sg"},
	}, tmpl.Resources["Sg"])

	assert.Equal(map[string]*OutputEntry{
		"VpcId": {Description: "the vpc", Value: map[string]any{"Ref": vpcLid}},
	}, tmpl.Outputs)
}

func TestSynthesize_intrinsics(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	stack := construct.NewStack("infra")
	root := stack.Root()
	role, err := resources.NewIamRole(root, "Role", resources.IamRoleParams{
		AssumeRolePolicyDocument: resources.ECS_ASSUMER_ROLE_POLICY,
	})
	require.NoError(err)
	r := construct.CreateResource(construct.ResourceId{Provider: "aws", Type: resources.IAM_POLICY_TYPE, Namespace: "infra", Name: "Policy"})
	r.Properties["Join"] = construct.Join{Delimiter: "/", Values: []any{"a", role.Arn()}}
	r.Properties["Sub"] = construct.Sub{String: "arn:${AWS::Partition}:iam::${AWS::AccountId}:root"}
	r.Properties["SubVars"] = construct.Sub{String: "${Role}", Variables: map[string]any{"Role": role.Arn()}}
	r.Properties["Select"] = construct.Select{Index: 1, List: construct.GetAZs{}}
	r.Properties["Import"] = construct.ImportValue{Name: "export"}
	r.Properties["Region"] = construct.Region
	r.Properties["Nil"] = nil
	r.Properties["Empty"] = (*resources.PolicyDocument)(nil)
	require.NoError(root.Declare(r))

	tmpl, err := Synthesize(stack)
	require.NoError(err)

	assert.Equal(map[string]any{
		"Join":    map[string]any{"Fn::Join": []any{"/", []any{"a", map[string]any{"Fn::GetAtt": []any{"Role", "Arn"}}}}},
		"Sub":     map[string]any{"Fn::Sub": "arn:${AWS::Partition}:iam::${AWS::AccountId}:root"},
		"SubVars": map[string]any{"Fn::Sub": []any{"${Role}", map[string]any{"Role": map[string]any{"Fn::GetAtt": []any{"Role", "Arn"}}}}},
		"Select":  map[string]any{"Fn::Select": []any{1, map[string]any{"Fn::GetAZs": ""}}},
		"Import":  map[string]any{"Fn::ImportValue": "export"},
		"Region":  map[string]any{"Ref": "AWS::Region"},
	}, tmpl.Resources["Policy"].Properties)

	assert.Equal(map[string]any{
		"Version": "2012-10-17",
		"Statement": []any{
			map[string]any{
				"Action":    []any{"sts:AssumeRole"},
				"Principal": map[string]any{"Service": "ecs-tasks.amazonaws.com"},
				"Effect":    "Allow",
			},
		},
	}, tmpl.Resources["Role"].Properties["AssumeRolePolicyDocument"])
	assert.Empty(tmpl.Resources["Role"].DependsOn)
}

func TestSynthesize_errors(t *testing.T) {
	tests := []struct {
		name    string
		build   func(s *construct.Stack) error
		wantErr string
	}{
		{
			name: "unknown type",
			build: func(s *construct.Stack) error {
				return s.Root().Declare(construct.CreateResource(construct.ResourceId{Provider: "aws", Type: "nope", Namespace: "infra", Name: "x"}))
			},
			wantErr: "no CloudFormation type known",
		},
		{
			name: "logical id collision",
			build: func(s *construct.Stack) error {
				root := s.Root()
				if _, err := resources.NewLogGroup(root, "my-logs", resources.LogGroupParams{LogGroupName: "a"}); err != nil {
					return err
				}
				_, err := resources.NewLogGroup(root, "myLogs", resources.LogGroupParams{LogGroupName: "b"})
				return err
			},
			wantErr: "collides with",
		},
		{
			name: "output references undeclared resource",
			build: func(s *construct.Stack) error {
				return s.AddOutput(construct.Output{
					Name:  "Missing",
					Value: construct.Ref(construct.ResourceId{Provider: "aws", Type: "vpc", Namespace: "infra", Name: "vpc"}),
				})
			},
			wantErr: "reference to undeclared resource",
		},
		{
			name: "unknown removal policy",
			build: func(s *construct.Stack) error {
				_, err := resources.NewLogGroup(s.Root(), "Logs", resources.LogGroupParams{LogGroupName: "a", RemovalPolicy: "keep"})
				return err
			},
			wantErr: "unknown removal policy",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			stack := construct.NewStack("infra")
			require.NoError(tt.build(stack))

			_, err := Synthesize(stack)
			if assert.Error(err) {
				assert.Contains(err.Error(), tt.wantErr)
			}
		})
	}
}

func TestTemplate_write(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	tmpl, err := Synthesize(newTestStack(t).Stack)
	require.NoError(err)

	first, second := new(bytes.Buffer), new(bytes.Buffer)
	require.NoError(tmpl.WriteJSON(first))
	require.NoError(tmpl.WriteJSON(second))
	assert.Equal(first.String(), second.String())
	assert.Contains(first.String(), `"AWSTemplateFormatVersion": "2010-09-09"`)

	read, err := ReadTemplate(bytes.NewReader(first.Bytes()))
	require.NoError(err)
	again := new(bytes.Buffer)
	require.NoError(read.WriteJSON(again))
	assert.Equal(first.String(), again.String())

	yamlOut := new(bytes.Buffer)
	require.NoError(tmpl.WriteYAML(yamlOut))
	fromYAML, err := ReadTemplate(yamlOut)
	require.NoError(err)
	assert.Equal(read, fromYAML)
	assert.Equal([]string{"Sg"}, fromYAML.ResourcesOfType("AWS::EC2::SecurityGroup"))
}
