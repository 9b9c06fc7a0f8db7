package resources

import (
	"fmt"
	"sort"

	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/construct"
	awssanitizer "github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/sanitization/aws"
)

const AWS_PROVIDER = "aws"

// cloudFormationTypes maps each resource type to the CloudFormation resource type it synthesizes to.
var cloudFormationTypes = map[string]string{
	VPC_TYPE:                            "AWS::EC2::VPC",
	VPC_SUBNET_TYPE:                     "AWS::EC2::Subnet",
	ROUTE_TABLE_TYPE:                    "AWS::EC2::RouteTable",
	ROUTE_TYPE:                          "AWS::EC2::Route",
	SUBNET_ROUTE_TABLE_ASSOCIATION_TYPE: "AWS::EC2::SubnetRouteTableAssociation",
	INTERNET_GATEWAY_TYPE:               "AWS::EC2::InternetGateway",
	VPC_GATEWAY_ATTACHMENT_TYPE:         "AWS::EC2::VPCGatewayAttachment",
	NAT_GATEWAY_TYPE:                    "AWS::EC2::NatGateway",
	SG_TYPE:                             "AWS::EC2::SecurityGroup",
	SG_INGRESS_TYPE:                     "AWS::EC2::SecurityGroupIngress",
	USER_POOL_TYPE:                      "AWS::Cognito::UserPool",
	USER_POOL_CLIENT_TYPE:               "AWS::Cognito::UserPoolClient",
	IDENTITY_POOL_TYPE:                  "AWS::Cognito::IdentityPool",
	IDENTITY_POOL_ROLE_ATTACHMENT_TYPE:  "AWS::Cognito::IdentityPoolRoleAttachment",
	IAM_ROLE_TYPE:                       "AWS::IAM::Role",
	IAM_POLICY_TYPE:                     "AWS::IAM::Policy",
	ECR_REPO_TYPE:                       "AWS::ECR::Repository",
	ECR_DEPLOYMENT_TYPE:                 "Custom::CDKECRDeployment",
	ECS_CLUSTER_TYPE:                    "AWS::ECS::Cluster",
	ECS_CAPACITY_PROVIDERS_TYPE:         "AWS::ECS::ClusterCapacityProviderAssociations",
	ECS_TASK_DEFINITION_TYPE:            "AWS::ECS::TaskDefinition",
	ECS_SERVICE_TYPE:                    "AWS::ECS::Service",
	LOG_GROUP_TYPE:                      "AWS::Logs::LogGroup",
	SCALABLE_TARGET_TYPE:                "AWS::ApplicationAutoScaling::ScalableTarget",
	SCALING_POLICY_TYPE:                 "AWS::ApplicationAutoScaling::ScalingPolicy",
}

// nameProperties is the property holding the physical name of each named resource type. Types without
// an entry are named through their `Name` tag, if any.
var nameProperties = map[string]string{
	SG_TYPE:                  "GroupName",
	USER_POOL_TYPE:           "UserPoolName",
	USER_POOL_CLIENT_TYPE:    "ClientName",
	IDENTITY_POOL_TYPE:       "IdentityPoolName",
	IAM_ROLE_TYPE:            "RoleName",
	IAM_POLICY_TYPE:          "PolicyName",
	ECR_REPO_TYPE:            "RepositoryName",
	ECS_CLUSTER_TYPE:         "ClusterName",
	ECS_TASK_DEFINITION_TYPE: "Family",
	ECS_SERVICE_TYPE:         "ServiceName",
	LOG_GROUP_TYPE:           "LogGroupName",
	SCALING_POLICY_TYPE:      "PolicyName",
}

// CloudFormationType returns the CloudFormation resource type for `id`.
func CloudFormationType(id construct.ResourceId) (string, error) {
	if id.Provider != AWS_PROVIDER {
		return "", fmt.Errorf("unsupported provider %q for %s", id.Provider, id)
	}
	t, ok := cloudFormationTypes[id.Type]
	if !ok {
		return "", fmt.Errorf("no CloudFormation type known for %s", id)
	}
	return t, nil
}

// PhysicalName returns the literal name given to `r`, either through its name property or its `Name` tag.
// Returns false when the resource is unnamed (the provisioning engine generates a name).
func PhysicalName(r *construct.Resource) (string, bool) {
	if prop, ok := nameProperties[r.ID.Type]; ok {
		if name, ok := r.Properties[prop].(string); ok && name != "" {
			return name, true
		}
	}
	return TagValue(r, "Name")
}

// Tag is a single entry of a CloudFormation `Tags` list.
type Tag struct {
	Key   string
	Value any
}

// SetTag adds the tag `key` to `r`, replacing the value if the key is already set. Literal values are
// sanitized. Tags are kept sorted by key so synthesized templates are stable.
func SetTag(r *construct.Resource, key string, value any) {
	if s, ok := value.(string); ok {
		value = awssanitizer.TagValueSanitizer.Apply(s)
	}
	tags, _ := r.Properties["Tags"].([]Tag)
	for i := range tags {
		if tags[i].Key == key {
			tags[i].Value = value
			r.Properties["Tags"] = tags
			return
		}
	}
	tags = append(tags, Tag{Key: key, Value: value})
	sort.Slice(tags, func(i, j int) bool { return tags[i].Key < tags[j].Key })
	r.Properties["Tags"] = tags
}

// TagValue returns the literal string value of tag `key` on `r`.
func TagValue(r *construct.Resource, key string) (string, bool) {
	tags, _ := r.Properties["Tags"].([]Tag)
	for _, t := range tags {
		if t.Key == key {
			s, ok := t.Value.(string)
			return s, ok
		}
	}
	return "", false
}

func newResource(scope construct.Scope, typ, name string) *construct.Resource {
	return construct.CreateResource(construct.ResourceId{
		Provider:  AWS_PROVIDER,
		Type:      typ,
		Namespace: scope.Namespace(),
		Name:      name,
	})
}
