package constructs

import (
	"fmt"

	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/construct"
	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/provider/aws/resources"
)

type (
	AppSecurityGroupProps struct {
		NamePrefix string
		Vpc        *resources.Vpc
		// IngressCidr is the source allowed to reach the API on port 80. Defaults to any IPv4 address.
		IngressCidr string
	}

	// AppSecurityGroup holds the groups of the application. IngressGroup fronts the API tasks,
	// InternalGroup is reachable only from members of IngressGroup.
	AppSecurityGroup struct {
		IngressGroup  *resources.SecurityGroup
		InternalGroup *resources.SecurityGroup
	}
)

const (
	HttpPort  = 80
	HttpsPort = 443
)

func DeclareSecurityPolicy(scope construct.Scope, props AppSecurityGroupProps) (*AppSecurityGroup, error) {
	if props.Vpc == nil {
		return nil, fmt.Errorf("security policy requires a vpc")
	}
	sc := scope.Child("security-group")
	cidr := props.IngressCidr
	if cidr == "" {
		cidr = resources.AnyIpv4
	}

	ingress, err := declareGroup(sc, "ApiEcs", props.NamePrefix+"-api-ecs-sg", "API ECS Security Group", props.Vpc)
	if err != nil {
		return nil, err
	}
	description := "from anywhere"
	if cidr != resources.AnyIpv4 {
		description = "from " + cidr
	}
	ingress.AddIngressFromCidr(cidr, HttpPort, description)

	internal, err := declareGroup(sc, "VpcEndpoint", props.NamePrefix+"-vpc-endpoint-sg", "VPC Endpoint Security Group", props.Vpc)
	if err != nil {
		return nil, err
	}
	if _, err := internal.AddIngressFromGroup(ingress, HttpsPort, "from API ECS"); err != nil {
		return nil, err
	}

	return &AppSecurityGroup{IngressGroup: ingress, InternalGroup: internal}, nil
}

func declareGroup(scope construct.Scope, id, name, description string, vpc *resources.Vpc) (*resources.SecurityGroup, error) {
	return resources.NewSecurityGroup(scope, id, resources.SecurityGroupParams{
		GroupName:        name,
		Description:      description,
		Vpc:              vpc,
		AllowAllOutbound: true,
	})
}
