package constructs

import (
	"fmt"

	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/construct"
	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/provider/aws/resources"
	"go.uber.org/zap"
)

const (
	VpcCidr      = "172.16.0.0/16"
	SubnetPrefix = 24
	MaxZones     = 2
)

type (
	NetworkProps struct {
		NamePrefix string
	}

	// Network is a VPC with one public and one private subnet per availability zone. Public subnets route to
	// the internet gateway; private subnets have no route out.
	Network struct {
		Vpc             *resources.Vpc
		PublicSubnets   []*resources.Subnet
		PrivateSubnets  []*resources.Subnet
		InternetGateway *resources.InternetGateway
	}

	subnetGroup struct {
		name string
		typ  string
		tag  string
	}
)

// subnetGroups are allocated in order, every group getting one block per zone.
var subnetGroups = []subnetGroup{
	{name: "Public", typ: resources.PublicSubnet, tag: "public"},
	{name: "Private", typ: resources.PrivateSubnet, tag: "private"},
}

func DeclareNetwork(scope construct.Scope, props NetworkProps) (*Network, error) {
	log := zap.S().Named("network")
	sc := scope.Child("network")

	vpc, err := resources.NewVpc(sc, "vpc", resources.VpcParams{
		CidrBlock:          VpcCidr,
		EnableDnsSupport:   true,
		EnableDnsHostnames: true,
	})
	if err != nil {
		return nil, err
	}
	resources.SetTag(vpc.Resource, "Name", props.NamePrefix+"-vpc")

	vpcScope := sc.Child("vpc")
	igw, err := resources.NewInternetGateway(vpcScope, "IGW", vpc)
	if err != nil {
		return nil, err
	}
	resources.SetTag(igw.Resource, "Name", props.NamePrefix+"-igw")

	network := &Network{Vpc: vpc, InternetGateway: igw}
	block := 0
	for _, group := range subnetGroups {
		for zone := 0; zone < MaxZones; zone++ {
			no := zone + 1
			cidrBlock, err := vpc.SubnetCidr(SubnetPrefix, block)
			if err != nil {
				return nil, err
			}
			block++

			subnet, err := resources.NewSubnet(vpcScope, fmt.Sprintf("%sSubnet%d", group.name, no), resources.SubnetParams{
				Vpc:       vpc,
				CidrBlock: cidrBlock,
				Type:      group.typ,
				ZoneIndex: zone,
			})
			if err != nil {
				return nil, err
			}
			resources.SetTag(subnet.Resource, "Name", fmt.Sprintf("%s-%s-subnet-%d", props.NamePrefix, group.tag, no))
			resources.SetTag(subnet.Resource, "aws-cdk:subnet-name", group.name)
			resources.SetTag(subnet.Resource, "aws-cdk:subnet-type", group.name)
			resources.SetTag(subnet.RouteTable.Resource, "Name", fmt.Sprintf("%s-%s-rtb-%d", props.NamePrefix, group.tag, no))

			switch group.typ {
			case resources.PublicSubnet:
				if _, err := subnet.AddDefaultRoute(igw); err != nil {
					return nil, err
				}
				network.PublicSubnets = append(network.PublicSubnets, subnet)

			case resources.PrivateSubnet:
				network.PrivateSubnets = append(network.PrivateSubnets, subnet)
			}
		}
	}

	if len(network.PrivateSubnets) > 0 {
		log.Warnf("%d private subnets have no NAT gateway: resources placed in them cannot reach the internet",
			len(network.PrivateSubnets))
	}
	log.Debugf("declared vpc %s with %d public and %d private subnets",
		VpcCidr, len(network.PublicSubnets), len(network.PrivateSubnets))
	return network, nil
}

// Subnets returns the subnets of the given placement.
func (n *Network) Subnets(placement string) ([]*resources.Subnet, error) {
	switch placement {
	case resources.PublicSubnet:
		return n.PublicSubnets, nil
	case resources.PrivateSubnet:
		return n.PrivateSubnets, nil
	default:
		return nil, fmt.Errorf("unknown subnet placement %q", placement)
	}
}
