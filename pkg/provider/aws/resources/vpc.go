package resources

import (
	"fmt"
	"net"

	"github.com/apparentlymart/go-cidr/cidr"
	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/construct"
)

const (
	PrivateSubnet  = "private"
	PublicSubnet   = "public"
	IsolatedSubnet = "isolated"

	VPC_TYPE                            = "vpc"
	VPC_SUBNET_TYPE                     = "vpc_subnet"
	ROUTE_TABLE_TYPE                    = "route_table"
	ROUTE_TYPE                          = "route"
	SUBNET_ROUTE_TABLE_ASSOCIATION_TYPE = "subnet_route_table_association"
	INTERNET_GATEWAY_TYPE               = "internet_gateway"
	VPC_GATEWAY_ATTACHMENT_TYPE         = "vpc_gateway_attachment"
	NAT_GATEWAY_TYPE                    = "nat_gateway"

	AnyIpv4 = "0.0.0.0/0"
)

type (
	Vpc struct {
		*construct.Resource
	}

	VpcParams struct {
		CidrBlock          string
		EnableDnsSupport   bool
		EnableDnsHostnames bool
	}

	Subnet struct {
		*construct.Resource
		// Type is one of PublicSubnet, PrivateSubnet or IsolatedSubnet.
		Type       string
		RouteTable *RouteTable

		scope construct.Scope
	}

	SubnetParams struct {
		Vpc       *Vpc
		CidrBlock string
		Type      string
		// ZoneIndex selects the n-th availability zone of the region.
		ZoneIndex int
	}

	RouteTable struct {
		*construct.Resource
	}

	InternetGateway struct {
		*construct.Resource
		Attachment *construct.Resource
	}
)

func NewVpc(scope construct.Scope, id string, params VpcParams) (*Vpc, error) {
	if _, _, err := net.ParseCIDR(params.CidrBlock); err != nil {
		return nil, fmt.Errorf("invalid vpc cidr block %q: %w", params.CidrBlock, err)
	}
	r := newResource(scope, VPC_TYPE, id)
	r.Properties["CidrBlock"] = params.CidrBlock
	r.Properties["EnableDnsSupport"] = params.EnableDnsSupport
	r.Properties["EnableDnsHostnames"] = params.EnableDnsHostnames
	r.Properties["InstanceTenancy"] = "default"
	if err := scope.Declare(r); err != nil {
		return nil, err
	}
	return &Vpc{Resource: r}, nil
}

// VpcId references the id of the VPC.
func (vpc *Vpc) VpcId() construct.PropertyRef {
	return construct.Ref(vpc.ID)
}

// SubnetCidr returns the `num`-th block of size `/prefixLength` within the VPC's cidr.
func (vpc *Vpc) SubnetCidr(prefixLength, num int) (string, error) {
	_, base, err := net.ParseCIDR(vpc.Properties["CidrBlock"].(string))
	if err != nil {
		return "", err
	}
	baseLength, _ := base.Mask.Size()
	if prefixLength < baseLength {
		return "", fmt.Errorf("subnet prefix /%d is larger than vpc block %s", prefixLength, base)
	}
	subnet, err := cidr.Subnet(base, prefixLength-baseLength, num)
	if err != nil {
		return "", fmt.Errorf("could not allocate subnet %d of /%d in %s: %w", num, prefixLength, base, err)
	}
	return subnet.String(), nil
}

// NewSubnet declares a subnet under `scope` with its own route table and association. The subnet
// and route table are declared as `Subnet` and `RouteTable` in the child scope `id`.
func NewSubnet(scope construct.Scope, id string, params SubnetParams) (*Subnet, error) {
	sc := scope.Child(id)

	r := newResource(sc, VPC_SUBNET_TYPE, "Subnet")
	r.Properties["VpcId"] = params.Vpc.VpcId()
	r.Properties["CidrBlock"] = params.CidrBlock
	r.Properties["AvailabilityZone"] = construct.Select{Index: params.ZoneIndex, List: construct.GetAZs{}}
	r.Properties["MapPublicIpOnLaunch"] = params.Type == PublicSubnet
	if err := sc.Declare(r); err != nil {
		return nil, err
	}

	rtb := newResource(sc, ROUTE_TABLE_TYPE, "RouteTable")
	rtb.Properties["VpcId"] = params.Vpc.VpcId()
	if err := sc.Declare(rtb); err != nil {
		return nil, err
	}

	assoc := newResource(sc, SUBNET_ROUTE_TABLE_ASSOCIATION_TYPE, "RouteTableAssociation")
	assoc.Properties["RouteTableId"] = construct.Ref(rtb.ID)
	assoc.Properties["SubnetId"] = construct.Ref(r.ID)
	if err := sc.Declare(assoc); err != nil {
		return nil, err
	}

	return &Subnet{Resource: r, Type: params.Type, RouteTable: &RouteTable{Resource: rtb}, scope: sc}, nil
}

// SubnetId references the id of the subnet.
func (s *Subnet) SubnetId() construct.PropertyRef {
	return construct.Ref(s.ID)
}

// NewInternetGateway declares an internet gateway and its attachment to `vpc`.
func NewInternetGateway(scope construct.Scope, id string, vpc *Vpc) (*InternetGateway, error) {
	igw := newResource(scope, INTERNET_GATEWAY_TYPE, id)
	if err := scope.Declare(igw); err != nil {
		return nil, err
	}

	attachment := newResource(scope, VPC_GATEWAY_ATTACHMENT_TYPE, "VPCGW")
	attachment.Properties["VpcId"] = vpc.VpcId()
	attachment.Properties["InternetGatewayId"] = construct.Ref(igw.ID)
	if err := scope.Declare(attachment); err != nil {
		return nil, err
	}
	return &InternetGateway{Resource: igw, Attachment: attachment}, nil
}

// AddDefaultRoute routes all IPv4 traffic of the subnet's route table to `igw`. The route waits for the
// gateway to be attached to the VPC.
func (s *Subnet) AddDefaultRoute(igw *InternetGateway) (*construct.Resource, error) {
	sc := s.scope
	route := newResource(sc, ROUTE_TYPE, "DefaultRoute")
	route.Properties["RouteTableId"] = construct.Ref(s.RouteTable.ID)
	route.Properties["DestinationCidrBlock"] = AnyIpv4
	route.Properties["GatewayId"] = construct.Ref(igw.ID)
	if err := sc.Declare(route); err != nil {
		return nil, err
	}
	if err := sc.DependsOn(route.ID, igw.Attachment.ID); err != nil {
		return nil, err
	}
	return route, nil
}
