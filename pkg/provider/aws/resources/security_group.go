package resources

import (
	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/construct"
	awssanitizer "github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/sanitization/aws"
)

const (
	SG_TYPE         = "security_group"
	SG_INGRESS_TYPE = "security_group_ingress"
)

type (
	SecurityGroup struct {
		*construct.Resource
		Vpc *Vpc

		scope construct.Scope
	}

	SecurityGroupParams struct {
		GroupName   string
		Description string
		Vpc         *Vpc
		// AllowAllOutbound adds the default egress rule allowing all IPv4 traffic.
		AllowAllOutbound bool
	}

	// SecurityGroupRule is an inline rule of a security group. Exactly one of CidrIp or SourceSecurityGroupId
	// is set on ingress rules.
	SecurityGroupRule struct {
		Description           string
		IpProtocol            string
		FromPort              int
		ToPort                int
		CidrIp                string
		SourceSecurityGroupId any
	}
)

func NewSecurityGroup(scope construct.Scope, id string, params SecurityGroupParams) (*SecurityGroup, error) {
	r := newResource(scope, SG_TYPE, id)
	name := awssanitizer.SecurityGroupSanitizer.Apply(params.GroupName)
	r.Properties["GroupName"] = name
	r.Properties["GroupDescription"] = params.Description
	r.Properties["VpcId"] = params.Vpc.VpcId()
	if params.AllowAllOutbound {
		r.Properties["SecurityGroupEgress"] = []SecurityGroupRule{{
			Description: "Allow all outbound traffic by default",
			IpProtocol:  "-1",
			CidrIp:      AnyIpv4,
		}}
	}
	SetTag(r, "Name", name)
	if err := scope.Declare(r); err != nil {
		return nil, err
	}
	return &SecurityGroup{Resource: r, Vpc: params.Vpc, scope: scope}, nil
}

// GroupId references the id of the security group (its `Ref` is the name for default-VPC groups, so the
// attribute is used instead).
func (sg *SecurityGroup) GroupId() construct.PropertyRef {
	return construct.Attr(sg.ID, "GroupId")
}

// AddIngressFromCidr adds an inline ingress rule for tcp `port` from `cidr`.
func (sg *SecurityGroup) AddIngressFromCidr(cidr string, port int, description string) {
	rules, _ := sg.Properties["SecurityGroupIngress"].([]SecurityGroupRule)
	sg.Properties["SecurityGroupIngress"] = append(rules, SecurityGroupRule{
		Description: description,
		IpProtocol:  "tcp",
		FromPort:    port,
		ToPort:      port,
		CidrIp:      cidr,
	})
}

// AddIngressFromGroup allows tcp `port` from members of `source`. The rule is a separate resource so the
// two groups can reference each other without a dependency cycle.
func (sg *SecurityGroup) AddIngressFromGroup(source *SecurityGroup, port int, description string) (*construct.Resource, error) {
	sc := sg.scope.Child(sg.ID.Name)
	r := newResource(sc, SG_INGRESS_TYPE, "from"+source.ID.Name)
	r.Properties["GroupId"] = sg.GroupId()
	r.Properties["IpProtocol"] = "tcp"
	r.Properties["FromPort"] = port
	r.Properties["ToPort"] = port
	r.Properties["SourceSecurityGroupId"] = source.GroupId()
	r.Properties["Description"] = description
	if err := sc.Declare(r); err != nil {
		return nil, err
	}
	return r, nil
}

// IngressRules returns the inline ingress rules of the group.
func (sg *SecurityGroup) IngressRules() []SecurityGroupRule {
	rules, _ := sg.Properties["SecurityGroupIngress"].([]SecurityGroupRule)
	return rules
}
