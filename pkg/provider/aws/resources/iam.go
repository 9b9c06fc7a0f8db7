package resources

import (
	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/construct"
	awssanitizer "github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/sanitization/aws"
)

const (
	IAM_ROLE_TYPE   = "iam_role"
	IAM_POLICY_TYPE = "iam_policy"
	VERSION         = "2012-10-17"

	ECS_TASK_EXECUTION_POLICY_ARN = "arn:aws:iam::aws:policy/service-role/AmazonECSTaskExecutionRolePolicy"
)

type (
	PolicyDocument struct {
		Version   string
		Statement []StatementEntry
	}

	StatementEntry struct {
		Effect    string
		Action    []string
		Resource  []any
		Principal *Principal
		Condition map[string]map[string]any
	}

	Principal struct {
		Service   string
		Federated string
	}

	IamRole struct {
		*construct.Resource
	}

	IamRoleParams struct {
		// RoleName is optional; the provisioning engine generates one when empty.
		RoleName                 string
		AssumeRolePolicyDocument *PolicyDocument
		ManagedPolicyArns        []string
	}

	IamPolicy struct {
		*construct.Resource
	}
)

// ServiceAssumeRolePolicy trusts the AWS service `service` (such as `ecs-tasks.amazonaws.com`).
func ServiceAssumeRolePolicy(service string) *PolicyDocument {
	return &PolicyDocument{
		Version: VERSION,
		Statement: []StatementEntry{
			{
				Action:    []string{"sts:AssumeRole"},
				Principal: &Principal{Service: service},
				Effect:    "Allow",
			},
		},
	}
}

var ECS_ASSUMER_ROLE_POLICY = ServiceAssumeRolePolicy("ecs-tasks.amazonaws.com")

func NewIamRole(scope construct.Scope, id string, params IamRoleParams) (*IamRole, error) {
	r := newResource(scope, IAM_ROLE_TYPE, id)
	r.Properties["AssumeRolePolicyDocument"] = params.AssumeRolePolicyDocument
	if params.RoleName != "" {
		r.Properties["RoleName"] = awssanitizer.IamRoleSanitizer.Apply(params.RoleName)
	}
	if len(params.ManagedPolicyArns) > 0 {
		r.Properties["ManagedPolicyArns"] = params.ManagedPolicyArns
	}
	if err := scope.Declare(r); err != nil {
		return nil, err
	}
	return &IamRole{Resource: r}, nil
}

func (role *IamRole) Arn() construct.PropertyRef {
	return construct.Attr(role.ID, "Arn")
}

// NewDefaultPolicy declares the inline policy `<role>DefaultPolicy` attached to `role`.
func NewDefaultPolicy(scope construct.Scope, role *IamRole, statements []StatementEntry) (*IamPolicy, error) {
	sc := scope.Child(role.ID.Name)
	r := newResource(sc, IAM_POLICY_TYPE, "DefaultPolicy")
	r.Properties["PolicyName"] = awssanitizer.IamPolicySanitizer.Apply(role.ID.Name + "DefaultPolicy")
	r.Properties["PolicyDocument"] = &PolicyDocument{
		Version:   VERSION,
		Statement: statements,
	}
	r.Properties["Roles"] = []any{construct.Ref(role.ID)}
	if err := sc.Declare(r); err != nil {
		return nil, err
	}
	return &IamPolicy{Resource: r}, nil
}
