package constructs

import (
	"fmt"

	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/config"
	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/construct"
	"go.uber.org/zap"
)

type (
	InfraStackProps struct {
		ProjectName string
		NamePrefix  string
		EnvValues   config.EnvValues
	}

	// InfraStack assembles the application topology: network, security groups, authentication and the API
	// service, publishing the authentication ids the front end needs.
	InfraStack struct {
		*construct.Stack
		Network       *Network
		SecurityGroup *AppSecurityGroup
		Auth          *Auth
		ApiEcs        *ApiEcs
	}
)

const (
	OutputUserPoolId       = "userPoolId"
	OutputUserPoolClientId = "userPoolClientId"
	OutputIdentityPoolId   = "identityPoolId"
)

// StackName is the name of the stack deployed for `namePrefix`.
func StackName(namePrefix string) string {
	return namePrefix + "-infra-stack"
}

func NewInfraStack(props InfraStackProps) (*InfraStack, error) {
	if props.NamePrefix == "" {
		return nil, fmt.Errorf("stack %q requires a name prefix", props.ProjectName)
	}
	log := zap.S().Named("stack")
	stack := &InfraStack{Stack: construct.NewStack(StackName(props.NamePrefix))}
	root := stack.Root()
	env := props.EnvValues

	var err error
	stack.Network, err = DeclareNetwork(root, NetworkProps{NamePrefix: props.NamePrefix})
	if err != nil {
		return nil, fmt.Errorf("network: %w", err)
	}

	stack.SecurityGroup, err = DeclareSecurityPolicy(root, AppSecurityGroupProps{
		NamePrefix:  props.NamePrefix,
		Vpc:         stack.Network.Vpc,
		IngressCidr: env.Security.IngressCidr,
	})
	if err != nil {
		return nil, fmt.Errorf("security group: %w", err)
	}

	stack.Auth, err = DeclareAuth(root, AuthProps{NamePrefix: props.NamePrefix})
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}

	stack.ApiEcs, err = DeclareApiEcs(root, ApiEcsProps{
		NamePrefix:                 props.NamePrefix,
		Vpc:                        stack.Network,
		SecurityGroup:              stack.SecurityGroup.IngressGroup,
		Settings:                   env.ApiEcsSettings,
		AssignPublicIp:             env.Security.AssignPublicIp,
		Placement:                  env.Security.ServicePlacement,
		EcrDeploymentHandlerExport: env.EcrDeploymentHandlerExport,
	})
	if err != nil {
		return nil, fmt.Errorf("api ecs: %w", err)
	}

	if err := stack.ApplyOverrides(); err != nil {
		return nil, err
	}

	outputs := []construct.Output{
		{
			Name:        OutputUserPoolId,
			Value:       stack.Auth.UserPool.UserPoolId(),
			Description: "Cognito User Pool ID",
		},
		{
			Name:        OutputUserPoolClientId,
			Value:       stack.Auth.UserPoolClient.ClientId(),
			Description: "Cognito User Pool Client ID",
		},
		{
			Name:        OutputIdentityPoolId,
			Value:       stack.Auth.IdentityPool.IdentityPoolId(),
			Description: "Cognito Identity Pool ID",
		},
	}
	for _, o := range outputs {
		if err := stack.AddOutput(o); err != nil {
			return nil, err
		}
	}

	log.Infof("declared stack %s of %s (%s) with %d resources", stack.Name, props.ProjectName, env.EnvName, resourceCount(stack.Graph))
	return stack, nil
}

func resourceCount(g construct.Graph) int {
	n, err := g.Order()
	if err != nil {
		return 0
	}
	return n
}
