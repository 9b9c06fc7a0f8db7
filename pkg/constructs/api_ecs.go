package constructs

import (
	"fmt"
	"time"

	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/config"
	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/construct"
	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/provider/aws/resources"
)

type (
	ApiEcsProps struct {
		NamePrefix    string
		Vpc           *Network
		SecurityGroup *resources.SecurityGroup
		Settings      config.ApiEcsSettings
		// AssignPublicIp gives tasks a public address. Tasks in public subnets need one to pull images.
		AssignPublicIp bool
		// Placement selects the subnets of the service, `public` or `private`.
		Placement string
		// EcrDeploymentHandlerExport names the export of the image deployment handler function ARN.
		EcrDeploymentHandlerExport string
	}

	// ApiEcs is the API container service running on Fargate, with its image repository and auto scaling.
	ApiEcs struct {
		TaskExecutionRole *resources.IamRole
		TaskRole          *resources.IamRole
		Repository        *resources.EcrRepository
		ImageDeployment   *resources.EcrDeployment
		Cluster           *resources.EcsCluster
		TaskDefinition    *resources.EcsTaskDefinition
		LogGroup          *resources.LogGroup
		Service           *resources.EcsService
		ScalableTarget    *resources.ScalableTarget
		ScalingPolicy     *resources.ScalingPolicy
	}
)

const (
	ContainerName      = "api-ecs-container"
	LogGroupName       = "/ecs/api-ecs-log"
	LogStreamPrefix    = "ecs"
	LogRetentionDays   = 365
	PlaceholderImage   = "nginx:latest"
	ImageTag           = "latest"
	CpuScalingPolicy   = "CpuScalingPolicy"
	CpuTargetPercent   = 70
	ScalingCooldown    = 60 * time.Second
	MinHealthyPercent  = 100
	MaxHealthyPercent  = 200
	DefaultHandlerName = "cdk-ecr-deployment-handler-arn"
)

var healthCheckCommand = []string{"CMD-SHELL", "curl -f http://localhost/ || exit 1"}

func DeclareApiEcs(scope construct.Scope, props ApiEcsProps) (*ApiEcs, error) {
	if props.Vpc == nil || props.SecurityGroup == nil {
		return nil, fmt.Errorf("api ecs requires a vpc and a security group")
	}
	placement := props.Placement
	if placement == "" {
		placement = resources.PublicSubnet
	}
	subnets, err := props.Vpc.Subnets(placement)
	if err != nil {
		return nil, err
	}
	handler := props.EcrDeploymentHandlerExport
	if handler == "" {
		handler = DefaultHandlerName
	}

	sc := scope.Child("api-ecs")
	api := &ApiEcs{}

	api.TaskExecutionRole, err = resources.NewIamRole(sc, "TaskExecutionRole", resources.IamRoleParams{
		RoleName:                 props.NamePrefix + "-api-ecs-task-execution-role",
		AssumeRolePolicyDocument: resources.ECS_ASSUMER_ROLE_POLICY,
		ManagedPolicyArns:        []string{resources.ECS_TASK_EXECUTION_POLICY_ARN},
	})
	if err != nil {
		return nil, err
	}
	api.TaskRole, err = resources.NewIamRole(sc, "TaskRole", resources.IamRoleParams{
		RoleName:                 props.NamePrefix + "-api-ecs-task-role",
		AssumeRolePolicyDocument: resources.ECS_ASSUMER_ROLE_POLICY,
	})
	if err != nil {
		return nil, err
	}

	api.Repository, err = resources.NewEcrRepository(sc, "Ecr", resources.EcrRepositoryParams{
		RepositoryName: props.NamePrefix + "-api-ecs-ecr",
		ScanOnPush:     true,
		EmptyOnDelete:  true,
		RemovalPolicy:  construct.RemovalPolicyDestroy,
	})
	if err != nil {
		return nil, err
	}
	// tasks cannot start until the repository holds an image, the real one is pushed by the API pipeline
	api.ImageDeployment, err = resources.NewEcrDeployment(sc, "EcrDummyDeploy", resources.EcrDeploymentParams{
		HandlerExport: handler,
		SrcImage:      PlaceholderImage,
		DestImage:     api.Repository.ImageUri(ImageTag),
	})
	if err != nil {
		return nil, err
	}

	api.Cluster, err = resources.NewEcsCluster(sc, "Cluster", resources.EcsClusterParams{
		ClusterName:       props.NamePrefix + "-api-ecs-cluster",
		ContainerInsights: true,
		CapacityProviders: []string{resources.LAUNCH_TYPE_FARGATE, resources.FARGATE_SPOT},
	})
	if err != nil {
		return nil, err
	}

	api.LogGroup, err = resources.NewLogGroup(sc, "ApiEcsLogGroup", resources.LogGroupParams{
		LogGroupName:    LogGroupName,
		RetentionInDays: LogRetentionDays,
		RemovalPolicy:   construct.RemovalPolicyDestroy,
	})
	if err != nil {
		return nil, err
	}

	api.TaskDefinition, err = resources.NewEcsTaskDefinition(sc, "TaskDefinition", resources.EcsTaskDefinitionParams{
		Family:          props.NamePrefix + "-api-ecs-task-def",
		Cpu:             props.Settings.Cpu,
		MemoryLimitMiB:  props.Settings.MemoryLimitMiB,
		ExecutionRole:   api.TaskExecutionRole,
		TaskRole:        api.TaskRole,
		CpuArchitecture: "X86_64",
		OperatingSystem: "LINUX",
		Containers: []resources.ContainerDefinition{
			{
				Name:             ContainerName,
				Image:            api.Repository.ImageUri(ImageTag),
				Essential:        true,
				LogConfiguration: resources.AwsLogs(api.LogGroup, LogStreamPrefix),
				HealthCheck: resources.ContainerHealthCheck(
					healthCheckCommand, 30*time.Second, 5*time.Second, 3, 60*time.Second,
				),
			},
		},
	})
	if err != nil {
		return nil, err
	}

	// the image is pulled by the agent with the execution role
	pullPolicy, err := resources.NewDefaultPolicy(sc, api.TaskExecutionRole, []resources.StatementEntry{
		{
			Effect:   "Allow",
			Action:   []string{"ecr:BatchCheckLayerAvailability", "ecr:GetDownloadUrlForLayer", "ecr:BatchGetImage"},
			Resource: []any{api.Repository.Arn()},
		},
		{
			Effect:   "Allow",
			Action:   []string{"ecr:GetAuthorizationToken"},
			Resource: []any{"*"},
		},
		{
			Effect:   "Allow",
			Action:   []string{"logs:CreateLogStream", "logs:PutLogEvents"},
			Resource: []any{api.LogGroup.Arn()},
		},
	})
	if err != nil {
		return nil, err
	}

	api.Service, err = resources.NewEcsService(sc, "Service", resources.EcsServiceParams{
		ServiceName:            props.NamePrefix + "-api-ecs-service",
		Cluster:                api.Cluster,
		TaskDefinition:         api.TaskDefinition,
		DesiredCount:           props.Settings.DesiredCount,
		MinHealthyPercent:      MinHealthyPercent,
		MaxHealthyPercent:      MaxHealthyPercent,
		CircuitBreakerRollback: true,
		Subnets:                subnets,
		SecurityGroups:         []*resources.SecurityGroup{props.SecurityGroup},
		AssignPublicIp:         props.AssignPublicIp,
	})
	if err != nil {
		return nil, err
	}
	for _, dep := range []construct.ResourceId{api.ImageDeployment.ID, pullPolicy.ID} {
		if err := sc.DependsOn(api.Service.ID, dep); err != nil {
			return nil, err
		}
	}

	// minCapacity <= desiredCount <= maxCapacity is left to the provisioning engine
	api.ScalableTarget, err = resources.NewServiceScalableTarget(sc.Child("Service"), "TaskCount", api.Service,
		props.Settings.MinCapacity, props.Settings.MaxCapacity)
	if err != nil {
		return nil, err
	}
	api.ScalingPolicy, err = api.ScalableTarget.ScaleToTrackMetric(sc.Child("Service"), "CpuScaling", resources.TargetTrackingParams{
		PolicyName:       CpuScalingPolicy,
		PredefinedMetric: resources.ECS_SERVICE_AVERAGE_CPU,
		TargetValue:      CpuTargetPercent,
		ScaleInCooldown:  ScalingCooldown,
		ScaleOutCooldown: ScalingCooldown,
	})
	if err != nil {
		return nil, err
	}
	return api, nil
}
