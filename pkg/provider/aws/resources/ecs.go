package resources

import (
	"fmt"
	"time"

	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/construct"
	awssanitizer "github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/sanitization/aws"
)

const (
	ECS_CLUSTER_TYPE            = "ecs_cluster"
	ECS_CAPACITY_PROVIDERS_TYPE = "ecs_cluster_capacity_providers"
	ECS_TASK_DEFINITION_TYPE    = "ecs_task_definition"
	ECS_SERVICE_TYPE            = "ecs_service"

	LAUNCH_TYPE_FARGATE  = "FARGATE"
	NETWORK_MODE_AWSVPC  = "awsvpc"
	FARGATE_SPOT         = "FARGATE_SPOT"
	ASSIGN_PUBLIC_IP_ON  = "ENABLED"
	ASSIGN_PUBLIC_IP_OFF = "DISABLED"
)

type (
	EcsCluster struct {
		*construct.Resource
		CapacityProviders *construct.Resource
	}

	EcsClusterParams struct {
		ClusterName       string
		ContainerInsights bool
		// CapacityProviders are associated with the cluster, the first one being the default strategy.
		CapacityProviders []string
	}

	EcsTaskDefinition struct {
		*construct.Resource
	}

	EcsTaskDefinitionParams struct {
		Family          string
		Cpu             int
		MemoryLimitMiB  int
		ExecutionRole   *IamRole
		TaskRole        *IamRole
		CpuArchitecture string
		OperatingSystem string
		Containers      []ContainerDefinition
	}

	ContainerDefinition struct {
		Name             string
		Image            any
		Essential        bool
		PortMappings     []PortMapping
		LogConfiguration *LogConfiguration
		HealthCheck      *HealthCheck
	}

	PortMapping struct {
		ContainerPort int
		Protocol      string
	}

	LogConfiguration struct {
		LogDriver string
		Options   map[string]any
	}

	HealthCheck struct {
		Command     []string
		Interval    int
		Retries     int
		StartPeriod int
		Timeout     int
	}

	EcsService struct {
		*construct.Resource
		Cluster *EcsCluster
	}

	EcsServiceParams struct {
		ServiceName            string
		Cluster                *EcsCluster
		TaskDefinition         *EcsTaskDefinition
		DesiredCount           int
		MinHealthyPercent      int
		MaxHealthyPercent      int
		CircuitBreakerRollback bool
		Subnets                []*Subnet
		SecurityGroups         []*SecurityGroup
		AssignPublicIp         bool
	}
)

// ContainerHealthCheck builds a health check from durations, as accepted by the task definition.
func ContainerHealthCheck(command []string, interval, timeout time.Duration, retries int, startPeriod time.Duration) *HealthCheck {
	return &HealthCheck{
		Command:     command,
		Interval:    int(interval / time.Second),
		Timeout:     int(timeout / time.Second),
		Retries:     retries,
		StartPeriod: int(startPeriod / time.Second),
	}
}

// AwsLogs configures the awslogs driver of a container to write to `group` with `prefix` streams.
func AwsLogs(group *LogGroup, prefix string) *LogConfiguration {
	return &LogConfiguration{
		LogDriver: "awslogs",
		Options: map[string]any{
			"awslogs-group":         group.LogGroupName(),
			"awslogs-region":        construct.Region,
			"awslogs-stream-prefix": prefix,
		},
	}
}

// NewEcsCluster declares a cluster and, when capacity providers are given, their association with it.
func NewEcsCluster(scope construct.Scope, id string, params EcsClusterParams) (*EcsCluster, error) {
	r := newResource(scope, ECS_CLUSTER_TYPE, id)
	r.Properties["ClusterName"] = awssanitizer.EcsClusterSanitizer.Apply(params.ClusterName)
	insights := "disabled"
	if params.ContainerInsights {
		insights = "enabled"
	}
	r.Properties["ClusterSettings"] = []any{map[string]any{"Name": "containerInsights", "Value": insights}}
	if err := scope.Declare(r); err != nil {
		return nil, err
	}
	cluster := &EcsCluster{Resource: r}
	if len(params.CapacityProviders) == 0 {
		return cluster, nil
	}

	sc := scope.Child(id)
	assoc := newResource(sc, ECS_CAPACITY_PROVIDERS_TYPE, "CapacityProviderAssociations")
	assoc.Properties["Cluster"] = construct.Ref(r.ID)
	assoc.Properties["CapacityProviders"] = params.CapacityProviders
	assoc.Properties["DefaultCapacityProviderStrategy"] = []any{}
	if err := sc.Declare(assoc); err != nil {
		return nil, err
	}
	cluster.CapacityProviders = assoc
	return cluster, nil
}

func (c *EcsCluster) ClusterName() construct.PropertyRef {
	return construct.Ref(c.ID)
}

// fargateSizes lists the memory sizes (MiB) valid for each Fargate cpu size.
var fargateSizes = map[int]func(mem int) bool{
	256:  func(mem int) bool { return mem == 512 || mem == 1024 || mem == 2048 },
	512:  func(mem int) bool { return mem >= 1024 && mem <= 4096 && mem%1024 == 0 },
	1024: func(mem int) bool { return mem >= 2048 && mem <= 8192 && mem%1024 == 0 },
	2048: func(mem int) bool { return mem >= 4096 && mem <= 16384 && mem%1024 == 0 },
	4096: func(mem int) bool { return mem >= 8192 && mem <= 30720 && mem%1024 == 0 },
}

func NewEcsTaskDefinition(scope construct.Scope, id string, params EcsTaskDefinitionParams) (*EcsTaskDefinition, error) {
	valid, ok := fargateSizes[params.Cpu]
	if !ok {
		return nil, fmt.Errorf("unsupported fargate cpu %d", params.Cpu)
	}
	if !valid(params.MemoryLimitMiB) {
		return nil, fmt.Errorf("unsupported fargate memory %d MiB for cpu %d", params.MemoryLimitMiB, params.Cpu)
	}
	r := newResource(scope, ECS_TASK_DEFINITION_TYPE, id)
	r.Properties["Family"] = awssanitizer.EcsTaskDefinitionSanitizer.Apply(params.Family)
	r.Properties["Cpu"] = fmt.Sprint(params.Cpu)
	r.Properties["Memory"] = fmt.Sprint(params.MemoryLimitMiB)
	r.Properties["NetworkMode"] = NETWORK_MODE_AWSVPC
	r.Properties["RequiresCompatibilities"] = []string{LAUNCH_TYPE_FARGATE}
	r.Properties["RuntimePlatform"] = map[string]any{
		"CpuArchitecture":       params.CpuArchitecture,
		"OperatingSystemFamily": params.OperatingSystem,
	}
	if params.ExecutionRole != nil {
		r.Properties["ExecutionRoleArn"] = params.ExecutionRole.Arn()
	}
	if params.TaskRole != nil {
		r.Properties["TaskRoleArn"] = params.TaskRole.Arn()
	}
	containers := make([]ContainerDefinition, len(params.Containers))
	for i, c := range params.Containers {
		c.Name = awssanitizer.EcsContainerSanitizer.Apply(c.Name)
		containers[i] = c
	}
	r.Properties["ContainerDefinitions"] = containers
	if err := scope.Declare(r); err != nil {
		return nil, err
	}
	return &EcsTaskDefinition{Resource: r}, nil
}

func (td *EcsTaskDefinition) Containers() []ContainerDefinition {
	c, _ := td.Properties["ContainerDefinitions"].([]ContainerDefinition)
	return c
}

func NewEcsService(scope construct.Scope, id string, params EcsServiceParams) (*EcsService, error) {
	if len(params.Subnets) == 0 {
		return nil, fmt.Errorf("service %s requires at least one subnet", id)
	}
	r := newResource(scope, ECS_SERVICE_TYPE, id)
	r.Properties["ServiceName"] = awssanitizer.EcsServiceSanitizer.Apply(params.ServiceName)
	r.Properties["Cluster"] = params.Cluster.ClusterName()
	r.Properties["TaskDefinition"] = construct.Ref(params.TaskDefinition.ID)
	r.Properties["DesiredCount"] = params.DesiredCount
	r.Properties["LaunchType"] = LAUNCH_TYPE_FARGATE
	r.Properties["EnableECSManagedTags"] = false
	r.Properties["DeploymentController"] = map[string]any{"Type": "ECS"}
	r.Properties["DeploymentConfiguration"] = map[string]any{
		"MinimumHealthyPercent": params.MinHealthyPercent,
		"MaximumPercent":        params.MaxHealthyPercent,
		"DeploymentCircuitBreaker": map[string]any{
			"Enable":   params.CircuitBreakerRollback,
			"Rollback": params.CircuitBreakerRollback,
		},
	}

	subnets := make([]any, len(params.Subnets))
	for i, s := range params.Subnets {
		subnets[i] = s.SubnetId()
	}
	groups := make([]any, len(params.SecurityGroups))
	for i, sg := range params.SecurityGroups {
		groups[i] = sg.GroupId()
	}
	assign := ASSIGN_PUBLIC_IP_OFF
	if params.AssignPublicIp {
		assign = ASSIGN_PUBLIC_IP_ON
	}
	r.Properties["NetworkConfiguration"] = map[string]any{
		"AwsvpcConfiguration": map[string]any{
			"AssignPublicIp": assign,
			"SecurityGroups": groups,
			"Subnets":        subnets,
		},
	}
	if err := scope.Declare(r); err != nil {
		return nil, err
	}
	// FARGATE tasks cannot be placed before the capacity providers are associated
	if c := params.Cluster.CapacityProviders; c != nil {
		if err := scope.DependsOn(r.ID, c.ID); err != nil {
			return nil, err
		}
	}
	return &EcsService{Resource: r, Cluster: params.Cluster}, nil
}

func (s *EcsService) ServiceName() construct.PropertyRef {
	return construct.Attr(s.ID, "Name")
}
