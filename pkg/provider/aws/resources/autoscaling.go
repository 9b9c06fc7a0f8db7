package resources

import (
	"fmt"
	"time"

	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/construct"
)

const (
	SCALABLE_TARGET_TYPE = "app_autoscaling_target"
	SCALING_POLICY_TYPE  = "app_autoscaling_policy"

	ECS_SERVICE_AVERAGE_CPU = "ECSServiceAverageCPUUtilization"
)

type (
	ScalableTarget struct {
		*construct.Resource
	}

	ScalingPolicy struct {
		*construct.Resource
	}

	TargetTrackingParams struct {
		PolicyName       string
		PredefinedMetric string
		TargetValue      float64
		ScaleInCooldown  time.Duration
		ScaleOutCooldown time.Duration
	}
)

// NewServiceScalableTarget makes the desired count of `service` scalable within [minCapacity, maxCapacity].
// The bounds are passed through unchecked against the service's desired count.
func NewServiceScalableTarget(scope construct.Scope, id string, service *EcsService, minCapacity, maxCapacity int) (*ScalableTarget, error) {
	r := newResource(scope, SCALABLE_TARGET_TYPE, id)
	r.Properties["ServiceNamespace"] = "ecs"
	r.Properties["ScalableDimension"] = "ecs:service:DesiredCount"
	r.Properties["MinCapacity"] = minCapacity
	r.Properties["MaxCapacity"] = maxCapacity
	r.Properties["ResourceId"] = construct.Join{
		Delimiter: "/",
		Values:    []any{"service", service.Cluster.ClusterName(), service.ServiceName()},
	}
	r.Properties["RoleARN"] = construct.Sub{
		String: "arn:${AWS::Partition}:iam::${AWS::AccountId}:role/aws-service-role/ecs.application-autoscaling.amazonaws.com/AWSServiceRoleForApplicationAutoScaling_ECSService",
	}
	if err := scope.Declare(r); err != nil {
		return nil, err
	}
	return &ScalableTarget{Resource: r}, nil
}

// ScaleToTrackMetric declares a target tracking policy on the target under the target's scope.
func (t *ScalableTarget) ScaleToTrackMetric(scope construct.Scope, id string, params TargetTrackingParams) (*ScalingPolicy, error) {
	if params.TargetValue <= 0 || params.TargetValue > 100 {
		return nil, fmt.Errorf("target value of %s must be within (0, 100], got %v", id, params.TargetValue)
	}
	sc := scope.Child(t.ID.Name)
	r := newResource(sc, SCALING_POLICY_TYPE, id)
	r.Properties["PolicyName"] = params.PolicyName
	r.Properties["PolicyType"] = "TargetTrackingScaling"
	r.Properties["ScalingTargetId"] = construct.Ref(t.ID)
	r.Properties["TargetTrackingScalingPolicyConfiguration"] = map[string]any{
		"PredefinedMetricSpecification": map[string]any{
			"PredefinedMetricType": params.PredefinedMetric,
		},
		"TargetValue":      params.TargetValue,
		"ScaleInCooldown":  int(params.ScaleInCooldown / time.Second),
		"ScaleOutCooldown": int(params.ScaleOutCooldown / time.Second),
	}
	if err := sc.Declare(r); err != nil {
		return nil, err
	}
	return &ScalingPolicy{Resource: r}, nil
}
