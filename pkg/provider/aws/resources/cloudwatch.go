package resources

import (
	"fmt"

	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/construct"
	awssanitizer "github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/sanitization/aws"
)

const LOG_GROUP_TYPE = "log_group"

type (
	LogGroup struct {
		*construct.Resource
	}

	LogGroupParams struct {
		LogGroupName    string
		RetentionInDays int
		RemovalPolicy   construct.RemovalPolicy
	}
)

// validRetentionDays are the retention periods accepted by CloudWatch Logs.
var validRetentionDays = map[int]struct{}{
	1: {}, 3: {}, 5: {}, 7: {}, 14: {}, 30: {}, 60: {}, 90: {}, 120: {}, 150: {}, 180: {}, 365: {}, 400: {},
	545: {}, 731: {}, 1096: {}, 1827: {}, 2192: {}, 2557: {}, 2922: {}, 3288: {}, 3653: {},
}

func NewLogGroup(scope construct.Scope, id string, params LogGroupParams) (*LogGroup, error) {
	r := newResource(scope, LOG_GROUP_TYPE, id)
	r.Properties["LogGroupName"] = awssanitizer.CloudwatchLogGroupSanitizer.Apply(params.LogGroupName)
	if params.RetentionInDays > 0 {
		if _, ok := validRetentionDays[params.RetentionInDays]; !ok {
			return nil, fmt.Errorf("log group %s: unsupported retention of %d days", r.ID, params.RetentionInDays)
		}
		r.Properties["RetentionInDays"] = params.RetentionInDays
	}
	r.RemovalPolicy = params.RemovalPolicy
	if err := scope.Declare(r); err != nil {
		return nil, err
	}
	return &LogGroup{Resource: r}, nil
}

func (lg *LogGroup) Arn() construct.PropertyRef {
	return construct.Attr(lg.ID, "Arn")
}

func (lg *LogGroup) LogGroupName() construct.PropertyRef {
	return construct.Ref(lg.ID)
}
