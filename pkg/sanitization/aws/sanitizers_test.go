package aws

import (
	"strings"
	"testing"

	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/sanitization"
	"github.com/stretchr/testify/assert"
)

func TestSanitizers(t *testing.T) {
	tests := []struct {
		name      string
		sanitizer *sanitization.Sanitizer
		input     string
		want      string
	}{
		{name: "ecr lowercases and collapses", sanitizer: EcrRepositorySanitizer, input: "My_App--Repo/", want: "my_app-repo"},
		{name: "ecr leading separators", sanitizer: EcrRepositorySanitizer, input: "-.app", want: "app"},
		{name: "security group prefix", sanitizer: SecurityGroupSanitizer, input: "sg-p%api", want: "p_api"},
		{name: "security group allowed punctuation", sanitizer: SecurityGroupSanitizer, input: "app (dev)", want: "app (dev)"},
		{name: "ecs", sanitizer: EcsClusterSanitizer, input: "dev app/cluster", want: "devappcluster"},
		{name: "iam role", sanitizer: IamRoleSanitizer, input: "app dev/role", want: "app_dev_role"},
		{name: "iam role truncated", sanitizer: IamRoleSanitizer, input: strings.Repeat("r", 70), want: strings.Repeat("r", 64)},
		{name: "iam role collapses", sanitizer: IamRoleSanitizer, input: "app  role", want: "app_role"},
		{name: "log group reserved prefix", sanitizer: CloudwatchLogGroupSanitizer, input: "aws/ecs/api", want: "ecs/api"},
		{name: "log group", sanitizer: CloudwatchLogGroupSanitizer, input: "/ecs/api ecs", want: "/ecs/api_ecs"},
		{name: "user pool", sanitizer: CognitoUserPoolSanitizer, input: "app-dev:pool", want: "app-dev_pool"},
		{name: "tag value", sanitizer: TagValueSanitizer, input: "app-dev/vpc!", want: "app-dev/vpc_"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sanitizer.Apply(tt.input))
		})
	}
}
