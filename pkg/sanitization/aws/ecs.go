package aws

import (
	"regexp"

	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/sanitization"
)

var ecsNameRules = []sanitization.Rule{
	// strip any characters not matching [a-zA-Z0-9-_]
	{
		Pattern:     regexp.MustCompile(`[^\w-]+`),
		Replacement: "",
	},
}

// EcsTaskDefinitionSanitizer returns a sanitized ECS task definition family when applied.
var EcsTaskDefinitionSanitizer = sanitization.NewSanitizer(ecsNameRules, 255)

// EcsClusterSanitizer returns a sanitized ECS Cluster name when applied.
var EcsClusterSanitizer = sanitization.NewSanitizer(ecsNameRules, 255)

// EcsServiceSanitizer returns a sanitized ECS Service name when applied.
var EcsServiceSanitizer = sanitization.NewSanitizer(ecsNameRules, 255)

// EcsContainerSanitizer returns a sanitized container name when applied.
var EcsContainerSanitizer = sanitization.NewSanitizer(ecsNameRules, 255)
