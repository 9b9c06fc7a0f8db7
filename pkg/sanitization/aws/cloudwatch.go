package aws

import (
	"regexp"

	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/sanitization"
)

// CloudwatchLogGroupSanitizer returns a sanitized log group name when applied. The `aws/` prefix is
// reserved for log groups created by AWS services.
var CloudwatchLogGroupSanitizer = sanitization.NewSanitizer(
	[]sanitization.Rule{
		{
			Pattern:     regexp.MustCompile(`[^-._/#A-Za-z\d]`),
			Replacement: "_",
		},
		{
			Pattern:     regexp.MustCompile(`^aws/`),
			Replacement: "",
		},
	}, 512)
