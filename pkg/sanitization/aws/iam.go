package aws

import (
	"regexp"

	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/sanitization"
)

var iamNameRules = []sanitization.Rule{
	// IAM names allow alphanumerics and +=,.@-_
	{
		Pattern:     regexp.MustCompile(`[^\w+=,.@-]`),
		Replacement: "_",
	},
	{
		Pattern:     regexp.MustCompile(`_{2,}`),
		Replacement: "_",
	},
}

// IamRoleSanitizer returns a sanitized IAM role name when applied.
var IamRoleSanitizer = sanitization.NewSanitizer(iamNameRules, 64)

// IamPolicySanitizer returns a sanitized inline policy name when applied.
var IamPolicySanitizer = sanitization.NewSanitizer(iamNameRules, 128)
