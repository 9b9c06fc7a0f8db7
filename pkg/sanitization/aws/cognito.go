package aws

import (
	"regexp"

	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/sanitization"
)

// CognitoUserPoolSanitizer returns a sanitized user pool (or user pool client) name when applied.
var CognitoUserPoolSanitizer = sanitization.NewSanitizer(
	[]sanitization.Rule{
		{
			Pattern:     regexp.MustCompile(`[^\w\s+=,.@-]`),
			Replacement: "_",
		},
	}, 128)

// CognitoIdentityPoolSanitizer returns a sanitized identity pool name when applied.
var CognitoIdentityPoolSanitizer = sanitization.NewSanitizer(
	[]sanitization.Rule{
		{
			Pattern:     regexp.MustCompile(`[^\w\s+=,.@-]`),
			Replacement: "_",
		},
	}, 128)
