package aws

import (
	"regexp"

	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/sanitization"
)

// SecurityGroupSanitizer returns a sanitized security group name when applied.
var SecurityGroupSanitizer = sanitization.NewSanitizer(
	[]sanitization.Rule{
		// group names allow a-z, A-Z, 0-9, spaces, and ._-:/()#,@[]+=&;{}!$*
		{
			Pattern:     regexp.MustCompile(`[^a-zA-Z0-9 ._\-:/()#,@\[\]+=&;{}!$*]`),
			Replacement: "_",
		},
		// cannot start with sg-
		{
			Pattern:     regexp.MustCompile(`^sg-`),
			Replacement: "",
		},
	}, 255)

// TagValueSanitizer returns a sanitized EC2 tag value when applied.
var TagValueSanitizer = sanitization.NewSanitizer(
	[]sanitization.Rule{
		{
			Pattern:     regexp.MustCompile(`[^\p{L}\p{Z}\p{N}_.:/=+\-@]`),
			Replacement: "_",
		},
	}, 256)
