package aws

import (
	"regexp"

	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/sanitization"
)

// EcrRepositorySanitizer returns a sanitized ECR Repository name when applied.
var EcrRepositorySanitizer = sanitization.NewSanitizer(
	[]sanitization.Rule{
		{
			Pattern:     regexp.MustCompile(`[^a-z0-9-_/.]`),
			Lowercase:   true,
			Replacement: "",
		},
		{
			Pattern:     regexp.MustCompile(`[/._\-]{2,}`),
			Replacement: "-",
		},
		{
			Pattern:     regexp.MustCompile(`^[^a-z0-9]+`),
			Replacement: "",
		},
		{
			Pattern:     regexp.MustCompile(`[^a-z0-9]+$`),
			Replacement: "",
		},
	}, 256)
