package sanitization

import (
	"regexp"
)

// LogicalIdSanitizer strips everything a CloudFormation logical id cannot contain (only [A-Za-z0-9]).
var LogicalIdSanitizer = NewSanitizer(
	[]Rule{
		{
			Pattern:     regexp.MustCompile(`[^a-zA-Z0-9]+`),
			Replacement: "",
		},
		// logical ids cannot start with a digit
		{
			Pattern:     regexp.MustCompile(`^[0-9]+`),
			Replacement: "",
		},
	}, 255)
