package cloudformation

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/construct"
	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/sanitization"
	"github.com/iancoleman/strcase"
)

const hashLength = 8

// hiddenComponents are dropped from the readable part of a logical id.
var hiddenComponents = map[string]struct{}{
	"Default":  {},
	"Resource": {},
}

// LogicalId derives the template logical id of `id` from its scope path, excluding the stack: the
// PascalCase path components followed by 8 hex characters of the md5 of the path. Resources declared
// directly in the stack keep their name.
func LogicalId(id construct.ResourceId) string {
	path := id.Path()
	if len(path) > 1 {
		// the stack is the root of every path
		path = path[1:]
	}
	if len(path) == 1 {
		return sanitization.LogicalIdSanitizer.Apply(strcase.ToCamel(path[0]))
	}

	sum := md5.Sum([]byte(strings.Join(path, "/")))
	hash := strings.ToUpper(hex.EncodeToString(sum[:]))[:hashLength]

	var human []string
	for _, component := range path {
		if _, hidden := hiddenComponents[component]; hidden {
			continue
		}
		c := strcase.ToCamel(component)
		if len(human) > 0 && human[len(human)-1] == c {
			continue
		}
		human = append(human, c)
	}
	readable := sanitization.LogicalIdSanitizer.Apply(strings.Join(human, ""))
	if limit := 255 - hashLength; len(readable) > limit {
		readable = readable[:limit]
	}
	return readable + hash
}
