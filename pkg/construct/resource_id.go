package construct

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

type ResourceId struct {
	Provider string `yaml:"provider"`
	Type     string `yaml:"type"`
	// Namespace is the scope path of the construct that declared the resource, such as
	// `infra/network/vpc`. Two resources may share a Name as long as they live in different
	// namespaces.
	Namespace string `yaml:"namespace"`
	Name      string `yaml:"name"`
}

var zeroId = ResourceId{}

func (id ResourceId) IsZero() bool {
	return id == zeroId
}

func (id ResourceId) String() string {
	if id.IsZero() {
		return ""
	}

	sb := strings.Builder{}
	const numberOfColons = 3 // the maximum number of colons used as separators
	sb.Grow(len(id.Provider) + len(id.Type) + len(id.Namespace) + len(id.Name) + numberOfColons)

	sb.WriteString(id.Provider)
	sb.WriteByte(':')
	sb.WriteString(id.Type)
	if id.Namespace != "" || strings.Contains(id.Name, ":") {
		sb.WriteByte(':')
		sb.WriteString(id.Namespace)
	}
	if id.Name != "" {
		sb.WriteByte(':')
		sb.WriteString(id.Name)
	}
	return sb.String()
}

// Path is the full scope path of the resource, the namespace followed by the name.
func (id ResourceId) Path() []string {
	var parts []string
	if id.Namespace != "" {
		parts = strings.Split(id.Namespace, "/")
	}
	return append(parts, id.Name)
}

func (id ResourceId) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// Matches uses `id` (the receiver) as a filter for `other` (the argument) and returns true if all the non-empty fields from
// `id` match the corresponding fields in `other`.
func (id ResourceId) Matches(other ResourceId) bool {
	if id.Provider != "" && id.Provider != other.Provider {
		return false
	}
	if id.Type != "" && id.Type != other.Type {
		return false
	}
	if id.Namespace != "" && id.Namespace != other.Namespace {
		return false
	}
	if id.Name != "" && id.Name != other.Name {
		return false
	}
	return true
}

var (
	resourceProviderPattern  = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	resourceTypePattern      = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	resourceNamespacePattern = regexp.MustCompile(`^[a-zA-Z0-9_./\-\[\]]*$`) // like name, but `:` not allowed
	resourceNamePattern      = regexp.MustCompile(`^[a-zA-Z0-9_./\-:\[\]]*$`)
)

// Validate checks each field of the id against the characters allowed for it.
func (id ResourceId) Validate() error {
	if id.IsZero() {
		return nil
	}
	var err error
	if !resourceProviderPattern.MatchString(id.Provider) {
		err = errors.Join(err, fmt.Errorf("invalid provider '%s' (must match %s)", id.Provider, resourceProviderPattern))
	}
	if id.Type != "" && !resourceTypePattern.MatchString(id.Type) {
		err = errors.Join(err, fmt.Errorf("invalid type '%s' (must match %s)", id.Type, resourceTypePattern))
	}
	if id.Namespace != "" && !resourceNamespacePattern.MatchString(id.Namespace) {
		err = errors.Join(err, fmt.Errorf("invalid namespace '%s' (must match %s)", id.Namespace, resourceNamespacePattern))
	}
	if !resourceNamePattern.MatchString(id.Name) {
		err = errors.Join(err, fmt.Errorf("invalid name '%s' (must match %s)", id.Name, resourceNamePattern))
	}
	if err != nil {
		return fmt.Errorf("invalid resource id '%s': %w", id, err)
	}
	return nil
}

func (id *ResourceId) UnmarshalText(data []byte) error {
	parts := strings.SplitN(string(data), ":", 4)
	switch len(parts) {
	case 4:
		id.Name = parts[3]
		fallthrough
	case 3:
		if len(parts) == 4 {
			id.Namespace = parts[2]
		} else {
			id.Name = parts[2]
		}
		fallthrough
	case 2:
		id.Type = parts[1]
		id.Provider = parts[0]
	case 1:
		if parts[0] != "" {
			return fmt.Errorf("must have trailing ':' for provider-only ID")
		}
	}
	return id.Validate()
}

// ParseId parses the text form `provider:type[:namespace]:name`.
func ParseId(s string) (ResourceId, error) {
	var id ResourceId
	err := id.UnmarshalText([]byte(s))
	return id, err
}
