package construct

import (
	"bytes"
	"fmt"
)

// PropertyRef references an attribute of another resource. An empty Property references the resource
// itself (its primary identifier).
type PropertyRef struct {
	Resource ResourceId
	Property string
}

// Ref returns a reference to the primary identifier of `id`.
func Ref(id ResourceId) PropertyRef {
	return PropertyRef{Resource: id}
}

// Attr returns a reference to the `attribute` of `id`.
func Attr(id ResourceId, attribute string) PropertyRef {
	return PropertyRef{Resource: id, Property: attribute}
}

func (v PropertyRef) String() string {
	if v.Property == "" {
		return v.Resource.String()
	}
	return v.Resource.String() + "#" + v.Property
}

func (v PropertyRef) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *PropertyRef) UnmarshalText(b []byte) error {
	parts := bytes.SplitN(b, []byte("#"), 2)
	err := v.Resource.UnmarshalText(parts[0])
	if err != nil {
		return fmt.Errorf("invalid PropertyRef format: %s: %w", string(b), err)
	}
	if len(parts) == 2 {
		v.Property = string(parts[1])
	}
	return nil
}
