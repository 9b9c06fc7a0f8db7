package construct

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

type (
	Properties map[string]any
)

// SetProperty sets the value at `path` (such as `Tags[0].Value` or `AdminCreateUserConfig.AllowAdminCreateUserOnly`),
// creating intermediate maps when they are missing. Array indices must already exist.
func (r *Resource) SetProperty(path string, value any) error {
	if r.Properties == nil {
		r.Properties = Properties{}
	}
	parts := splitPath(path)
	if len(parts) == 0 {
		return fmt.Errorf("empty path")
	}

	var on any = map[string]any(r.Properties)
	for i, part := range parts[:len(parts)-1] {
		next, err := child(on, parts, i, part)
		if err != nil {
			return err
		}
		if next == nil {
			if strings.HasPrefix(part, "[") {
				return &PropertyPathError{Path: parts[:i+1], Cause: fmt.Errorf("nil array element")}
			}
			created := map[string]any{}
			if err := setChild(on, parts, i, part, created); err != nil {
				return err
			}
			next = created
		}
		on = next
	}
	return setChild(on, parts, len(parts)-1, parts[len(parts)-1], value)
}

// GetProperty returns the value at `path`, or nil if any key along the path is missing.
func (r *Resource) GetProperty(path string) (any, error) {
	parts := splitPath(path)
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty path")
	}
	var value any = map[string]any(r.Properties)
	for i, part := range parts {
		next, err := child(value, parts, i, part)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, nil
		}
		value = next
	}
	return value, nil
}

// AppendProperty appends `value` to the list at `path`, creating the list if needed.
func (r *Resource) AppendProperty(path string, value any) error {
	current, err := r.GetProperty(path)
	if err != nil {
		return err
	}
	switch current := current.(type) {
	case nil:
		return r.SetProperty(path, []any{value})
	case []any:
		return r.SetProperty(path, append(current, value))
	default:
		return &PropertyPathError{Path: splitPath(path), Cause: fmt.Errorf("expected array, got %T", current)}
	}
}

func splitPath(path string) []string {
	var parts []string
	var delim string
	for path != "" {
		partIdx := strings.IndexAny(path, ".[")
		var part string
		if partIdx == -1 {
			part = delim + path
			path = ""
		} else {
			part = delim + path[:partIdx]
			delim = path[partIdx : partIdx+1]
			path = path[partIdx+1:]
		}
		if part != "" && part != "." {
			parts = append(parts, part)
		}
	}
	return parts
}

func asMap(v any) (map[string]any, bool) {
	switch v := v.(type) {
	case map[string]any:
		return v, true
	case Properties:
		return v, true
	}
	return nil, false
}

func arrayIndex(parts []string, i int, part string, length int) (int, error) {
	if len(part) < 2 || part[len(part)-1] != ']' {
		return 0, &PropertyPathError{
			Path:  parts[:i+1],
			Cause: fmt.Errorf("invalid array index format, got %q", part),
		}
	}
	idx, err := strconv.Atoi(part[1 : len(part)-1])
	if err != nil {
		return 0, &PropertyPathError{Path: parts[:i+1], Cause: err}
	}
	if idx < 0 || idx >= length {
		return 0, &PropertyPathError{
			Path:  parts[:i+1],
			Cause: fmt.Errorf("array index out of bounds: %d (length %d)", idx, length),
		}
	}
	return idx, nil
}

func child(on any, parts []string, i int, part string) (any, error) {
	if strings.HasPrefix(part, "[") {
		a, ok := on.([]any)
		if !ok {
			return nil, &PropertyPathError{Path: parts[:i], Cause: fmt.Errorf("expected array, got %T", on)}
		}
		idx, err := arrayIndex(parts, i, part, len(a))
		if err != nil {
			return nil, err
		}
		return a[idx], nil
	}
	m, ok := asMap(on)
	if !ok {
		return nil, &PropertyPathError{Path: parts[:i], Cause: fmt.Errorf("expected map, got %T", on)}
	}
	return m[strings.TrimPrefix(part, ".")], nil
}

func setChild(on any, parts []string, i int, part string, value any) error {
	if strings.HasPrefix(part, "[") {
		a, ok := on.([]any)
		if !ok {
			return &PropertyPathError{Path: parts[:i], Cause: fmt.Errorf("expected array, got %T", on)}
		}
		idx, err := arrayIndex(parts, i, part, len(a))
		if err != nil {
			return err
		}
		a[idx] = value
		return nil
	}
	m, ok := asMap(on)
	if !ok {
		return &PropertyPathError{Path: parts[:i], Cause: fmt.Errorf("expected map, got %T", on)}
	}
	m[strings.TrimPrefix(part, ".")] = value
	return nil
}

type PropertyPathError struct {
	Path  []string
	Cause error
}

func (e *PropertyPathError) Error() string {
	return fmt.Sprintf("error in path %s: %v",
		strings.Join(e.Path, ""),
		e.Cause,
	)
}

func (e *PropertyPathError) Unwrap() error {
	return e.Cause
}

// WalkProperties calls `fn` for every value (including nested map values and array elements) in `props`,
// in a stable order (map keys are sorted). Nested values of [Properties], `map[string]any`, `[]any` and
// any struct fields of the intrinsic types are visited.
func WalkProperties(props Properties, fn func(path string, value any) error) error {
	return walkValue("", reflect.ValueOf(map[string]any(props)), fn)
}

func walkValue(path string, v reflect.Value, fn func(path string, value any) error) error {
	for v.Kind() == reflect.Interface || v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return nil
	}
	if path != "" {
		if err := fn(path, v.Interface()); err != nil {
			return err
		}
	}
	switch v.Kind() {
	case reflect.Map:
		keys := make([]string, 0, v.Len())
		for _, k := range v.MapKeys() {
			keys = append(keys, fmt.Sprint(k.Interface()))
		}
		sort.Strings(keys)
		for _, k := range keys {
			sub := k
			if path != "" {
				sub = path + "." + k
			}
			if err := walkValue(sub, v.MapIndex(reflect.ValueOf(k).Convert(v.Type().Key())), fn); err != nil {
				return err
			}
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := walkValue(fmt.Sprintf("%s[%d]", path, i), v.Index(i), fn); err != nil {
				return err
			}
		}
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}
			if err := walkValue(path+"."+t.Field(i).Name, v.Field(i), fn); err != nil {
				return err
			}
		}
	}
	return nil
}
