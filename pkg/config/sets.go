package config

import (
	"fmt"
	"net"
	"strings"
)

// ApplySets applies `key=value` overrides. Keys are dotted paths into the values, for example
// `apiEcsSettings.desiredCount=2`. Values are kept as strings and converted on [Values.Decode].
func (v Values) ApplySets(sets []string) error {
	for _, set := range sets {
		key, value, ok := strings.Cut(set, "=")
		if !ok || key == "" {
			return fmt.Errorf("invalid override %q, expected key=value", set)
		}
		if err := v.set(strings.Split(key, "."), value); err != nil {
			return fmt.Errorf("invalid override %q: %w", set, err)
		}
	}
	return nil
}

func (v Values) set(path []string, value string) error {
	current := v
	for i, part := range path[:len(path)-1] {
		next, ok := current[part]
		if !ok {
			created := map[string]any{}
			current[part] = created
			current = created
			continue
		}
		m, ok := asMap(next)
		if !ok {
			return fmt.Errorf("%s is not a map (got %T)", strings.Join(path[:i+1], "."), next)
		}
		current = m
	}
	current[path[len(path)-1]] = value
	return nil
}

// Validate checks the values that would otherwise only fail once the provisioning engine rejects them.
func (env EnvValues) Validate() error {
	if env.NamePrefix == "" {
		return fmt.Errorf("namePrefix must not be empty")
	}
	switch env.Security.ServicePlacement {
	case PlacementPublic, PlacementPrivate:
	default:
		return fmt.Errorf("security.servicePlacement must be %q or %q, got %q",
			PlacementPublic, PlacementPrivate, env.Security.ServicePlacement)
	}
	if _, _, err := net.ParseCIDR(env.Security.IngressCidr); err != nil {
		return fmt.Errorf("security.ingressCidr: %w", err)
	}
	if env.Security.ServicePlacement == PlacementPrivate && env.Security.AssignPublicIp {
		return fmt.Errorf("security.assignPublicIp cannot be enabled for private placement")
	}
	return nil
}
