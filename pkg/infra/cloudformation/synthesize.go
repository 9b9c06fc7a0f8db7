package cloudformation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/construct"
	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/provider/aws/resources"
	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/sanitization"
	"go.uber.org/zap"
)

type (
	synthesizer struct {
		graph      construct.Graph
		logicalIds map[construct.ResourceId]string
	}
)

var deletionPolicies = map[construct.RemovalPolicy]string{
	construct.RemovalPolicyDestroy:  "Delete",
	construct.RemovalPolicyRetain:   "Retain",
	construct.RemovalPolicySnapshot: "Snapshot",
}

// Synthesize renders the resources and outputs of `stack` as a CloudFormation template. Overrides must
// already be applied.
func Synthesize(stack *construct.Stack) (*Template, error) {
	log := zap.S().Named("synth")
	s := &synthesizer{graph: stack.Graph, logicalIds: make(map[construct.ResourceId]string)}

	order, err := construct.CreationOrder(stack.Graph)
	if err != nil {
		return nil, err
	}
	owners := make(map[string]construct.ResourceId, len(order))
	for _, id := range order {
		lid := LogicalId(id)
		if owner, ok := owners[lid]; ok {
			return nil, fmt.Errorf("logical id %s of %s collides with %s", lid, id, owner)
		}
		owners[lid] = id
		s.logicalIds[id] = lid
	}

	dependsOn, err := s.dependsOn()
	if err != nil {
		return nil, err
	}

	t := &Template{
		AWSTemplateFormatVersion: FormatVersion,
		Resources:                make(map[string]*ResourceEntry, len(order)),
	}
	var errs error
	for _, id := range order {
		entry, err := s.resource(id)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("could not synthesize %s: %w", id, err))
			continue
		}
		entry.DependsOn = dependsOn[id]
		t.Resources[s.logicalIds[id]] = entry
		log.Debugf("synthesized %s as %s (%s)", id, s.logicalIds[id], entry.Type)
	}

	for _, o := range stack.Outputs() {
		value, err := s.value(o.Value)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("could not synthesize output %s: %w", o.Name, err))
			continue
		}
		if t.Outputs == nil {
			t.Outputs = make(map[string]*OutputEntry)
		}
		t.Outputs[sanitization.LogicalIdSanitizer.Apply(o.Name)] = &OutputEntry{
			Description: o.Description,
			Value:       value,
		}
	}
	if errs != nil {
		return nil, errs
	}
	log.Infof("synthesized %d resources and %d outputs for %s", len(t.Resources), len(t.Outputs), stack.Name)
	return t, nil
}

func (s *synthesizer) resource(id construct.ResourceId) (*ResourceEntry, error) {
	r, err := s.graph.Vertex(id)
	if err != nil {
		return nil, err
	}
	typ, err := resources.CloudFormationType(id)
	if err != nil {
		return nil, err
	}
	props, err := s.value(r.Properties)
	if err != nil {
		return nil, err
	}
	entry := &ResourceEntry{
		Type:     typ,
		Metadata: map[string]any{PathMetadata: strings.Join(id.Path(), "/")},
	}
	if m, ok := props.(map[string]any); ok && len(m) > 0 {
		entry.Properties = m
	}
	if r.RemovalPolicy != "" {
		policy, ok := deletionPolicies[r.RemovalPolicy]
		if !ok {
			return nil, fmt.Errorf("unknown removal policy %q", r.RemovalPolicy)
		}
		entry.DeletionPolicy = policy
		entry.UpdateReplacePolicy = policy
	}
	return entry, nil
}

// dependsOn collects the explicit ordering dependencies of each resource as sorted logical ids.
func (s *synthesizer) dependsOn() (map[construct.ResourceId][]string, error) {
	edges, err := s.graph.Edges()
	if err != nil {
		return nil, err
	}
	deps := make(map[construct.ResourceId][]string)
	for _, e := range edges {
		if !construct.IsDependsOn(e) {
			continue
		}
		deps[e.Source] = append(deps[e.Source], s.logicalIds[e.Target])
	}
	for _, d := range deps {
		sort.Strings(d)
	}
	return deps, nil
}

func (s *synthesizer) logicalId(id construct.ResourceId) (string, error) {
	lid, ok := s.logicalIds[id]
	if !ok {
		return "", fmt.Errorf("reference to undeclared resource %s", id)
	}
	return lid, nil
}

// value converts a property value into its template form, resolving references and intrinsics.
func (s *synthesizer) value(v any) (any, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil

	case construct.ResourceId:
		lid, err := s.logicalId(v)
		if err != nil {
			return nil, err
		}
		return map[string]any{"Ref": lid}, nil

	case construct.PropertyRef:
		lid, err := s.logicalId(v.Resource)
		if err != nil {
			return nil, err
		}
		if v.Property == "" {
			return map[string]any{"Ref": lid}, nil
		}
		return map[string]any{"Fn::GetAtt": []any{lid, v.Property}}, nil

	case construct.PseudoParameter:
		return map[string]any{"Ref": string(v)}, nil

	case construct.Join:
		values, err := s.list(v.Values)
		if err != nil {
			return nil, err
		}
		return map[string]any{"Fn::Join": []any{v.Delimiter, values}}, nil

	case construct.Sub:
		if len(v.Variables) == 0 {
			return map[string]any{"Fn::Sub": v.String}, nil
		}
		vars, err := s.value(v.Variables)
		if err != nil {
			return nil, err
		}
		return map[string]any{"Fn::Sub": []any{v.String, vars}}, nil

	case construct.Select:
		list, err := s.value(v.List)
		if err != nil {
			return nil, err
		}
		return map[string]any{"Fn::Select": []any{v.Index, list}}, nil

	case construct.GetAZs:
		return map[string]any{"Fn::GetAZs": v.Region}, nil

	case construct.ImportValue:
		name, err := s.value(v.Name)
		if err != nil {
			return nil, err
		}
		return map[string]any{"Fn::ImportValue": name}, nil

	case string, bool, int, int64, float64:
		return v, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return s.value(rv.Elem().Interface())

	case reflect.Slice, reflect.Array:
		list := make([]any, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			item, err := s.value(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			if item != nil {
				list = append(list, item)
			}
		}
		return list, nil

	case reflect.Map:
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key, ok := iter.Key().Interface().(string)
			if !ok {
				return nil, fmt.Errorf("map key %v is not a string", iter.Key())
			}
			item, err := s.value(iter.Value().Interface())
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			if item != nil {
				m[key] = item
			}
		}
		return m, nil

	case reflect.Struct:
		m := make(map[string]any, rv.NumField())
		for i := 0; i < rv.NumField(); i++ {
			field := rv.Type().Field(i)
			if !field.IsExported() || rv.Field(i).IsZero() {
				continue
			}
			item, err := s.value(rv.Field(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("%s: %w", field.Name, err)
			}
			if item != nil {
				m[field.Name] = item
			}
		}
		return m, nil

	case reflect.String:
		return rv.String(), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil

	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	}
	return nil, fmt.Errorf("unsupported value %v (%T)", v, v)
}

func (s *synthesizer) list(values []any) ([]any, error) {
	out := make([]any, len(values))
	for i, v := range values {
		rendered, err := s.value(v)
		if err != nil {
			return nil, err
		}
		out[i] = rendered
	}
	return out, nil
}
