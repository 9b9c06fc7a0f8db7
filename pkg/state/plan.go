package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/collectionutil"
	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/infra/cloudformation"
	"github.com/r3labs/diff"
)

type ChangeKind string

const (
	ChangeCreate ChangeKind = "create"
	ChangeUpdate ChangeKind = "update"
	// ChangeReplace is an update of the resource type, which CloudFormation performs as a delete and create.
	ChangeReplace ChangeKind = "replace"
	ChangeDelete  ChangeKind = "delete"
	ChangeNoOp    ChangeKind = "no-op"
)

type (
	ResourceChange struct {
		LogicalId string
		Type      string
		Kind      ChangeKind
		// Changes are the property-level differences of an update.
		Changes diff.Changelog
	}

	OutputChange struct {
		Name string
		Kind ChangeKind
		From any
		To   any
	}

	// StackPlan is the set of changes that applying a declared template would make to the applied one.
	// Entries are sorted by logical id (or output name).
	StackPlan struct {
		Resources []ResourceChange
		Outputs   []OutputChange
	}
)

// Plan compares the `declared` template against the `applied` one (nil when the stack was never applied).
func Plan(applied, declared *cloudformation.Template) (*StackPlan, error) {
	before, err := normalize(applied)
	if err != nil {
		return nil, fmt.Errorf("could not read applied template: %w", err)
	}
	after, err := normalize(declared)
	if err != nil {
		return nil, fmt.Errorf("could not read declared template: %w", err)
	}

	// list order is significant (container definitions, health check commands)
	differ, err := diff.NewDiffer(diff.SliceOrdering(true))
	if err != nil {
		return nil, err
	}

	plan := &StackPlan{}
	beforeResources, afterResources := section(before, "Resources"), section(after, "Resources")
	for _, lid := range collectionutil.SortedKeys(beforeResources, afterResources) {
		from, inBefore := beforeResources[lid]
		to, inAfter := afterResources[lid]
		change := ResourceChange{LogicalId: lid}
		switch {
		case !inBefore:
			change.Kind = ChangeCreate
			change.Type = resourceType(to)
		case !inAfter:
			change.Kind = ChangeDelete
			change.Type = resourceType(from)
		case resourceType(from) != resourceType(to):
			change.Kind = ChangeReplace
			change.Type = resourceType(to)
		default:
			change.Type = resourceType(to)
			changes, err := valueChanges(differ, nil, from, to)
			if err != nil {
				return nil, fmt.Errorf("could not diff %s: %w", lid, err)
			}
			if len(changes) == 0 {
				change.Kind = ChangeNoOp
			} else {
				change.Kind = ChangeUpdate
				change.Changes = changes
			}
		}
		plan.Resources = append(plan.Resources, change)
	}

	beforeOutputs, afterOutputs := section(before, "Outputs"), section(after, "Outputs")
	for _, name := range collectionutil.SortedKeys(beforeOutputs, afterOutputs) {
		from, inBefore := beforeOutputs[name]
		to, inAfter := afterOutputs[name]
		change := OutputChange{Name: name, From: from, To: to}
		switch {
		case !inBefore:
			change.Kind = ChangeCreate
		case !inAfter:
			change.Kind = ChangeDelete
		case reflect.DeepEqual(from, to):
			change.Kind = ChangeNoOp
		default:
			change.Kind = ChangeUpdate
		}
		plan.Outputs = append(plan.Outputs, change)
	}
	return plan, nil
}

// HasChanges reports whether any resource or output changes.
func (p *StackPlan) HasChanges() bool {
	for _, c := range p.Resources {
		if c.Kind != ChangeNoOp {
			return true
		}
	}
	for _, c := range p.Outputs {
		if c.Kind != ChangeNoOp {
			return true
		}
	}
	return false
}

// Counts returns the number of resources per kind of change.
func (p *StackPlan) Counts() map[ChangeKind]int {
	counts := make(map[ChangeKind]int)
	for _, c := range p.Resources {
		counts[c.Kind]++
	}
	return counts
}

// valueChanges diffs `from` and `to`, descending into maps itself. A value whose shape changed (such as a
// literal replaced by a reference) is reported as one update of the whole value.
func valueChanges(differ *diff.Differ, path []string, from, to any) (diff.Changelog, error) {
	if reflect.DeepEqual(from, to) {
		return nil, nil
	}
	fromMap, fromIsMap := from.(map[string]any)
	toMap, toIsMap := to.(map[string]any)
	if fromIsMap && toIsMap {
		var changelog diff.Changelog
		for _, k := range collectionutil.SortedKeys(fromMap, toMap) {
			sub := append(append([]string(nil), path...), k)
			changes, err := valueChanges(differ, sub, fromMap[k], toMap[k])
			if err != nil {
				return nil, err
			}
			changelog = append(changelog, changes...)
		}
		return changelog, nil
	}
	switch {
	case from == nil:
		return diff.Changelog{{Type: diff.CREATE, Path: path, To: to}}, nil
	case to == nil:
		return diff.Changelog{{Type: diff.DELETE, Path: path, From: from}}, nil
	}

	changes, err := differ.Diff(from, to)
	if errors.Is(err, diff.ErrTypeMismatch) {
		return diff.Changelog{{Type: diff.UPDATE, Path: path, From: from, To: to}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", strings.Join(path, "."), err)
	}
	for i := range changes {
		changes[i].Path = append(append([]string(nil), path...), changes[i].Path...)
	}
	return changes, nil
}

// normalize renders `t` through JSON so both sides of a diff hold the same numeric and container types.
func normalize(t *cloudformation.Template) (map[string]any, error) {
	if t == nil {
		return map[string]any{}, nil
	}
	buf := new(bytes.Buffer)
	if err := t.WriteJSON(buf); err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		return nil, err
	}
	return m, nil
}

func section(tmpl map[string]any, name string) map[string]any {
	s, _ := tmpl[name].(map[string]any)
	return s
}

func resourceType(entry any) string {
	m, _ := entry.(map[string]any)
	t, _ := m["Type"].(string)
	return t
}
