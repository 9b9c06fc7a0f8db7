package cloudformation

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/collectionutil"
	"gopkg.in/yaml.v3"
)

const FormatVersion = "2010-09-09"

type (
	Template struct {
		AWSTemplateFormatVersion string                    `json:"AWSTemplateFormatVersion" yaml:"AWSTemplateFormatVersion"`
		Description              string                    `json:"Description,omitempty" yaml:"Description,omitempty"`
		Resources                map[string]*ResourceEntry `json:"Resources" yaml:"Resources"`
		Outputs                  map[string]*OutputEntry   `json:"Outputs,omitempty" yaml:"Outputs,omitempty"`
	}

	ResourceEntry struct {
		Type                string         `json:"Type" yaml:"Type"`
		Properties          map[string]any `json:"Properties,omitempty" yaml:"Properties,omitempty"`
		DependsOn           []string       `json:"DependsOn,omitempty" yaml:"DependsOn,omitempty"`
		DeletionPolicy      string         `json:"DeletionPolicy,omitempty" yaml:"DeletionPolicy,omitempty"`
		UpdateReplacePolicy string         `json:"UpdateReplacePolicy,omitempty" yaml:"UpdateReplacePolicy,omitempty"`
		Metadata            map[string]any `json:"Metadata,omitempty" yaml:"Metadata,omitempty"`
	}

	OutputEntry struct {
		Description string `json:"Description,omitempty" yaml:"Description,omitempty"`
		Value       any    `json:"Value" yaml:"Value"`
	}
)

// PathMetadata is the metadata key holding the scope path a resource was declared at.
const PathMetadata = "aws:cdk:path"

// LogicalIds returns the logical ids of the template resources, sorted.
func (t *Template) LogicalIds() []string {
	return collectionutil.SortedKeys(t.Resources)
}

// ResourcesOfType returns the logical ids of resources of the CloudFormation type `typ`, sorted.
func (t *Template) ResourcesOfType(typ string) []string {
	var ids []string
	for _, id := range t.LogicalIds() {
		if t.Resources[id].Type == typ {
			ids = append(ids, id)
		}
	}
	return ids
}

// WriteJSON renders the template as indented JSON. Map keys are sorted, so identical templates render
// identical bytes.
func (t *Template) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(t)
}

// WriteYAML renders the template as YAML with sorted map keys.
func (t *Template) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(t); err != nil {
		return err
	}
	return enc.Close()
}

// ReadTemplate parses a template previously written by [Template.WriteJSON] or [Template.WriteYAML].
// YAML being a superset of JSON, both are accepted.
func ReadTemplate(r io.Reader) (*Template, error) {
	var t Template
	if err := yaml.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("could not read template: %w", err)
	}
	if t.Resources == nil {
		t.Resources = make(map[string]*ResourceEntry)
	}
	return &t, nil
}
