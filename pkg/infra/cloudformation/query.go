package cloudformation

import (
	"bytes"
	"fmt"
	"io"

	"github.com/vmware-labs/yaml-jsonpath/pkg/yamlpath"
	"gopkg.in/yaml.v3"
)

// Query returns the parts of the template selected by the YAML JSONPath `path`, for example
// `$.Resources.*.Type` or `$.Outputs.userPoolId`.
func (t *Template) Query(path string) ([]*yaml.Node, error) {
	p, err := yamlpath.NewPath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid query %q: %w", path, err)
	}

	buf := new(bytes.Buffer)
	if err := t.WriteYAML(buf); err != nil {
		return nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		return nil, err
	}
	return p.Find(&doc)
}

// WriteQuery writes each node selected by `path` as its own YAML document.
func (t *Template) WriteQuery(w io.Writer, path string) error {
	nodes, err := t.Query(path)
	if err != nil {
		return err
	}
	if len(nodes) == 0 {
		return fmt.Errorf("query %q matched nothing", path)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for _, n := range nodes {
		if err := enc.Encode(n); err != nil {
			return err
		}
	}
	return enc.Close()
}
