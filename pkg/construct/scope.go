package construct

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

type (
	// Stack is the root of a construct tree. It owns the resource graph every construct declares into,
	// the deferred property overrides, and the published outputs.
	Stack struct {
		Name  string
		Graph Graph

		overrides []Override
		outputs   []Output
		applied   bool
	}

	// Scope is a position in the construct tree. Constructs receive their parent scope and create a child
	// for themselves with [Scope.Child]; the scope path becomes the namespace of every resource declared
	// under it.
	Scope struct {
		stack *Stack
		path  []string
	}

	// Override patches a property of an already declared resource. Overrides are collected during
	// declaration and applied in order by [Stack.ApplyOverrides].
	Override struct {
		Name     string
		Resource ResourceId
		Path     string
		Value    any
	}

	Output struct {
		Name        string
		Value       any
		Description string
	}
)

func NewStack(name string) *Stack {
	return &Stack{
		Name:  name,
		Graph: NewAcyclicGraph(),
	}
}

// Root returns the scope of the stack itself.
func (s *Stack) Root() Scope {
	return Scope{stack: s, path: []string{s.Name}}
}

// Child returns the scope nested under `s` with the construct-local `id`.
func (s Scope) Child(id string) Scope {
	path := make([]string, len(s.path), len(s.path)+1)
	copy(path, s.path)
	return Scope{stack: s.stack, path: append(path, id)}
}

func (s Scope) Stack() *Stack {
	return s.stack
}

func (s Scope) Path() []string {
	return append([]string(nil), s.path...)
}

// Namespace is the scope path joined by `/`, used as [ResourceId.Namespace].
func (s Scope) Namespace() string {
	return strings.Join(s.path, "/")
}

// Declare adds `r` to the stack graph. See [AddResource].
func (s Scope) Declare(r *Resource) error {
	if s.stack == nil {
		return errors.New("scope is not attached to a stack")
	}
	if r.ID.Namespace != s.Namespace() {
		return fmt.Errorf("resource %s declared outside of its scope %s", r.ID, s.Namespace())
	}
	if err := AddResource(s.stack.Graph, r); err != nil {
		return err
	}
	zap.S().Named("construct").Debugf("declared %s", r.ID)
	return nil
}

// DependsOn adds an ordering-only dependency between two declared resources.
func (s Scope) DependsOn(source, target ResourceId) error {
	return AddDependsOn(s.stack.Graph, source, target)
}

// Override registers a named property override to be applied once declaration is finished.
func (s Scope) Override(name string, id ResourceId, path string, value any) {
	s.stack.overrides = append(s.stack.overrides, Override{
		Name:     name,
		Resource: id,
		Path:     path,
		Value:    value,
	})
}

// Overrides returns the registered overrides in registration order.
func (s *Stack) Overrides() []Override {
	return append([]Override(nil), s.overrides...)
}

// ApplyOverrides applies every registered override. It is the second phase of a stack build: constructs
// declare resources with their generated defaults first, then named overrides replace selected properties.
// Applying twice is a no-op.
func (s *Stack) ApplyOverrides() error {
	if s.applied {
		return nil
	}
	log := zap.S().Named("construct")
	var errs error
	for _, o := range s.overrides {
		r, err := s.Graph.Vertex(o.Resource)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("override %q: resource %s: %w", o.Name, o.Resource, err))
			continue
		}
		if err := r.SetProperty(o.Path, o.Value); err != nil {
			errs = errors.Join(errs, fmt.Errorf("override %q: %w", o.Name, err))
			continue
		}
		// the new value may reference other resources
		errs = errors.Join(errs, AddReferenceEdges(s.Graph, r))
		log.Debugf("applied override %q to %s#%s", o.Name, o.Resource, o.Path)
	}
	if errs == nil {
		s.applied = true
	}
	return errs
}

// AddOutput publishes `value` under `name` once the stack is applied. Output names must be unique.
func (s *Stack) AddOutput(o Output) error {
	for _, existing := range s.outputs {
		if existing.Name == o.Name {
			return fmt.Errorf("output %q already exists", o.Name)
		}
	}
	s.outputs = append(s.outputs, o)
	return nil
}

func (s *Stack) Outputs() []Output {
	return append([]Output(nil), s.outputs...)
}
