package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/infra/cloudformation"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const SchemaVersion = 1

type StateManager struct {
	stateFile string
	state     *State
	mutex     sync.Mutex
}

// State is the last template applied to a stack, along with the outputs the stack reported.
type State struct {
	SchemaVersion int                      `yaml:"schemaVersion"`
	Stack         string                   `yaml:"stack"`
	Environment   string                   `yaml:"environment,omitempty"`
	Region        string                   `yaml:"region,omitempty"`
	LastApplied   string                   `yaml:"lastApplied,omitempty"`
	Template      *cloudformation.Template `yaml:"template,omitempty"`
	Outputs       map[string]string        `yaml:"outputs,omitempty"`
}

// StateFile is the location of the state of `stack` under the output directory `outDir`.
func StateFile(outDir, stack string) string {
	return filepath.Join(outDir, stack+".state.yaml")
}

func NewStateManager(stateFile string) *StateManager {
	return &StateManager{stateFile: stateFile}
}

func (sm *StateManager) CheckStateFileExists() bool {
	_, err := os.Stat(sm.stateFile)
	return err == nil
}

// LoadState reads the state file. A missing file is not an error: the stack was never applied
// and [StateManager.GetState] returns nil.
func (sm *StateManager) LoadState() error {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	data, err := os.ReadFile(sm.stateFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			sm.state = nil
			return nil
		}
		return err
	}
	var st State
	if err := yaml.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("could not parse state file %s: %w", sm.stateFile, err)
	}
	if st.SchemaVersion > SchemaVersion {
		return fmt.Errorf("state file %s has schema version %d, newer than the supported %d", sm.stateFile, st.SchemaVersion, SchemaVersion)
	}
	sm.state = &st
	return nil
}

func (sm *StateManager) SaveState() error {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	if sm.state == nil {
		return errors.New("no state to save")
	}
	data, err := yaml.Marshal(sm.state)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(sm.stateFile), 0755); err != nil {
		return err
	}
	zap.S().Named("state").Debugf("writing state to %s", sm.stateFile)
	return os.WriteFile(sm.stateFile, data, 0644)
}

func (sm *StateManager) GetState() *State {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	return sm.state
}

// AppliedTemplate returns the template of the last apply, or nil if there is none.
func (sm *StateManager) AppliedTemplate() *cloudformation.Template {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	if sm.state == nil {
		return nil
	}
	return sm.state.Template
}

// RecordApplied replaces the state with `template` as applied to `stack` just now.
func (sm *StateManager) RecordApplied(stack, environment, region string, template *cloudformation.Template, outputs map[string]string) {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	sm.state = &State{
		SchemaVersion: SchemaVersion,
		Stack:         stack,
		Environment:   environment,
		Region:        region,
		LastApplied:   time.Now().UTC().Format(time.RFC3339),
		Template:      template,
		Outputs:       outputs,
	}
}
