package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/Masterminds/sprig/v3"
	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/closenicely"
	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type (
	// EnvValues are the per-environment settings of the infrastructure stack.
	EnvValues struct {
		EnvName     string `mapstructure:"envName" yaml:"envName"`
		ProjectName string `mapstructure:"projectName" yaml:"projectName"`
		// NamePrefix is prepended to every physical name. It is a text/template evaluated against the raw
		// values (with the sprig functions), so `{{ .projectName }}-{{ .envName }}` is accepted.
		NamePrefix string `mapstructure:"namePrefix" yaml:"namePrefix"`
		Region     string `mapstructure:"region" yaml:"region"`
		Account    string `mapstructure:"account" yaml:"account"`

		ApiEcsSettings ApiEcsSettings   `mapstructure:"apiEcsSettings" yaml:"apiEcsSettings"`
		Security       SecuritySettings `mapstructure:"security" yaml:"security"`

		// EcrDeploymentHandlerExport names the export of the image deployment handler function ARN.
		EcrDeploymentHandlerExport string `mapstructure:"ecrDeploymentHandlerExport" yaml:"ecrDeploymentHandlerExport"`

		// Format is the format of the file the values were read from.
		Format string `mapstructure:"-" yaml:"-"`
	}

	ApiEcsSettings struct {
		Cpu            int `mapstructure:"cpu" yaml:"cpu"`
		MemoryLimitMiB int `mapstructure:"memoryLimitMiB" yaml:"memoryLimitMiB"`
		DesiredCount   int `mapstructure:"desiredCount" yaml:"desiredCount"`
		MinCapacity    int `mapstructure:"minCapacity" yaml:"minCapacity"`
		MaxCapacity    int `mapstructure:"maxCapacity" yaml:"maxCapacity"`
	}

	SecuritySettings struct {
		IngressCidr    string `mapstructure:"ingressCidr" yaml:"ingressCidr"`
		AssignPublicIp bool   `mapstructure:"assignPublicIp" yaml:"assignPublicIp"`
		// ServicePlacement is either `public` or `private`.
		ServicePlacement string `mapstructure:"servicePlacement" yaml:"servicePlacement"`
	}

	// Values is the raw, untyped form of [EnvValues] that file contents and overrides are merged into.
	Values map[string]any
)

const (
	PlacementPublic  = "public"
	PlacementPrivate = "private"

	DefaultNamePrefix = "{{ .projectName }}-{{ .envName }}"
)

// Defaults returns the values every environment starts from.
func Defaults() Values {
	return Values{
		"projectName": "sample-aws-nestjs-angular",
		"namePrefix":  DefaultNamePrefix,
		"apiEcsSettings": map[string]any{
			"cpu":            256,
			"memoryLimitMiB": 512,
			"desiredCount":   1,
			"minCapacity":    1,
			"maxCapacity":    3,
		},
		"security": map[string]any{
			"ingressCidr":      "0.0.0.0/0",
			"assignPublicIp":   true,
			"servicePlacement": PlacementPublic,
		},
		"ecrDeploymentHandlerExport": "cdk-ecr-deployment-handler-arn",
	}
}

// ReadValues reads the environment file at `fpath`. The format is chosen from the file extension.
func ReadValues(fpath string) (Values, string, error) {
	f, err := os.Open(fpath)
	if err != nil {
		return nil, "", err
	}
	defer closenicely.OrDebug(f)

	format := strings.TrimPrefix(filepath.Ext(fpath), ".")
	values, err := DecodeValues(f, format)
	if err != nil {
		return nil, "", fmt.Errorf("could not read %s: %w", fpath, err)
	}
	return values, format, nil
}

// DecodeValues decodes `r` in `format` (json, yaml, yml or toml).
func DecodeValues(r io.Reader, format string) (Values, error) {
	// decode into a plain map so nested sections come back as map[string]any, not Values
	values := map[string]any{}
	var err error
	switch format {
	case "json":
		err = json.NewDecoder(r).Decode(&values)

	case "yaml", "yml":
		err = yaml.NewDecoder(r).Decode(&values)
		if err == io.EOF {
			err = nil
		}

	case "toml":
		err = toml.NewDecoder(r).Decode(&values)

	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	return Values(values), err
}

// Merge deep-merges `other` into `v`. Maps are merged key by key, every other value is replaced.
func (v Values) Merge(other Values) {
	for k, ov := range other {
		om, ok := asMap(ov)
		if !ok {
			v[k] = ov
			continue
		}
		vm, ok := asMap(v[k])
		if !ok {
			vm = map[string]any{}
			v[k] = vm
		}
		Values(vm).Merge(om)
	}
}

// asMap returns the section `v` as a map, whether it was built as a [Values] or decoded as a plain map.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case Values:
		return m, true
	case map[string]any:
		return m, true
	default:
		return nil, false
	}
}

// Decode converts the raw values into [EnvValues]. Numbers and booleans given as strings (from
// `--set` overrides for example) are converted.
func (v Values) Decode() (EnvValues, error) {
	var env EnvValues
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &env,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return env, err
	}
	if err := decoder.Decode(map[string]any(v)); err != nil {
		return env, fmt.Errorf("invalid environment values: %w", err)
	}

	prefix, err := v.render(env.NamePrefix)
	if err != nil {
		return env, fmt.Errorf("invalid namePrefix %q: %w", env.NamePrefix, err)
	}
	env.NamePrefix = prefix
	return env, nil
}

func (v Values) render(text string) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}
	t, err := template.New("namePrefix").
		Option("missingkey=error").
		Funcs(sprig.HermeticTxtFuncMap()).
		Parse(text)
	if err != nil {
		return "", err
	}
	buf := new(bytes.Buffer)
	if err := t.Execute(buf, map[string]any(v)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Load reads the environment file at `fpath` over the [Defaults], applies the `key=value` overrides in
// `sets`, then decodes and validates the result.
func Load(fpath string, sets []string) (EnvValues, error) {
	values := Defaults()

	file, format, err := ReadValues(fpath)
	if err != nil {
		return EnvValues{}, err
	}
	values.Merge(file)

	if err := values.ApplySets(sets); err != nil {
		return EnvValues{}, err
	}
	if name, _ := values["envName"].(string); name == "" {
		name = strings.TrimSuffix(filepath.Base(fpath), filepath.Ext(fpath))
		zap.S().Named("config").Debugf("envName not set, using %q from the file name", name)
		values["envName"] = name
	}

	env, err := values.Decode()
	if err != nil {
		return env, err
	}
	env.Format = format
	return env, env.Validate()
}
