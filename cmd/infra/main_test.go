package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runWithInput(t, "", args...)
}

func runWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	root := cli()
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetIn(strings.NewReader(input))
	root.SetArgs(append([]string{"--color", "never", "--env", filepath.Join("..", "..", "config", "dev.yaml")}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestSynth(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	_, err := run(t, "synth", "--out", dir)
	require.NoError(err)

	for _, f := range []string{
		"sample-aws-nestjs-angular-dev-infra-stack.template.json",
		"sample-aws-nestjs-angular-dev-infra-stack.template.yaml",
		filepath.Join("graph", "sample-aws-nestjs-angular-dev-infra-stack.yaml"),
		filepath.Join("graph", "sample-aws-nestjs-angular-dev-infra-stack.dot"),
	} {
		info, err := os.Stat(filepath.Join(dir, f))
		require.NoError(err, f)
		assert.NotZero(t, info.Size(), f)
	}
}

func TestSynth_query(t *testing.T) {
	out, err := run(t, "synth", "--query", "$.Outputs.*.Description")
	require.NoError(t, err)
	assert.Contains(t, out, "Cognito User Pool ID")
	assert.Contains(t, out, "Cognito Identity Pool ID")
}

func TestGraph(t *testing.T) {
	out, err := run(t, "graph", "--format", "dot")
	require.NoError(t, err)
	assert.Contains(t, out, "digraph")

	out, err = run(t, "graph", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "aws:cognito_user_pool_client:")
	assert.Contains(t, out, "\n-> aws:cognito_user_pool:")

	_, err = run(t, "graph", "--format", "svg")
	assert.EqualError(t, err, `unknown graph format "svg"`)
}

func TestPlan_nothingApplied(t *testing.T) {
	out, err := run(t, "plan", "--out", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "+ ")
	assert.Contains(t, out, "to create")
}

func TestSet(t *testing.T) {
	const assignPublicIp = "$.Resources.*.Properties.NetworkConfiguration.AwsvpcConfiguration.AssignPublicIp"
	tests := []struct {
		name    string
		sets    []string
		want    string
		wantErr string
	}{
		{name: "env file value", want: "ENABLED\n"},
		{name: "override", sets: []string{"security.assignPublicIp=false"}, want: "DISABLED\n"},
		{
			name: "private placement",
			sets: []string{"security.servicePlacement=private", "security.assignPublicIp=false"},
			want: "DISABLED\n",
		},
		{
			name:    "invalid placement",
			sets:    []string{"security.servicePlacement=nowhere"},
			wantErr: `must be "public" or "private", got "nowhere"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := []string{"synth", "--query", assignPublicIp}
			for _, set := range tt.sets {
				args = append(args, "--set", set)
			}
			out, err := run(t, args...)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestDeploy_confirmation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "declined", input: "n\n"},
		{name: "empty answer", input: "\n"},
		{name: "no input", wantErr: "use --yes to skip it"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runWithInput(t, tt.input, "deploy", "--out", t.TempDir())
			assert.Contains(t, out, "to create")
			assert.Contains(t, out, "Deploy these changes? [y/N] ")
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out, "Deploy cancelled.")
		})
	}
}
